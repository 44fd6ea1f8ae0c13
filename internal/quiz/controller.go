package quiz

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"classical-quiz/internal/catalog"
)

var log = logging.Logger("quiz")

type State int

const (
	StateNewGame State = iota
	StateQuestionActive
	StateAnswerRevealed
	StateGameOver
)

func (s State) String() string {
	switch s {
	case StateNewGame:
		return "new_game"
	case StateQuestionActive:
		return "question_active"
	case StateAnswerRevealed:
		return "answer_revealed"
	case StateGameOver:
		return "game_over"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Catalog is the read side of the sample catalog.
type Catalog interface {
	AllSampleIDs() []int
	SampleByID(id int) (catalog.Sample, bool)
	ComposerArt(id int) catalog.Artwork
}

// Playback starts and stops audio for the sample being asked.
type Playback interface {
	Begin(ctx context.Context, sample catalog.Sample) error
	End()
}

type Candidate struct {
	ID       int
	Letter   string
	Composer string
}

// Round is what a frontend needs to render the current question or the final
// score.
type Round struct {
	GameID     string
	State      State
	Number     int
	Candidates []Candidate
	Art        catalog.Artwork
	Score      int
	HighScore  int
	Remaining  int
}

type Mark struct {
	Candidate
	Correct  bool
	Selected bool
}

type Reveal struct {
	Correct    bool
	AnswerID   int
	SelectedID int
	Marks      []Mark
	Art        catalog.Artwork
	Score      int
	HighScore  int
	Remaining  int
}

type Options struct {
	MaxCandidates int
	Rand          Rand
	History       HistoryRepository
	Now           func() time.Time
}

// Controller runs one game at a time. It is not safe for concurrent use;
// frontends drive it from a single event loop.
type Controller struct {
	catalog  Catalog
	scores   ScoreStore
	playback Playback
	history  HistoryRepository
	rng      Rand
	now      func() time.Time
	tracer   trace.Tracer

	maxCandidates int

	state     State
	gameID    string
	round     int
	remaining []int
	question  Question
	current   int
	high      int
}

func NewController(cat Catalog, scores ScoreStore, playback Playback, opts Options) *Controller {
	if opts.MaxCandidates < 2 {
		opts.MaxCandidates = DefaultMaxCandidates
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Controller{
		catalog:       cat,
		scores:        scores,
		playback:      playback,
		history:       opts.History,
		rng:           opts.Rand,
		now:           opts.Now,
		tracer:        otel.Tracer("classical-quiz/quiz"),
		maxCandidates: opts.MaxCandidates,
		state:         StateNewGame,
	}
}

func (c *Controller) State() State {
	return c.state
}

func (c *Controller) Question() Question {
	return c.question
}

// Remaining returns a copy of the ids not yet used as an answer.
func (c *Controller) Remaining() []int {
	out := make([]int, len(c.remaining))
	copy(out, c.remaining)
	return out
}

// NewGame resets the current score, loads the whole catalog as the remaining
// set and asks the first question.
func (c *Controller) NewGame(ctx context.Context) (Round, error) {
	ctx, span := c.tracer.Start(ctx, "quiz.new_game")
	defer span.End()

	if err := c.scores.SetCurrentScore(ctx, 0); err != nil {
		return Round{}, fmt.Errorf("reset current score: %w", err)
	}

	c.gameID = uuid.NewString()
	c.round = 0
	c.remaining = c.catalog.AllSampleIDs()
	span.SetAttributes(attribute.String("game.id", c.gameID))

	if c.history != nil {
		err := c.history.StartGame(ctx, GameRecord{
			GameID:    c.gameID,
			StartedAt: c.now().UTC(),
		})
		if err != nil {
			return Round{}, fmt.Errorf("start game record: %w", err)
		}
	}

	log.Infow("new game", "game_id", c.gameID, "samples", len(c.remaining))
	return c.enterRound(ctx)
}

// Resume asks the next question of a game using a remaining set carried over
// from the previous round.
func (c *Controller) Resume(ctx context.Context, remaining []int) (Round, error) {
	c.remaining = dedupe(remaining)
	return c.enterRound(ctx)
}

func (c *Controller) enterRound(ctx context.Context) (Round, error) {
	ctx, span := c.tracer.Start(ctx, "quiz.round")
	defer span.End()

	current, err := c.scores.CurrentScore(ctx)
	if err != nil {
		return Round{}, fmt.Errorf("load current score: %w", err)
	}
	high, err := c.scores.HighScore(ctx)
	if err != nil {
		return Round{}, fmt.Errorf("load high score: %w", err)
	}
	c.current, c.high = current, high

	question, ok := GenerateQuestion(c.rng, c.remaining, c.catalog.AllSampleIDs(), c.maxCandidates)
	if !ok {
		return c.endGame(ctx)
	}

	c.question = question
	c.round++
	c.state = StateQuestionActive
	span.SetAttributes(
		attribute.Int("round.number", c.round),
		attribute.Int("round.remaining", len(c.remaining)),
	)

	if sample, found := c.catalog.SampleByID(question.AnswerID); found {
		if err := c.playback.Begin(ctx, sample); err != nil {
			log.Errorw("playback failed", "sample_id", sample.ID, "error", err)
		}
	}

	return c.snapshot(), nil
}

func (c *Controller) endGame(ctx context.Context) (Round, error) {
	c.playback.End()
	c.state = StateGameOver
	c.question = Question{}

	if err := c.scores.SetCurrentScore(ctx, c.current); err != nil {
		return Round{}, fmt.Errorf("persist final score: %w", err)
	}
	if c.history != nil && c.gameID != "" {
		if err := c.history.FinishGame(ctx, c.gameID, c.current, c.now().UTC()); err != nil {
			log.Warnw("finish game record failed", "game_id", c.gameID, "error", err)
		}
	}

	log.Infow("game over", "game_id", c.gameID, "score", c.current, "high_score", c.high)
	return c.snapshot(), nil
}

// Select resolves the active question with the candidate at index.
func (c *Controller) Select(ctx context.Context, index int) (Reveal, error) {
	if c.state != StateQuestionActive {
		return Reveal{}, ErrNoActiveQuestion
	}
	if index < 0 || index >= len(c.question.Candidates) {
		return Reveal{}, fmt.Errorf("%w: %d", ErrInvalidCandidate, index)
	}

	ctx, span := c.tracer.Start(ctx, "quiz.select")
	defer span.End()

	answerID := CorrectAnswerID(c.question)
	selectedID := c.question.Candidates[index]
	correct := UserCorrect(answerID, selectedID)
	span.SetAttributes(attribute.Bool("answer.correct", correct))

	// Scores are saved before any state changes so a failed write leaves the
	// question open for another try.
	current, high := c.current, c.high
	if correct {
		current++
		if err := c.scores.SetCurrentScore(ctx, current); err != nil {
			return Reveal{}, fmt.Errorf("save current score: %w", err)
		}
		if current > high {
			high = current
			if err := c.scores.SetHighScore(ctx, high); err != nil {
				return Reveal{}, fmt.Errorf("save high score: %w", err)
			}
		}
	}

	c.current, c.high = current, high
	c.state = StateAnswerRevealed
	c.remaining = removeID(c.remaining, answerID)

	if c.history != nil && c.gameID != "" {
		err := c.history.RecordRound(ctx, RoundRecord{
			GameID:     c.gameID,
			Round:      c.round,
			AnswerID:   answerID,
			SelectedID: selectedID,
			Correct:    correct,
			AnsweredAt: c.now().UTC(),
		})
		if err != nil {
			log.Warnw("record round failed", "game_id", c.gameID, "round", c.round, "error", err)
		}
	}

	candidates := c.candidates()
	marks := make([]Mark, 0, len(candidates))
	for idx, candidate := range candidates {
		marks = append(marks, Mark{
			Candidate: candidate,
			Correct:   candidate.ID == answerID,
			Selected:  idx == index,
		})
	}

	log.Debugw("answer selected", "round", c.round, "answer_id", answerID, "selected_id", selectedID, "correct", correct)
	return Reveal{
		Correct:    correct,
		AnswerID:   answerID,
		SelectedID: selectedID,
		Marks:      marks,
		Art:        c.catalog.ComposerArt(answerID),
		Score:      c.current,
		HighScore:  c.high,
		Remaining:  len(c.remaining),
	}, nil
}

// Advance stops the current clip and moves to the next round.
func (c *Controller) Advance(ctx context.Context) (Round, error) {
	if c.state != StateAnswerRevealed {
		return Round{}, ErrAnswerNotRevealed
	}
	c.playback.End()
	return c.Resume(ctx, c.remaining)
}

// Close releases playback. It is safe to call more than once.
func (c *Controller) Close() {
	c.playback.End()
}

func (c *Controller) snapshot() Round {
	round := Round{
		GameID:    c.gameID,
		State:     c.state,
		Number:    c.round,
		Art:       catalog.Artwork{Name: catalog.PlaceholderArt, Placeholder: true},
		Score:     c.current,
		HighScore: c.high,
		Remaining: len(c.remaining),
	}
	if c.state == StateQuestionActive {
		round.Candidates = c.candidates()
	}
	return round
}

func (c *Controller) candidates() []Candidate {
	out := make([]Candidate, 0, len(c.question.Candidates))
	for idx, id := range c.question.Candidates {
		candidate := Candidate{
			ID:     id,
			Letter: CandidateLetter(idx),
		}
		if sample, ok := c.catalog.SampleByID(id); ok {
			candidate.Composer = sample.Composer
		}
		out = append(out, candidate)
	}
	return out
}
