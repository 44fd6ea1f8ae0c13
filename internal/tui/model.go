// Package tui is the full-screen quiz: four composer buttons, the score line
// and a status bar mirroring the "now playing" notification.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	logging "github.com/ipfs/go-log/v2"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"

	"classical-quiz/internal/mediasession"
	"classical-quiz/internal/quiz"
)

var log = logging.Logger("tui")

const defaultAnswerDelay = time.Second

// Game is the part of the quiz controller the TUI drives. Calls run as
// commands, at most one at a time. The caller closes the controller once the
// program exits.
type Game interface {
	NewGame(ctx context.Context) (quiz.Round, error)
	Select(ctx context.Context, index int) (quiz.Reveal, error)
	Advance(ctx context.Context) (quiz.Round, error)
}

// Transport forwards playback controls to the media session.
type Transport interface {
	Handle(cmd mediasession.Command) error
}

type Config struct {
	AnswerDelay time.Duration
	Transport   Transport
}

// NotificationMsg carries a media session change into the program. Send it
// with tea.Program.Send from a mediasession sink.
type NotificationMsg mediasession.Notification

// NotificationSink adapts a running program to a media session sink.
func NotificationSink(program *tea.Program) mediasession.SinkFunc {
	return func(n mediasession.Notification) {
		program.Send(NotificationMsg(n))
	}
}

type roundMsg struct {
	round quiz.Round
	err   error
}

type revealMsg struct {
	reveal quiz.Reveal
	err    error
}

// advanceMsg fires after the reveal delay. seq drops ticks from an earlier
// reveal.
type advanceMsg struct {
	seq int
}

type Model struct {
	ctx       context.Context
	game      Game
	transport Transport
	delay     time.Duration

	keys  keyMap
	help  help.Model
	zones *zone.Manager

	round        quiz.Round
	reveal       quiz.Reveal
	revealed     bool
	busy         bool
	seq          int
	notification mediasession.Notification
	err          error

	width  int
	height int
}

func New(ctx context.Context, game Game, cfg Config) Model {
	delay := cfg.AnswerDelay
	if delay <= 0 {
		delay = defaultAnswerDelay
	}

	return Model{
		ctx:       ctx,
		game:      game,
		transport: cfg.Transport,
		delay:     delay,
		keys:      defaultKeyMap(),
		help:      help.New(),
		zones:     zone.New(),
		busy:      true,
	}
}

func (m Model) Init() tea.Cmd {
	return m.newGame()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case roundMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			log.Errorw("round failed", "error", msg.err)
			return m, nil
		}
		m.err = nil
		m.round = msg.round
		m.revealed = false
		m.reveal = quiz.Reveal{}
		return m, nil

	case revealMsg:
		if msg.err != nil {
			m.busy = false
			m.err = msg.err
			log.Errorw("select failed", "error", msg.err)
			return m, nil
		}
		m.reveal = msg.reveal
		m.revealed = true
		m.round.Score = msg.reveal.Score
		m.round.HighScore = msg.reveal.HighScore
		m.round.Remaining = msg.reveal.Remaining
		m.seq++
		seq := m.seq
		return m, tea.Tick(m.delay, func(time.Time) tea.Msg {
			return advanceMsg{seq: seq}
		})

	case advanceMsg:
		if msg.seq != m.seq || !m.revealed {
			return m, nil
		}
		cmd := m.advance()
		return m, cmd

	case NotificationMsg:
		m.notification = mediasession.Notification(msg)
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		return m, m.sendTransport(mediasession.CommandToggle)

	case key.Matches(msg, m.keys.Restart):
		return m, m.sendTransport(mediasession.CommandPrevious)

	case key.Matches(msg, m.keys.NewGame):
		if m.busy || m.round.State != quiz.StateGameOver {
			return m, nil
		}
		cmd := m.newGame()
		return m, cmd

	case key.Matches(msg, m.keys.Answer):
		index, ok := quiz.NormalizeLetter(msg.String(), len(m.round.Candidates))
		if !ok {
			return m, nil
		}
		return m.choose(index)
	}

	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	for idx := range m.round.Candidates {
		if info := m.zones.Get(candidateZone(idx)); info != nil && info.InBounds(msg) {
			return m.choose(idx)
		}
	}
	if info := m.zones.Get("new-game"); info != nil && info.InBounds(msg) && !m.busy && m.round.State == quiz.StateGameOver {
		cmd := m.newGame()
		return m, cmd
	}
	return m, nil
}

// choose is ignored unless a question is open and nothing is in flight.
func (m Model) choose(index int) (tea.Model, tea.Cmd) {
	if m.busy || m.revealed || m.round.State != quiz.StateQuestionActive {
		return m, nil
	}
	if index < 0 || index >= len(m.round.Candidates) {
		return m, nil
	}

	m.busy = true
	game, ctx := m.game, m.ctx
	return m, func() tea.Msg {
		reveal, err := game.Select(ctx, index)
		return revealMsg{reveal: reveal, err: err}
	}
}

// sendTransport runs off the event loop: the player reports the change back
// through the notification sink, which needs the loop free to receive it.
func (m Model) sendTransport(cmd mediasession.Command) tea.Cmd {
	if m.transport == nil {
		return nil
	}
	transport := m.transport
	return func() tea.Msg {
		if err := transport.Handle(cmd); err != nil && !errors.Is(err, mediasession.ErrInactive) {
			log.Warnw("transport command failed", "command", cmd, "error", err)
		}
		return nil
	}
}

func (m *Model) newGame() tea.Cmd {
	m.busy = true
	game, ctx := m.game, m.ctx
	return func() tea.Msg {
		round, err := game.NewGame(ctx)
		return roundMsg{round: round, err: err}
	}
}

func (m *Model) advance() tea.Cmd {
	m.busy = true
	game, ctx := m.game, m.ctx
	return func() tea.Msg {
		round, err := game.Advance(ctx)
		return roundMsg{round: round, err: err}
	}
}

func (m Model) View() string {
	var body strings.Builder

	body.WriteString(titleStyle.Render("Classical Quiz"))
	body.WriteString("  ")
	body.WriteString(scoreStyle.Render(fmt.Sprintf("Score %d · High score %d", m.round.Score, m.round.HighScore)))
	body.WriteString("\n\n")

	switch {
	case m.round.State == quiz.StateGameOver:
		body.WriteString(m.viewGameOver())
	case m.revealed:
		body.WriteString(m.viewReveal())
	case m.round.State == quiz.StateQuestionActive:
		body.WriteString(m.viewQuestion())
	default:
		body.WriteString(scoreStyle.Render("Loading…"))
	}

	if m.err != nil {
		body.WriteString("\n\n")
		body.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	}

	body.WriteString("\n")
	body.WriteString(m.viewStatusBar())
	body.WriteString("\n")
	body.WriteString(m.help.View(m.keys))

	return m.zones.Scan(body.String())
}

func (m Model) viewQuestion() string {
	art := artStyle.Render("?\n" + m.round.Art.Name)
	header := fmt.Sprintf("Round %d · %d samples left\nWho composed this piece?", m.round.Number, m.round.Remaining)

	names := make([]string, 0, len(m.round.Candidates))
	for _, candidate := range m.round.Candidates {
		names = append(names, candidate.Composer)
	}
	width := labelWidth(names)

	buttons := make([]string, 0, len(m.round.Candidates))
	for idx, candidate := range m.round.Candidates {
		label := fmt.Sprintf("%s  %s", candidate.Letter, runewidth.FillRight(candidate.Composer, width))
		buttons = append(buttons, m.zones.Mark(candidateZone(idx), buttonStyle.Render(label)))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		art,
		"  ",
		lipgloss.JoinVertical(lipgloss.Left, append([]string{header}, buttons...)...),
	)
}

func (m Model) viewReveal() string {
	art := artStyle.Render(m.reveal.Art.Name)

	names := make([]string, 0, len(m.reveal.Marks))
	for _, mark := range m.reveal.Marks {
		names = append(names, mark.Composer)
	}
	width := labelWidth(names)

	var answer string
	buttons := make([]string, 0, len(m.reveal.Marks))
	for _, mark := range m.reveal.Marks {
		label := fmt.Sprintf("%s  %s", mark.Letter, runewidth.FillRight(mark.Composer, width))
		style := disabledButtonStyle
		switch {
		case mark.Correct:
			style = correctButtonStyle
			label += "  ✓"
			answer = mark.Composer
		case mark.Selected:
			style = incorrectButtonStyle
			label += "  ✗"
		}
		buttons = append(buttons, style.Render(label))
	}

	result := resultIncorrectStyle.Render("Wrong! It was " + answer + ".")
	if m.reveal.Correct {
		result = resultCorrectStyle.Render("Correct! It was " + answer + ".")
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		art,
		"  ",
		lipgloss.JoinVertical(lipgloss.Left, append([]string{result}, buttons...)...),
	)
}

func (m Model) viewGameOver() string {
	lines := []string{
		titleStyle.Render("Game over"),
		fmt.Sprintf("Final score: %d", m.round.Score),
		fmt.Sprintf("High score:  %d", m.round.HighScore),
		"",
		m.zones.Mark("new-game", buttonStyle.Render("n  New game")),
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) viewStatusBar() string {
	n := m.notification
	text := "No sample playing"
	if n.Visible {
		position := (time.Duration(n.PositionMS) * time.Millisecond).Truncate(time.Second)
		labels := make([]string, 0, len(n.Actions))
		for _, action := range n.Actions {
			labels = append(labels, action.Label)
		}
		text = fmt.Sprintf("♪ %s · %s · %s %s · %s", n.Title, n.Text, n.State, position, strings.Join(labels, " / "))
	}

	style := statusBarStyle
	if m.width > 0 {
		// One line, however narrow the terminal.
		text = truncate.StringWithTail(text, uint(m.width), "…")
		style = style.Width(m.width)
	}
	return style.Render(text)
}

// labelWidth is the display width of the widest name, so accented composer
// names line up in equal-width buttons.
func labelWidth(names []string) int {
	width := 0
	for _, name := range names {
		width = max(width, runewidth.StringWidth(name))
	}
	return width
}

func candidateZone(index int) string {
	return fmt.Sprintf("candidate-%d", index)
}
