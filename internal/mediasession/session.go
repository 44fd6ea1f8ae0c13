// Package mediasession ties one clip's player to the transport controls and
// the "now playing" notification shown while a question is open.
package mediasession

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	logging "github.com/ipfs/go-log/v2"

	"classical-quiz/internal/catalog"
	"classical-quiz/internal/playback"
)

var log = logging.Logger("mediasession")

const (
	NotificationTitle = "Guess the composer"
	NotificationText  = "Now playing a classical sample"
)

var (
	ErrUnknownCommand = errors.New("unknown transport command")
	ErrInactive       = errors.New("media session inactive")
)

type Command string

const (
	CommandPlay     Command = "play"
	CommandPause    Command = "pause"
	CommandToggle   Command = "toggle"
	CommandPrevious Command = "previous"
)

// ParseCommand accepts the command names plus "restart" as an alias for
// previous.
func ParseCommand(name string) (Command, error) {
	switch Command(name) {
	case CommandPlay, CommandPause, CommandToggle, CommandPrevious:
		return Command(name), nil
	case "restart":
		return CommandPrevious, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
}

type Action struct {
	Command Command `json:"command"`
	Label   string  `json:"label"`
}

type PlaybackState struct {
	State     playback.State
	Position  time.Duration
	Actions   []Action
	UpdatedAt time.Time
}

type Notification struct {
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	Art        string    `json:"art"`
	State      string    `json:"state"`
	PositionMS int64     `json:"position_ms"`
	Actions    []Action  `json:"actions"`
	Visible    bool      `json:"visible"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Sink receives every notification change, one at a time and in order.
// Publish should return promptly since it holds up the next notification.
type Sink interface {
	Publish(n Notification)
}

type SinkFunc func(Notification)

func (f SinkFunc) Publish(n Notification) {
	f(n)
}

type Option func(*Session)

func WithSink(sink Sink) Option {
	return func(s *Session) {
		if sink != nil {
			s.sinks = append(s.sinks, sink)
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// Session is owned by the command layer and handed to the quiz controller
// and frontends. At most one player is live at a time.
type Session struct {
	backend playback.Backend
	now     func() time.Time

	// pubMu orders notifications: each one is built and delivered to every
	// sink before the next is built. Taken before mu, never while calling
	// into a player.
	pubMu sync.Mutex

	mu     sync.Mutex
	sinks  []Sink
	player playback.Player
	active bool
	state  PlaybackState
}

func New(backend playback.Backend, opts ...Option) *Session {
	s := &Session{
		backend: backend,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = PlaybackState{State: playback.StateIdle, UpdatedAt: s.now()}
	return s
}

// AddSink registers a sink after construction, for frontends created later
// than the session.
func (s *Session) AddSink(sink Sink) {
	if sink == nil {
		return
	}
	s.mu.Lock()
	s.sinks = append(s.sinks, sink)
	s.mu.Unlock()
}

// Begin replaces any live player with a new one for sample and starts it.
// The session stays active when playback fails so the round can go on.
func (s *Session) Begin(ctx context.Context, sample catalog.Sample) error {
	player := s.backend.NewPlayer()
	player.SetListener(s.listen(player))

	s.pubMu.Lock()
	s.mu.Lock()
	previous := s.player
	s.player = player
	s.active = true
	s.setStateLocked(playback.StateIdle, 0)
	n := s.notificationLocked()
	s.mu.Unlock()
	s.publishLocked(n)
	s.pubMu.Unlock()

	releasePlayer(previous)

	log.Debugw("session begin", "sample", sample.ID)
	if err := player.Prepare(ctx, sample.Locator); err != nil {
		log.Warnw("prepare failed", "sample", sample.ID, "err", err)
		return err
	}
	if err := player.Play(); err != nil {
		log.Warnw("play failed", "sample", sample.ID, "err", err)
		return err
	}
	return nil
}

// End stops and releases the player and hides the notification. Safe to call
// when nothing is playing.
func (s *Session) End() {
	s.pubMu.Lock()
	s.mu.Lock()
	player := s.player
	wasActive := s.active
	s.player = nil
	s.active = false
	s.setStateLocked(playback.StateIdle, 0)
	n := s.notificationLocked()
	s.mu.Unlock()
	if wasActive {
		log.Debugw("session end")
		s.publishLocked(n)
	}
	s.pubMu.Unlock()

	// Events fired by Stop find the player gone and are dropped.
	releasePlayer(player)
}

func (s *Session) Handle(cmd Command) error {
	switch cmd {
	case CommandPlay, CommandPause, CommandToggle, CommandPrevious:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}

	s.mu.Lock()
	player := s.player
	active := s.active
	s.mu.Unlock()
	if !active || player == nil {
		return ErrInactive
	}

	log.Debugw("transport command", "command", cmd)
	var err error
	switch cmd {
	case CommandPlay:
		err = player.Play()
	case CommandPause:
		err = player.Pause()
	case CommandToggle:
		if player.State() == playback.StatePlaying {
			err = player.Pause()
		} else {
			err = player.Play()
		}
	default:
		err = player.SeekTo(0)
	}

	// The player was released by a concurrent End or Begin, or never
	// prepared: nothing is live to control.
	if errors.Is(err, playback.ErrReleased) || errors.Is(err, playback.ErrNotPrepared) {
		return fmt.Errorf("%w: %w", ErrInactive, err)
	}
	return err
}

func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Session) PlaybackState() PlaybackState {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.state
	if s.player != nil {
		state.Position = s.player.Position()
	}
	state.Actions = append([]Action(nil), state.Actions...)
	return state
}

func (s *Session) Notification() Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.notificationLocked()
	if s.player != nil {
		n.PositionMS = s.player.Position().Milliseconds()
	}
	return n
}

// listen ignores events from players the session no longer owns.
func (s *Session) listen(player playback.Player) playback.Listener {
	return func(ev playback.Event) {
		s.pubMu.Lock()
		defer s.pubMu.Unlock()

		s.mu.Lock()
		if s.player != player {
			s.mu.Unlock()
			return
		}
		s.setStateLocked(ev.State, ev.Position)
		n := s.notificationLocked()
		s.mu.Unlock()

		if ev.Kind == playback.EventError {
			log.Errorw("player error", "err", ev.Err)
		}
		s.publishLocked(n)
	}
}

func (s *Session) setStateLocked(state playback.State, position time.Duration) {
	s.state = PlaybackState{
		State:     state,
		Position:  position,
		Actions:   actionsFor(state),
		UpdatedAt: s.now(),
	}
}

func (s *Session) notificationLocked() Notification {
	return Notification{
		Title:      NotificationTitle,
		Text:       NotificationText,
		Art:        catalog.PlaceholderArt,
		State:      s.state.State.String(),
		PositionMS: s.state.Position.Milliseconds(),
		Actions:    append([]Action(nil), s.state.Actions...),
		Visible:    s.active,
		UpdatedAt:  s.state.UpdatedAt,
	}
}

// publishLocked delivers n to every sink. The caller holds pubMu.
func (s *Session) publishLocked(n Notification) {
	s.mu.Lock()
	sinks := append([]Sink(nil), s.sinks...)
	s.mu.Unlock()

	for _, sink := range sinks {
		sink.Publish(n)
	}
}

func actionsFor(state playback.State) []Action {
	toggle := Action{Command: CommandPlay, Label: "Play"}
	if state == playback.StatePlaying || state == playback.StateBuffering {
		toggle = Action{Command: CommandPause, Label: "Pause"}
	}
	return []Action{
		{Command: CommandPrevious, Label: "Restart"},
		toggle,
	}
}

func releasePlayer(player playback.Player) {
	if player == nil {
		return
	}
	if err := player.Stop(); err != nil && !errors.Is(err, playback.ErrReleased) {
		log.Debugw("stop player", "err", err)
	}
	if err := player.Release(); err != nil {
		log.Debugw("release player", "err", err)
	}
}
