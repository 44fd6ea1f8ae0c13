// Package playback wraps audio output behind a small player interface so the
// quiz can start, pause and restart clips without knowing the audio backend.
package playback

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotPrepared = errors.New("player not prepared")
	ErrReleased    = errors.New("player released")
)

type State int

const (
	StateIdle State = iota
	StateBuffering
	StateReady
	StatePlaying
	StatePaused
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBuffering:
		return "buffering"
	case StateReady:
		return "ready"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type EventKind int

const (
	EventStateChanged EventKind = iota
	EventError
)

type Event struct {
	Kind     EventKind
	State    State
	Position time.Duration
	Err      error
}

// Listener receives player events. Backends may call it from their own
// goroutines.
type Listener func(Event)

type Player interface {
	Prepare(ctx context.Context, locator string) error
	Play() error
	Pause() error
	SeekTo(position time.Duration) error
	Stop() error
	Release() error
	State() State
	Position() time.Duration
	SetListener(listener Listener)
}

// Backend hands out one Player per clip.
type Backend interface {
	NewPlayer() Player
	Close() error
}

// Fetcher loads the encoded bytes behind a sample locator.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) ([]byte, error)
}
