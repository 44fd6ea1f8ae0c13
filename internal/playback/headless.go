package playback

import (
	"context"
	"sync"
	"time"
)

// HeadlessBackend plays nothing. Position advances with the clock while a clip
// is "playing", which keeps transport controls and notifications meaningful
// without an audio device.
type HeadlessBackend struct {
	now      func() time.Time
	duration time.Duration
}

type HeadlessOption func(*HeadlessBackend)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) HeadlessOption {
	return func(b *HeadlessBackend) {
		b.now = now
	}
}

// WithClipDuration makes clips report StateEnded once position reaches d.
// Zero means clips never end.
func WithClipDuration(d time.Duration) HeadlessOption {
	return func(b *HeadlessBackend) {
		b.duration = d
	}
}

func NewHeadlessBackend(opts ...HeadlessOption) *HeadlessBackend {
	b := &HeadlessBackend{now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *HeadlessBackend) NewPlayer() Player {
	return &headlessPlayer{
		now:      b.now,
		duration: b.duration,
	}
}

func (b *HeadlessBackend) Close() error {
	return nil
}

type headlessPlayer struct {
	mu       sync.Mutex
	now      func() time.Time
	duration time.Duration
	listener Listener

	locator   string
	state     State
	prepared  bool
	released  bool
	offset    time.Duration
	startedAt time.Time
}

func (p *headlessPlayer) SetListener(listener Listener) {
	p.mu.Lock()
	p.listener = listener
	p.mu.Unlock()
}

func (p *headlessPlayer) Prepare(ctx context.Context, locator string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return ErrReleased
	}
	p.locator = locator
	p.prepared = true
	p.offset = 0
	p.mu.Unlock()

	p.transition(StateBuffering)
	p.transition(StateReady)
	return nil
}

func (p *headlessPlayer) Play() error {
	p.mu.Lock()
	if err := p.checkLocked(); err != nil {
		p.mu.Unlock()
		return err
	}
	if p.state == StatePlaying {
		p.mu.Unlock()
		return nil
	}
	if p.state == StateEnded {
		p.offset = 0
	}
	p.startedAt = p.now()
	p.mu.Unlock()

	p.transition(StatePlaying)
	return nil
}

func (p *headlessPlayer) Pause() error {
	p.mu.Lock()
	if err := p.checkLocked(); err != nil {
		p.mu.Unlock()
		return err
	}
	if p.state != StatePlaying {
		p.mu.Unlock()
		return nil
	}
	p.offset = p.positionLocked()
	p.mu.Unlock()

	p.transition(StatePaused)
	return nil
}

func (p *headlessPlayer) SeekTo(position time.Duration) error {
	p.mu.Lock()
	if err := p.checkLocked(); err != nil {
		p.mu.Unlock()
		return err
	}
	if position < 0 {
		position = 0
	}
	p.offset = position
	p.startedAt = p.now()
	state := p.state
	if state == StateEnded {
		state = StatePaused
	}
	p.mu.Unlock()

	p.transition(state)
	return nil
}

func (p *headlessPlayer) Stop() error {
	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return ErrReleased
	}
	p.offset = 0
	p.prepared = false
	p.mu.Unlock()

	p.transition(StateIdle)
	return nil
}

func (p *headlessPlayer) Release() error {
	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return nil
	}
	p.released = true
	p.prepared = false
	p.state = StateIdle
	p.mu.Unlock()
	return nil
}

func (p *headlessPlayer) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.checkEndedLocked()
	return p.state
}

func (p *headlessPlayer) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

func (p *headlessPlayer) checkLocked() error {
	if p.released {
		return ErrReleased
	}
	if !p.prepared {
		return ErrNotPrepared
	}
	return nil
}

func (p *headlessPlayer) positionLocked() time.Duration {
	position := p.offset
	if p.state == StatePlaying {
		position += p.now().Sub(p.startedAt)
	}
	if p.duration > 0 && position > p.duration {
		position = p.duration
	}
	return position
}

func (p *headlessPlayer) checkEndedLocked() {
	if p.state == StatePlaying && p.duration > 0 && p.positionLocked() >= p.duration {
		p.offset = p.duration
		p.state = StateEnded
	}
}

func (p *headlessPlayer) transition(state State) {
	p.mu.Lock()
	p.state = state
	position := p.positionLocked()
	listener := p.listener
	p.mu.Unlock()

	if listener != nil {
		listener(Event{Kind: EventStateChanged, State: state, Position: position})
	}
}
