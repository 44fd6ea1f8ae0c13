package playback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("playback")

const (
	DefaultSampleRate = 44100
	watchInterval     = 100 * time.Millisecond
)

// OtoBackend owns the process-wide oto context. oto allows only one context
// per process, so a single backend serves every round.
type OtoBackend struct {
	ctx        *oto.Context
	sampleRate int
	fetcher    Fetcher
}

func NewOtoBackend(sampleRate int, fetcher Fetcher) (*OtoBackend, error) {
	if fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	log.Debugw("audio context ready", "sample_rate", sampleRate)
	return &OtoBackend{
		ctx:        ctx,
		sampleRate: sampleRate,
		fetcher:    fetcher,
	}, nil
}

func (b *OtoBackend) NewPlayer() Player {
	return &otoPlayer{backend: b}
}

// Close suspends the device. The oto context itself cannot be torn down.
func (b *OtoBackend) Close() error {
	return b.ctx.Suspend()
}

type otoPlayer struct {
	backend *OtoBackend

	mu        sync.Mutex
	listener  Listener
	state     State
	released  bool
	stream    *countingStream
	player    *oto.Player
	stopWatch context.CancelFunc
}

func (p *otoPlayer) SetListener(listener Listener) {
	p.mu.Lock()
	p.listener = listener
	p.mu.Unlock()
}

func (p *otoPlayer) Prepare(ctx context.Context, locator string) error {
	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return ErrReleased
	}
	p.closePlayerLocked()
	p.mu.Unlock()

	p.transition(StateBuffering)

	data, err := p.backend.fetcher.Fetch(ctx, locator)
	if err != nil {
		p.fail(fmt.Errorf("fetch %s: %w", locator, err))
		return err
	}
	decoded, err := decode(locator, data, p.backend.sampleRate)
	if err != nil {
		p.fail(fmt.Errorf("decode %s: %w", locator, err))
		return err
	}

	stream := &countingStream{src: decoded}

	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return ErrReleased
	}
	p.stream = stream
	p.player = p.backend.ctx.NewPlayer(stream)
	p.mu.Unlock()

	log.Debugw("clip prepared", "locator", locator, "bytes", decoded.Length())
	p.transition(StateReady)
	return nil
}

func (p *otoPlayer) Play() error {
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
		if _, err := p.player.Seek(0, io.SeekStart); err != nil {
			p.mu.Unlock()
			return err
		}
	}
	p.player.Play()
	p.startWatchLocked()
	p.mu.Unlock()

	p.transition(StatePlaying)
	return nil
}

func (p *otoPlayer) Pause() error {
	p.mu.Lock()
	if err := p.checkLocked(); err != nil {
		p.mu.Unlock()
		return err
	}
	if p.state != StatePlaying {
		p.mu.Unlock()
		return nil
	}
	p.player.Pause()
	p.stopWatchLocked()
	p.mu.Unlock()

	p.transition(StatePaused)
	return nil
}

func (p *otoPlayer) SeekTo(position time.Duration) error {
	p.mu.Lock()
	if err := p.checkLocked(); err != nil {
		p.mu.Unlock()
		return err
	}
	if position < 0 {
		position = 0
	}
	offset := p.durationToOffset(position)
	if _, err := p.player.Seek(offset, io.SeekStart); err != nil {
		p.mu.Unlock()
		return err
	}
	state := p.state
	if state == StateEnded {
		state = StatePaused
	}
	p.mu.Unlock()

	p.transition(state)
	return nil
}

func (p *otoPlayer) Stop() error {
	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return ErrReleased
	}
	p.closePlayerLocked()
	p.mu.Unlock()

	p.transition(StateIdle)
	return nil
}

func (p *otoPlayer) Release() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return nil
	}
	p.released = true
	p.closePlayerLocked()
	p.state = StateIdle
	return nil
}

func (p *otoPlayer) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *otoPlayer) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

func (p *otoPlayer) checkLocked() error {
	if p.released {
		return ErrReleased
	}
	if p.player == nil {
		return ErrNotPrepared
	}
	return nil
}

// positionLocked subtracts what oto has buffered but not yet played from what
// has been read out of the decoder.
func (p *otoPlayer) positionLocked() time.Duration {
	if p.player == nil || p.stream == nil {
		return 0
	}
	played := p.stream.offset.Load() - int64(p.player.BufferedSize())
	if played < 0 {
		played = 0
	}
	frames := played / bytesPerFrame
	return time.Duration(frames) * time.Second / time.Duration(p.backend.sampleRate)
}

func (p *otoPlayer) durationToOffset(position time.Duration) int64 {
	frames := int64(position) * int64(p.backend.sampleRate) / int64(time.Second)
	return frames * bytesPerFrame
}

func (p *otoPlayer) closePlayerLocked() {
	p.stopWatchLocked()
	if p.player != nil {
		if err := p.player.Close(); err != nil {
			log.Debugw("close player", "err", err)
		}
		p.player = nil
	}
	p.stream = nil
}

// startWatchLocked polls the oto player because it has no completion
// callback. A player that stops on its own has either drained its source or
// failed.
func (p *otoPlayer) startWatchLocked() {
	p.stopWatchLocked()

	ctx, cancel := context.WithCancel(context.Background())
	p.stopWatch = cancel
	player := p.player

	go func() {
		ticker := time.NewTicker(watchInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			if player.IsPlaying() {
				continue
			}

			p.mu.Lock()
			current := p.player == player && p.state == StatePlaying
			p.mu.Unlock()
			if !current {
				return
			}

			if err := player.Err(); err != nil {
				p.fail(err)
				return
			}
			p.transition(StateEnded)
			return
		}
	}()
}

func (p *otoPlayer) stopWatchLocked() {
	if p.stopWatch != nil {
		p.stopWatch()
		p.stopWatch = nil
	}
}

func (p *otoPlayer) transition(state State) {
	p.mu.Lock()
	p.state = state
	position := p.positionLocked()
	listener := p.listener
	p.mu.Unlock()

	if listener != nil {
		listener(Event{Kind: EventStateChanged, State: state, Position: position})
	}
}

func (p *otoPlayer) fail(err error) {
	log.Warnw("playback error", "err", err)

	p.mu.Lock()
	p.state = StateIdle
	listener := p.listener
	p.mu.Unlock()

	if listener != nil {
		listener(Event{Kind: EventError, State: StateIdle, Err: err})
	}
}

// countingStream tracks the read offset so position can be derived without
// asking the decoder.
type countingStream struct {
	src    pcmStream
	offset atomic.Int64
}

func (s *countingStream) Read(b []byte) (int, error) {
	n, err := s.src.Read(b)
	s.offset.Add(int64(n))
	return n, err
}

func (s *countingStream) Seek(offset int64, whence int) (int64, error) {
	pos, err := s.src.Seek(offset, whence)
	if err == nil {
		s.offset.Store(pos)
	}
	return pos, err
}
