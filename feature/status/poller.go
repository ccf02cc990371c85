package status

import (
	"context"
	"sync"
	"time"

	"stremio-service/core/supervisor"

	"go.uber.org/zap"
)

// Source is the read-only view of the supervisor the poller observes.
type Source interface {
	Snapshot() (supervisor.Phase, *supervisor.ServerInfo)
}

// Snapshot is the latest observed server status.
type Snapshot struct {
	Phase     supervisor.Phase       `json:"phase"`
	Info      *supervisor.ServerInfo `json:"info"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// Poller checks the supervisor status on a fixed cadence and on demand and broadcasts the result.
// It never starts or stops the server.
type Poller struct {
	source   Source
	interval time.Duration
	logger   *zap.Logger

	trigger chan struct{}

	mu     sync.RWMutex
	latest Snapshot
	subs   map[int]chan Snapshot
	nextID int
	closed bool
}

// DefaultInterval is used when no positive interval is configured.
const DefaultInterval = 30 * time.Second

// NewPoller creates a poller that checks source every interval.
func NewPoller(source Source, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		source:   source,
		interval: interval,
		logger:   logger,
		trigger:  make(chan struct{}, 1),
		latest:   Snapshot{Phase: supervisor.PhaseStopped},
		subs:     make(map[int]chan Snapshot),
	}
}

// Run polls until ctx is done. The first periodic poll happens one interval after Run starts.
// Subscribers are closed when Run returns.
func (p *Poller) Run(ctx context.Context) error {
	defer p.Close()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.Poll()
		case <-p.trigger:
			p.Poll()
		}
	}
}

// Trigger requests a poll as soon as possible. Requests made while one is pending are merged.
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Poll checks the status now, stores and broadcasts the snapshot.
func (p *Poller) Poll() Snapshot {
	phase, info := p.source.Snapshot()
	snap := Snapshot{
		Phase:     phase,
		Info:      info,
		UpdatedAt: time.Now(),
	}

	p.mu.Lock()
	prev := p.latest
	p.latest = snap
	for _, ch := range p.subs {
		// Keep only the newest snapshot for slow subscribers.
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
	p.mu.Unlock()

	if prev.Phase != snap.Phase {
		p.logger.Info("server status changed",
			zap.String("from", prev.Phase.String()),
			zap.String("to", snap.Phase.String()),
		)
	}
	return snap
}

// Latest returns the most recent snapshot.
func (p *Poller) Latest() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest
}

// Subscribe returns a channel receiving every new snapshot and a function to cancel the
// subscription. The channel is closed on cancel or when the poller stops.
func (p *Poller) Subscribe() (<-chan Snapshot, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if p.closed {
		close(ch)
		return ch, func() {}
	}

	id := p.nextID
	p.nextID++
	p.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			if sub, ok := p.subs[id]; ok {
				delete(p.subs, id)
				close(sub)
			}
		})
	}
}

// Close closes every subscription. Polls after Close still update Latest.
func (p *Poller) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for id, ch := range p.subs {
		delete(p.subs, id)
		close(ch)
	}
}
