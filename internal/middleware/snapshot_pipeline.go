package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"OmniTrade/internal/domain/models"
	domrepo "OmniTrade/internal/domain/repository"
	"OmniTrade/pkg/logger"
)

// SnapshotPipeline sits between the dashboard store and the snapshot bus.
// It drops out-of-order versions, and when the downstream publisher fails it
// buffers snapshots and retries them in the background with capped backoff.
type SnapshotPipeline struct {
	next       domrepo.SnapshotPublisher
	metrics    domrepo.Metrics
	logger     *logger.Logger
	bufCh      chan *models.Snapshot
	backoffMin time.Duration
	backoffMax time.Duration

	mu          sync.Mutex
	lastVersion uint64
	started     bool
	stopCh      chan struct{}
	done        chan struct{}
}

type PipelineOption func(*SnapshotPipeline)

// WithBufferSize sets how many snapshots are held while downstream is down.
func WithBufferSize(n int) PipelineOption {
	return func(p *SnapshotPipeline) {
		if n > 0 {
			p.bufCh = make(chan *models.Snapshot, n)
		}
	}
}

// WithBackoff sets the retry delay range.
func WithBackoff(min, max time.Duration) PipelineOption {
	return func(p *SnapshotPipeline) {
		if min > 0 {
			p.backoffMin = min
		}
		if max >= p.backoffMin {
			p.backoffMax = max
		}
	}
}

func NewSnapshotPipeline(next domrepo.SnapshotPublisher, metrics domrepo.Metrics, l *logger.Logger, opts ...PipelineOption) *SnapshotPipeline {
	p := &SnapshotPipeline{
		next:       next,
		metrics:    metrics,
		logger:     l,
		bufCh:      make(chan *models.Snapshot, 64),
		backoffMin: 50 * time.Millisecond,
		backoffMax: 2 * time.Second,
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ domrepo.SnapshotPublisher = (*SnapshotPipeline)(nil)

// Start launches background flushing of buffered snapshots.
func (p *SnapshotPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go p.flushLoop(ctx)
}

func (p *SnapshotPipeline) flushLoop(ctx context.Context) {
	defer close(p.done)
	backoff := p.backoffMin
	var pending *models.Snapshot
	for {
		if pending == nil {
			select {
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			case pending = <-p.bufCh:
			}
		}

		// retry the same snapshot until it lands so versions stay in order
		if err := p.next.Publish(ctx, pending); err != nil {
			p.metrics.RecordError("pipeline_flush")
			select {
			case <-time.After(backoff):
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			}
			if backoff *= 2; backoff > p.backoffMax {
				backoff = p.backoffMax
			}
			continue
		}
		pending = nil
		backoff = p.backoffMin
	}
}

// Publish validates s, forwards it, and buffers it on downstream failure.
func (p *SnapshotPipeline) Publish(ctx context.Context, s *models.Snapshot) error {
	start := time.Now()
	if !p.accept(s) {
		return nil
	}

	if err := p.next.Publish(ctx, s); err != nil {
		p.metrics.RecordError("pipeline_process")
		p.push(s)
		p.logger.Debug("snapshot buffered", logger.Uint64("version", s.Version), logger.Int("buffered", len(p.bufCh)))
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_publish", time.Since(start).Seconds())
	return nil
}

// Enqueue hands s to the background flusher without blocking the caller.
// Store subscribers use this so a slow broker never stalls a transition.
func (p *SnapshotPipeline) Enqueue(s *models.Snapshot) {
	if p.accept(s) {
		p.push(s)
	}
}

// accept validates s and rejects versions at or below the last one seen.
func (p *SnapshotPipeline) accept(s *models.Snapshot) bool {
	if err := validateSnapshot(s); err != nil {
		p.metrics.RecordError("pipeline_validate")
		p.logger.Warn("snapshot rejected", logger.Error(err))
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if s.Version <= p.lastVersion {
		return false
	}
	p.lastVersion = s.Version
	return true
}

// push buffers s, evicting the oldest buffered snapshot when full.
func (p *SnapshotPipeline) push(s *models.Snapshot) {
	for i := 0; i < 2; i++ {
		select {
		case p.bufCh <- s:
			return
		default:
		}
		select {
		case <-p.bufCh:
			p.metrics.RecordError("pipeline_buffer_drop")
		default:
		}
	}
}

// Buffered reports snapshots waiting for a retry.
func (p *SnapshotPipeline) Buffered() int {
	return len(p.bufCh)
}

// Close stops the flusher and closes the downstream publisher.
func (p *SnapshotPipeline) Close() error {
	p.mu.Lock()
	started := p.started
	p.started = false
	p.mu.Unlock()
	if started {
		close(p.stopCh)
		<-p.done
	}
	return p.next.Close()
}

func validateSnapshot(s *models.Snapshot) error {
	if s == nil {
		return fmt.Errorf("snapshot nil")
	}
	if s.Version == 0 {
		return fmt.Errorf("snapshot unversioned")
	}
	if s.Health < 0 || s.Health > 100 {
		return fmt.Errorf("health %d out of range", s.Health)
	}
	if !s.Scanners.Uncertainty.Valid() {
		return fmt.Errorf("uncertainty %q invalid", s.Scanners.Uncertainty)
	}
	return nil
}
