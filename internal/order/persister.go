package order

import (
	"context"
	"sync"
	"time"

	"cafebar-be/internal/logger"
	"cafebar-be/internal/metrics"
	"cafebar-be/internal/storage"

	"go.uber.org/zap"
)

// PersistResult reports the outcome of one background snapshot write.
type PersistResult struct {
	Key      string
	Err      error
	Duration time.Duration
}

// persister writes snapshots on a single goroutine. Writes to the same key
// coalesce: only the newest pending snapshot of a key is written.
type persister struct {
	kv      storage.Storage
	timeout time.Duration
	notify  chan<- PersistResult
	metrics *metrics.Metrics

	mu      sync.Mutex
	pending map[string]string
	keys    []string
	busy    bool
	idle    chan struct{} // closed while nothing is pending or in flight
	closed  bool

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
}

func newPersister(kv storage.Storage, timeout time.Duration, notify chan<- PersistResult, m *metrics.Metrics) *persister {
	idle := make(chan struct{})
	close(idle)

	p := &persister{
		kv:      kv,
		timeout: timeout,
		notify:  notify,
		metrics: m,
		pending: make(map[string]string),
		idle:    idle,
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *persister) enqueue(key, value string) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrStoreClosed
	}
	if _, ok := p.pending[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.pending[key] = value
	if !p.busy {
		p.busy = true
		p.idle = make(chan struct{})
	}
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
	return nil
}

func (p *persister) run() {
	defer close(p.done)
	for {
		select {
		case <-p.wake:
			p.drain()
		case <-p.quit:
			p.drain()
			return
		}
	}
}

func (p *persister) drain() {
	for {
		p.mu.Lock()
		if len(p.keys) == 0 {
			if p.busy {
				p.busy = false
				close(p.idle)
			}
			p.mu.Unlock()
			return
		}
		key := p.keys[0]
		p.keys = p.keys[1:]
		value := p.pending[key]
		delete(p.pending, key)
		p.mu.Unlock()

		p.write(key, value)
	}
}

func (p *persister) write(key, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	timer := metrics.StartTimer()
	err := p.kv.Set(ctx, key, value)
	res := PersistResult{Key: key, Err: err, Duration: timer.Duration()}

	if p.metrics != nil {
		p.metrics.ObservePersist(key, err, res.Duration)
	}

	log := logger.L().With(
		zap.String("layer", "store"),
		zap.String("key", key),
		zap.Duration("duration", res.Duration),
	)
	if err != nil {
		log.Error("failed to persist snapshot", zap.Error(err))
	} else {
		log.Debug("snapshot persisted", zap.Int("bytes", len(value)))
	}

	if p.notify != nil {
		select {
		case p.notify <- res:
		default:
			log.Warn("persist notification dropped, receiver not ready")
		}
	}
}

// flush blocks until every write enqueued so far has completed.
func (p *persister) flush(ctx context.Context) error {
	p.mu.Lock()
	idle := p.idle
	p.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *persister) close(ctx context.Context) error {
	p.mu.Lock()
	first := !p.closed
	p.closed = true
	p.mu.Unlock()

	if first {
		close(p.quit)
	}

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
