package reader

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/badgeclock/rfid-terminal/internal/core/domain"
	"github.com/badgeclock/rfid-terminal/pkg/metrics"
)

const (
	// DefaultScanTimeout is how long Next waits when the caller passes no timeout.
	DefaultScanTimeout = 30 * time.Second
	// DefaultQueueSize bounds scans waiting for a consumer.
	DefaultQueueSize = 8
)

type scan struct {
	id string
	at time.Time
}

// scanQueue hands debounced identifiers from a producer (read loop or HTTP
// submitter) to Next callers. When full, the oldest scan is dropped. Scans
// older than maxAge are discarded on delivery.
type scanQueue struct {
	reader   string
	ch       chan scan
	debounce *Debouncer
	maxAge   time.Duration
	now      func() time.Time
	log      zerolog.Logger

	pushMu sync.Mutex

	closeOnce sync.Once
	done      chan struct{}
	err       error
}

func newScanQueue(reader string, size int, debounce *Debouncer, maxAge time.Duration, log zerolog.Logger) *scanQueue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &scanQueue{
		reader:   reader,
		ch:       make(chan scan, size),
		debounce: debounce,
		maxAge:   maxAge,
		now:      time.Now,
		log:      log,
		done:     make(chan struct{}),
	}
}

// push queues id unless the debouncer suppresses it.
func (q *scanQueue) push(id string) bool {
	if !q.debounce.Allow(id) {
		metrics.ScansSuppressedTotal.WithLabelValues(q.reader).Inc()
		q.log.Debug().Str("chip_id", id).Msg("repeated scan suppressed")
		return false
	}

	q.pushMu.Lock()
	defer q.pushMu.Unlock()

	s := scan{id: id, at: q.now()}
	for {
		select {
		case q.ch <- s:
			metrics.ScansTotal.WithLabelValues(q.reader).Inc()
			q.log.Info().Str("chip_id", id).Msg("chip scanned")
			return true
		default:
		}
		select {
		case old := <-q.ch:
			metrics.ScansDiscardedTotal.WithLabelValues("overflow").Inc()
			q.log.Warn().Str("chip_id", old.id).Msg("scan queue full, dropping oldest scan")
		default:
		}
	}
}

// next blocks for the next fresh scan.
func (q *scanQueue) next(ctx context.Context, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultScanTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case s := <-q.ch:
			if q.maxAge > 0 && q.now().Sub(s.at) > q.maxAge {
				metrics.ScansDiscardedTotal.WithLabelValues("stale").Inc()
				q.log.Warn().Str("chip_id", s.id).Dur("age", q.now().Sub(s.at)).Msg("discarding stale scan")
				continue
			}
			return s.id, nil
		case <-q.done:
			return "", q.err
		case <-timer.C:
			return "", domain.ErrScanTimeout
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// close wakes every waiter with err; only the first call counts.
func (q *scanQueue) close(err error) {
	q.closeOnce.Do(func() {
		q.err = err
		close(q.done)
	})
}

func (q *scanQueue) closed() bool {
	select {
	case <-q.done:
		return true
	default:
		return false
	}
}

// drain discards everything still queued.
func (q *scanQueue) drain() {
	for {
		select {
		case <-q.ch:
		default:
			return
		}
	}
}
