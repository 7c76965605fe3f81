package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/badgeclock/rfid-terminal/internal/core/domain"
	"github.com/badgeclock/rfid-terminal/internal/core/ports"
	"github.com/badgeclock/rfid-terminal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	writeTimeout   = 5 * time.Second
)

// Dispatcher persists booking log entries on a fixed set of workers, sharded
// on the personnel number so one person's entries are written in order.
type Dispatcher struct {
	workers []chan *domain.BookingLogEntry
	repo    ports.BookingLogRepository
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.BookingLogRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan *domain.BookingLogEntry, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan *domain.BookingLogEntry, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers exit once Stop closed their
// channel and it is drained.
func (d *Dispatcher) Start() {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(i, ch)
	}
}

// Enqueue hands entry to the worker responsible for its personnel number.
// A full worker queue drops the entry; the booking itself already happened.
func (d *Dispatcher) Enqueue(entry *domain.BookingLogEntry) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn().Str("entry_id", entry.ID).Msg("audit dispatcher stopped, dropping entry")
		return
	}

	idx := d.shardIndex(entry.PersonnelNumber)
	select {
	case d.workers[idx] <- entry:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AuditWritesTotal.WithLabelValues("dropped").Inc()
		d.log.Error().
			Str("entry_id", entry.ID).
			Int("worker_id", idx).
			Msg("audit queue full, dropping entry")
	}
}

// Stop closes the queues and waits until pending entries are written or ctx
// expires.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a personnel number deterministically to a worker index.
func (d *Dispatcher) shardIndex(personnelNumber string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(personnelNumber))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(id int, ch <-chan *domain.BookingLogEntry) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for entry := range ch {
		metrics.AuditQueueDepth.WithLabelValues(label).Set(float64(len(ch)))

		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := d.repo.Insert(ctx, entry)
		cancel()

		if err != nil {
			metrics.AuditWritesTotal.WithLabelValues("error").Inc()
			d.log.Error().Err(err).
				Str("entry_id", entry.ID).
				Str("personnel_number", entry.PersonnelNumber).
				Int("worker_id", id).
				Msg("booking log write failed")
			continue
		}
		metrics.AuditWritesTotal.WithLabelValues("ok").Inc()
	}
}
