package reader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/badgeclock/rfid-terminal/internal/core/domain"
	"github.com/badgeclock/rfid-terminal/pkg/metrics"
)

const readBufferSize = 256

// Options tune how scans are delivered.
type Options struct {
	// Name labels metrics and logs, e.g. "serial" or "keyboard".
	Name       string
	Debounce   time.Duration
	QueueSize  int
	MaxScanAge time.Duration
}

// StreamReader runs a read loop over a Transport, decodes frames and queues
// the identifiers for Next.
type StreamReader struct {
	name      string
	transport Transport
	decoder   *Decoder
	queue     *scanQueue
	log       zerolog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	stopped bool
}

// NewStreamReader wires a transport to a decoder. The transport is owned by
// the reader from now on and closed by Stop.
func NewStreamReader(t Transport, dec *Decoder, opts Options, log zerolog.Logger) *StreamReader {
	if opts.Name == "" {
		opts.Name = "serial"
	}
	log = log.With().Str("reader", opts.Name).Logger()
	return &StreamReader{
		name:      opts.Name,
		transport: t,
		decoder:   dec,
		queue:     newScanQueue(opts.Name, opts.QueueSize, NewDebouncer(opts.Debounce), opts.MaxScanAge, log),
		log:       log,
	}
}

// Start launches the read loop. It fails when called twice or after Stop.
func (r *StreamReader) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.stopped {
		return errors.New("reader: already started")
	}
	r.started = true

	ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Add(1)
	go r.loop(ctx)

	metrics.ReaderUp.WithLabelValues(r.name).Set(1)
	r.log.Info().Msg("reader started")
	return nil
}

func (r *StreamReader) loop(ctx context.Context) {
	defer r.wg.Done()
	defer metrics.ReaderUp.WithLabelValues(r.name).Set(0)

	buf := make([]byte, readBufferSize)
	for {
		if ctx.Err() != nil {
			return
		}
		n, err := r.transport.Read(buf)
		if n > 0 {
			for _, id := range r.decoder.Feed(buf[:n]) {
				r.queue.push(id)
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			r.log.Error().Err(err).Msg("reader transport failed, stopping read loop")
			r.queue.close(fmt.Errorf("%w: %v", domain.ErrTransportClosed, err))
			return
		}
	}
}

// Next returns the next scanned identifier. It fails with
// domain.ErrScanTimeout when nothing was scanned in time and with
// domain.ErrTransportClosed once the read loop has ended.
func (r *StreamReader) Next(ctx context.Context, timeout time.Duration) (string, error) {
	return r.queue.next(ctx, timeout)
}

// Stop cancels the read loop, waits for it to exit, then closes the
// transport. Partial frames and queued scans are discarded. Safe to call
// more than once.
func (r *StreamReader) Stop() error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return nil
	}
	r.stopped = true
	cancel := r.cancel
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()

	r.decoder.Reset()
	r.queue.close(domain.ErrTransportClosed)
	r.queue.drain()
	metrics.ReaderUp.WithLabelValues(r.name).Set(0)

	if err := r.transport.Close(); err != nil {
		return fmt.Errorf("close transport: %w", err)
	}
	r.log.Info().Msg("reader stopped")
	return nil
}

// Running reports whether the read loop is alive.
func (r *StreamReader) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started && !r.stopped && !r.queue.closed()
}

// Kind returns the reader name.
func (r *StreamReader) Kind() string {
	return r.name
}
