package reader

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/badgeclock/rfid-terminal/internal/core/domain"
)

// BrowserReader receives identifiers submitted over HTTP, typically typed
// into the terminal page by a keyboard-emulating reader attached to the
// kiosk browser.
type BrowserReader struct {
	decoder *Decoder
	queue   *scanQueue
	log     zerolog.Logger
}

// NewBrowserReader uses dec only to normalise submitted text.
func NewBrowserReader(dec *Decoder, opts Options, log zerolog.Logger) *BrowserReader {
	if opts.Name == "" {
		opts.Name = "browser"
	}
	log = log.With().Str("reader", opts.Name).Logger()
	return &BrowserReader{
		decoder: dec,
		queue:   newScanQueue(opts.Name, opts.QueueSize, NewDebouncer(opts.Debounce), opts.MaxScanAge, log),
		log:     log,
	}
}

// Submit queues a submitted identifier. It returns false for blank input,
// for a repeat suppressed by debounce and after Stop.
func (b *BrowserReader) Submit(chipID string) bool {
	if b.queue.closed() {
		return false
	}
	id, ok := b.decoder.Normalize(chipID)
	if !ok {
		return false
	}
	return b.queue.push(id)
}

func (b *BrowserReader) Next(ctx context.Context, timeout time.Duration) (string, error) {
	return b.queue.next(ctx, timeout)
}

// Start is a no-op; there is no device to read.
func (b *BrowserReader) Start(context.Context) error {
	return nil
}

func (b *BrowserReader) Stop() error {
	b.queue.close(domain.ErrTransportClosed)
	b.queue.drain()
	return nil
}

func (b *BrowserReader) Running() bool {
	return !b.queue.closed()
}

func (b *BrowserReader) Kind() string {
	return "browser"
}
