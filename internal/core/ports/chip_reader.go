package ports

import (
	"context"
	"time"
)

// ChipReader produces chip identifiers from whatever device the terminal is
// configured with (serial reader, keyboard wedge or browser input).
type ChipReader interface {
	// Next blocks until a chip is scanned, the timeout elapses
	// (domain.ErrScanTimeout) or ctx is done.
	Next(ctx context.Context, timeout time.Duration) (string, error)
}

// ChipSubmitter is implemented by readers that accept identifiers pushed from
// outside, i.e. the browser reader.
type ChipSubmitter interface {
	Submit(chipID string) bool
}

// ChipReaderStatus is implemented by readers that report their health.
type ChipReaderStatus interface {
	Kind() string
	Running() bool
}
