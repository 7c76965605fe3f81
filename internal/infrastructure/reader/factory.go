package reader

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/badgeclock/rfid-terminal/internal/core/ports"
)

// Reader types selectable through configuration.
const (
	TypeSerial   = "serial"
	TypeKeyboard = "keyboard"
	TypeBrowser  = "browser"
)

// Device is a chip reader with a lifecycle.
type Device interface {
	ports.ChipReader
	Start(ctx context.Context) error
	Stop() error
	Running() bool
	Kind() string
}

// Config selects and tunes the reader.
type Config struct {
	Type        string
	Device      string
	Baud        int
	ReadTimeout time.Duration
	Decoder     DecoderConfig
	Debounce    time.Duration
	MaxScanAge  time.Duration
}

// New builds the configured reader. Serial devices are opened here; nothing
// is read before Start.
func New(cfg Config, log zerolog.Logger) (Device, error) {
	opts := Options{Name: cfg.Type, Debounce: cfg.Debounce, MaxScanAge: cfg.MaxScanAge}

	switch cfg.Type {
	case TypeSerial:
		dec, err := NewDecoder(cfg.Decoder, log)
		if err != nil {
			return nil, err
		}
		t, err := OpenSerial(SerialConfig{Device: cfg.Device, Baud: cfg.Baud, ReadTimeout: cfg.ReadTimeout})
		if err != nil {
			return nil, err
		}
		return NewStreamReader(t, dec, opts, log), nil

	case TypeKeyboard:
		// keyboard wedges type the id followed by Enter
		dc := cfg.Decoder
		dc.Framing = FramingLine
		dec, err := NewDecoder(dc, log)
		if err != nil {
			return nil, err
		}
		t, err := OpenLineDevice(cfg.Device, cfg.ReadTimeout)
		if err != nil {
			return nil, err
		}
		return NewStreamReader(t, dec, opts, log), nil

	case TypeBrowser:
		dec, err := NewDecoder(cfg.Decoder, log)
		if err != nil {
			return nil, err
		}
		return NewBrowserReader(dec, opts, log), nil

	default:
		return nil, fmt.Errorf("reader: unknown type %q", cfg.Type)
	}
}

var (
	_ Device              = (*StreamReader)(nil)
	_ Device              = (*BrowserReader)(nil)
	_ ports.ChipSubmitter = (*BrowserReader)(nil)
)
