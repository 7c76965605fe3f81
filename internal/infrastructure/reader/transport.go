package reader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/tarm/serial"
)

// Transport is the byte channel to a reader device. Read must return within
// a bounded time, with n == 0 and a nil error when nothing arrived, so the
// read loop can observe a stop request.
type Transport interface {
	io.Reader
	Close() error
}

// SerialConfig describes the UART the reader is attached to. The frame
// profile is fixed at 8N1.
type SerialConfig struct {
	Device      string
	Baud        int
	ReadTimeout time.Duration
}

// SerialTransport reads from a serial port through tarm/serial.
type SerialTransport struct {
	port   *serial.Port
	device string
}

// OpenSerial opens the device.
func OpenSerial(cfg SerialConfig) (*SerialTransport, error) {
	if cfg.Baud <= 0 {
		cfg.Baud = 9600
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = time.Second
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", cfg.Device, err)
	}
	return &SerialTransport{port: port, device: cfg.Device}, nil
}

// Read returns whatever bytes the UART delivered within the read timeout.
func (s *SerialTransport) Read(p []byte) (int, error) {
	n, err := s.port.Read(p)
	if n == 0 && errors.Is(err, io.EOF) {
		// VTIME expiry surfaces as a zero-length read.
		return 0, nil
	}
	return n, err
}

func (s *SerialTransport) Close() error {
	if s.port == nil {
		return nil
	}
	return s.port.Close()
}

// LineTransport adapts a blocking text source such as the stdin of a kiosk
// with a keyboard-emulating reader. A pump goroutine reads the source; Read
// waits at most poll for data.
type LineTransport struct {
	chunks  chan []byte
	errc    chan error
	closed  chan struct{}
	once    sync.Once
	poll    time.Duration
	pending []byte
	src     io.Reader
}

// NewLineTransport starts pumping src. A src that is an io.Closer is closed
// by Close; otherwise the pump stays blocked on it until the process exits.
func NewLineTransport(src io.Reader, poll time.Duration) *LineTransport {
	if poll <= 0 {
		poll = time.Second
	}
	t := &LineTransport{
		chunks: make(chan []byte, 16),
		errc:   make(chan error, 1),
		closed: make(chan struct{}),
		poll:   poll,
		src:    src,
	}
	go t.pump()
	return t
}

// OpenLineDevice opens path for line reading; "", "-" and "stdin" select
// os.Stdin.
func OpenLineDevice(path string, poll time.Duration) (*LineTransport, error) {
	switch path {
	case "", "-", "stdin":
		return NewLineTransport(os.Stdin, poll), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open line device %s: %w", path, err)
	}
	return NewLineTransport(f, poll), nil
}

func (t *LineTransport) pump() {
	buf := make([]byte, 256)
	for {
		n, err := t.src.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case t.chunks <- chunk:
			case <-t.closed:
				return
			}
		}
		if err != nil {
			select {
			case t.errc <- err:
			case <-t.closed:
			}
			return
		}
	}
}

func (t *LineTransport) Read(p []byte) (int, error) {
	if len(t.pending) > 0 {
		n := copy(p, t.pending)
		t.pending = t.pending[n:]
		return n, nil
	}

	timer := time.NewTimer(t.poll)
	defer timer.Stop()

	select {
	case chunk := <-t.chunks:
		n := copy(p, chunk)
		t.pending = chunk[n:]
		return n, nil
	case err := <-t.errc:
		return 0, err
	case <-t.closed:
		return 0, io.ErrClosedPipe
	case <-timer.C:
		return 0, nil
	}
}

func (t *LineTransport) Close() error {
	var err error
	t.once.Do(func() {
		close(t.closed)
		if c, ok := t.src.(io.Closer); ok && t.src != os.Stdin {
			err = c.Close()
		}
	})
	return err
}
