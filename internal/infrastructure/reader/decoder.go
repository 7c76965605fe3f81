package reader

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/badgeclock/rfid-terminal/internal/core/domain"
	"github.com/badgeclock/rfid-terminal/pkg/metrics"
)

// Framing selects how frames are delimited in the byte stream.
type Framing string

const (
	// FramingSTXETX is the binary protocol of UART readers:
	// STX, payload, checksum, ETX.
	FramingSTXETX Framing = "stx_etx"
	// FramingLine is one ASCII identifier per line (keyboard wedges, some
	// serial readers).
	FramingLine Framing = "line"
)

// IDFormat selects how identifier bytes are rendered.
type IDFormat string

const (
	IDDecimal IDFormat = "decimal"
	IDHex     IDFormat = "hex"
)

const (
	stx byte = 0x02
	etx byte = 0x03

	// maxPending bounds what is buffered while waiting for an end marker or
	// newline. Readers never send frames anywhere near this size.
	maxPending = 1024
)

// DecoderConfig describes the reader's frame layout.
type DecoderConfig struct {
	Framing Framing
	Start   byte
	End     byte
	// PayloadLen fixes the number of payload bytes between STX and the
	// checksum. Zero means variable length: the frame ends at the first ETX
	// after STX. Fixed layouts are needed when payload bytes may equal ETX.
	PayloadLen     int
	ChecksumLen    int
	VerifyChecksum bool
	IDFormat       IDFormat
	// IDWidth is the minimum width of decimal identifiers (left zero padded).
	IDWidth int
	// IDBytes keeps only the trailing N payload bytes as identifier; 0 keeps all.
	IDBytes int
}

// DefaultDecoderConfig is the layout of the UART readers shipped with the
// terminal: variable payload, one verified XOR checksum byte, 10-digit
// decimal ids. A payload byte equal to ETX cuts the frame short there; the
// checksum then fails and the frame is dropped instead of yielding a wrong
// id. Readers whose checksum is not XOR need a fixed PayloadLen.
func DefaultDecoderConfig() DecoderConfig {
	return DecoderConfig{
		Framing:        FramingSTXETX,
		Start:          stx,
		End:            etx,
		ChecksumLen:    1,
		VerifyChecksum: true,
		IDFormat:       IDDecimal,
		IDWidth:        10,
	}
}

// ambiguous reports a layout where a payload byte equal to the end marker
// truncates the id without any check noticing.
func (c DecoderConfig) ambiguous() bool {
	return c.Framing == FramingSTXETX && c.PayloadLen == 0 && !c.VerifyChecksum
}

func (c DecoderConfig) validate() error {
	switch c.Framing {
	case FramingSTXETX, FramingLine:
	default:
		return fmt.Errorf("unknown framing %q", c.Framing)
	}
	switch c.IDFormat {
	case IDDecimal, IDHex:
	default:
		return fmt.Errorf("unknown id format %q", c.IDFormat)
	}
	if c.Start == c.End {
		return fmt.Errorf("start and end marker must differ")
	}
	if c.ChecksumLen < 0 || c.PayloadLen < 0 || c.IDBytes < 0 || c.IDWidth < 0 {
		return fmt.Errorf("lengths must not be negative")
	}
	if c.VerifyChecksum && c.ChecksumLen != 1 {
		return fmt.Errorf("checksum verification needs a single XOR byte, got %d", c.ChecksumLen)
	}
	if c.PayloadLen > 0 && c.IDBytes > c.PayloadLen {
		return fmt.Errorf("id bytes %d exceed payload length %d", c.IDBytes, c.PayloadLen)
	}
	return nil
}

// minFrameLen is STX + one payload byte + checksum + ETX.
func (c DecoderConfig) minFrameLen() int {
	return 1 + 1 + c.ChecksumLen + 1
}

// Decoder turns arbitrarily chunked reader output into chip identifiers.
// It is not safe for concurrent use; the read loop owns it.
type Decoder struct {
	cfg DecoderConfig
	buf []byte
	log zerolog.Logger
}

// NewDecoder validates cfg and returns an empty decoder.
func NewDecoder(cfg DecoderConfig, log zerolog.Logger) (*Decoder, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("decoder: %w", err)
	}
	if cfg.ambiguous() {
		log.Warn().Msg("variable frame layout without checksum verification: ids containing the end marker byte decode wrong; set READER_PAYLOAD_LEN or READER_VERIFY_CHECKSUM")
	}
	return &Decoder{cfg: cfg, log: log}, nil
}

// Feed appends chunk to the pending buffer and returns every identifier
// whose frame completed, in stream order. Malformed frames are dropped.
func (d *Decoder) Feed(chunk []byte) []string {
	d.buf = append(d.buf, chunk...)
	if d.cfg.Framing == FramingLine {
		return d.feedLines()
	}
	return d.feedFrames()
}

// Reset discards any partial frame.
func (d *Decoder) Reset() {
	d.buf = d.buf[:0]
}

// Pending returns the number of buffered bytes not yet part of a frame.
func (d *Decoder) Pending() int {
	return len(d.buf)
}

// Normalize renders a textual identifier (typed or submitted) the same way
// the line framing does.
func (d *Decoder) Normalize(text string) (string, bool) {
	id := strings.TrimFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	})
	if id == "" {
		return "", false
	}
	switch d.cfg.IDFormat {
	case IDHex:
		return strings.ToUpper(id), true
	default:
		if isDigits(id) {
			return padLeft(id, d.cfg.IDWidth), true
		}
		return id, true
	}
}

func (d *Decoder) feedFrames() []string {
	var ids []string
	for {
		start := bytes.IndexByte(d.buf, d.cfg.Start)
		if start < 0 {
			// Nothing here can become part of a frame.
			d.buf = d.buf[:0]
			return ids
		}
		if start > 0 {
			d.buf = d.buf[start:]
		}

		end, ok := d.frameEnd()
		if !ok {
			if len(d.buf) > maxPending {
				d.drop("oversize", len(d.buf))
				// Resync on the next start marker.
				d.buf = d.buf[1:]
				continue
			}
			return ids
		}
		if end < 0 {
			// Fixed layout without ETX where it belongs: a stray start byte.
			d.drop("layout", 1)
			d.buf = d.buf[1:]
			continue
		}

		raw := d.buf[:end+1]
		d.buf = d.buf[end+1:]

		frame, err := d.split(raw)
		if err != nil {
			continue
		}
		id, err := d.render(frame.Payload)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
}

// frameEnd locates the end marker of the frame starting at d.buf[0].
// ok=false means more bytes are needed; end=-1 means the fixed layout does
// not match.
func (d *Decoder) frameEnd() (end int, ok bool) {
	if d.cfg.PayloadLen > 0 {
		pos := 1 + d.cfg.PayloadLen + d.cfg.ChecksumLen
		if len(d.buf) <= pos {
			return 0, false
		}
		if d.buf[pos] != d.cfg.End {
			return -1, true
		}
		return pos, true
	}
	rel := bytes.IndexByte(d.buf[1:], d.cfg.End)
	if rel < 0 {
		return 0, false
	}
	return rel + 1, true
}

func (d *Decoder) split(raw []byte) (*domain.ChipFrame, error) {
	if len(raw) < d.cfg.minFrameLen() {
		d.drop("short", len(raw))
		return nil, domain.ErrMalformedFrame
	}
	inner := raw[1 : len(raw)-1]
	cut := len(inner) - d.cfg.ChecksumLen
	frame := &domain.ChipFrame{
		Raw:      raw,
		Payload:  inner[:cut],
		Checksum: inner[cut:],
	}
	if d.cfg.VerifyChecksum && xor8(frame.Payload) != frame.Checksum[0] {
		d.drop("checksum", len(raw))
		return nil, domain.ErrMalformedFrame
	}
	return frame, nil
}

func (d *Decoder) render(payload []byte) (string, error) {
	idBytes := payload
	if n := d.cfg.IDBytes; n > 0 {
		if n > len(payload) {
			d.drop("short", len(payload))
			return "", domain.ErrMalformedFrame
		}
		idBytes = payload[len(payload)-n:]
	}
	if d.cfg.IDFormat == IDHex {
		return strings.ToUpper(hex.EncodeToString(idBytes)), nil
	}
	return padLeft(new(big.Int).SetBytes(idBytes).String(), d.cfg.IDWidth), nil
}

func (d *Decoder) feedLines() []string {
	var ids []string
	for {
		nl := bytes.IndexByte(d.buf, '\n')
		if nl < 0 {
			if len(d.buf) > maxPending {
				d.drop("oversize", len(d.buf))
				d.buf = d.buf[:0]
			}
			return ids
		}
		line := string(d.buf[:nl])
		d.buf = d.buf[nl+1:]
		if id, ok := d.Normalize(line); ok {
			ids = append(ids, id)
		}
	}
}

func (d *Decoder) drop(reason string, size int) {
	metrics.FramesDroppedTotal.WithLabelValues(reason).Inc()
	d.log.Warn().Str("reason", reason).Int("bytes", size).Msg("dropping malformed frame")
}

func xor8(b []byte) byte {
	var x byte
	for _, v := range b {
		x ^= v
	}
	return x
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
