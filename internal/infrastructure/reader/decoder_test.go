package reader

import (
	"testing"

	"github.com/rs/zerolog"
)

// frame 12 34 56 78 with XOR checksum 0x08 → 305419896
var wellFormed = []byte{0x02, 0x12, 0x34, 0x56, 0x78, 0x08, 0x03}

func newTestDecoder(t *testing.T, mutate func(*DecoderConfig)) *Decoder {
	t.Helper()
	cfg := DefaultDecoderConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	d, err := NewDecoder(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	return d
}

func feedAll(d *Decoder, chunks ...[]byte) []string {
	var ids []string
	for _, c := range chunks {
		ids = append(ids, d.Feed(c)...)
	}
	return ids
}

func TestDecoder_SingleFrame(t *testing.T) {
	d := newTestDecoder(t, nil)

	ids := d.Feed(wellFormed)
	if len(ids) != 1 || ids[0] != "0305419896" {
		t.Fatalf("got %v", ids)
	}
	if d.Pending() != 0 {
		t.Fatalf("expected empty buffer, %d bytes pending", d.Pending())
	}
}

func TestDecoder_ChunkingDoesNotChangeResult(t *testing.T) {
	// every two-way split
	for cut := 0; cut <= len(wellFormed); cut++ {
		d := newTestDecoder(t, nil)
		ids := feedAll(d, wellFormed[:cut], wellFormed[cut:])
		if len(ids) != 1 || ids[0] != "0305419896" {
			t.Fatalf("split at %d: got %v", cut, ids)
		}
	}

	// one byte at a time
	d := newTestDecoder(t, nil)
	var ids []string
	for _, b := range wellFormed {
		ids = append(ids, d.Feed([]byte{b})...)
	}
	if len(ids) != 1 || ids[0] != "0305419896" {
		t.Fatalf("bytewise: got %v", ids)
	}

	// three chunks
	d = newTestDecoder(t, nil)
	ids = feedAll(d, wellFormed[:2], wellFormed[2:5], wellFormed[5:])
	if len(ids) != 1 || ids[0] != "0305419896" {
		t.Fatalf("three chunks: got %v", ids)
	}
}

func TestDecoder_WaitsForEndMarker(t *testing.T) {
	d := newTestDecoder(t, nil)

	if ids := d.Feed(wellFormed[:len(wellFormed)-1]); len(ids) != 0 {
		t.Fatalf("incomplete frame decoded: %v", ids)
	}
	if d.Pending() != len(wellFormed)-1 {
		t.Fatalf("partial frame must stay buffered, pending=%d", d.Pending())
	}
	if ids := d.Feed([]byte{0x03}); len(ids) != 1 {
		t.Fatalf("completed frame not decoded: %v", ids)
	}
}

func TestDecoder_GarbageBeforeStartIsDiscarded(t *testing.T) {
	d := newTestDecoder(t, nil)

	// noise, then a frame split across chunks
	ids := feedAll(d, []byte{0x41, 0x42, 0x99}, wellFormed[:3], wellFormed[3:])
	if len(ids) != 1 || ids[0] != "0305419896" {
		t.Fatalf("got %v", ids)
	}
}

func TestDecoder_BytesWithoutStartAreDropped(t *testing.T) {
	d := newTestDecoder(t, nil)

	d.Feed([]byte{0x55, 0x66, 0x03, 0x77})
	if d.Pending() != 0 {
		t.Fatalf("bytes without a start marker must not be kept, pending=%d", d.Pending())
	}
	ids := d.Feed(wellFormed)
	if len(ids) != 1 || ids[0] != "0305419896" {
		t.Fatalf("got %v", ids)
	}
}

func TestDecoder_TrailingBytesKeptForNextFrame(t *testing.T) {
	d := newTestDecoder(t, nil)

	second := []byte{0x02, 0x00, 0x12, 0xD6, 0x87, 0x43, 0x03}
	chunk := append(append([]byte{}, wellFormed...), second[:4]...)

	ids := d.Feed(chunk)
	if len(ids) != 1 || ids[0] != "0305419896" {
		t.Fatalf("first frame: got %v", ids)
	}
	if d.Pending() != 4 {
		t.Fatalf("start of the second frame must be retained, pending=%d", d.Pending())
	}
	ids = d.Feed(second[4:])
	if len(ids) != 1 || ids[0] != "0001234567" {
		t.Fatalf("second frame: got %v", ids)
	}
}

func TestDecoder_MultipleFramesInOneChunk(t *testing.T) {
	d := newTestDecoder(t, nil)

	second := []byte{0x02, 0x00, 0x12, 0xD6, 0x87, 0x43, 0x03}
	chunk := append(append(append([]byte{}, wellFormed...), 0xFF), second...)

	ids := d.Feed(chunk)
	if len(ids) != 2 || ids[0] != "0305419896" || ids[1] != "0001234567" {
		t.Fatalf("got %v", ids)
	}
}

func TestDecoder_ShortFrameDropped(t *testing.T) {
	d := newTestDecoder(t, nil)

	// STX, checksum only, ETX: no payload byte
	ids := d.Feed([]byte{0x02, 0x08, 0x03})
	if len(ids) != 0 {
		t.Fatalf("short frame must be dropped, got %v", ids)
	}
	// the stream keeps working
	ids = d.Feed(wellFormed)
	if len(ids) != 1 {
		t.Fatalf("decoder stopped after malformed frame: %v", ids)
	}
}

func TestDecoder_ChecksumVerification(t *testing.T) {
	d := newTestDecoder(t, func(c *DecoderConfig) { c.VerifyChecksum = true })

	bad := []byte{0x02, 0x12, 0x34, 0x56, 0x78, 0x09, 0x03}
	if ids := d.Feed(bad); len(ids) != 0 {
		t.Fatalf("frame with wrong checksum accepted: %v", ids)
	}
	if ids := d.Feed(wellFormed); len(ids) != 1 {
		t.Fatalf("valid frame rejected: %v", ids)
	}
}

func TestDecoder_HexRendering(t *testing.T) {
	d := newTestDecoder(t, func(c *DecoderConfig) { c.IDFormat = IDHex })

	ids := d.Feed(wellFormed)
	if len(ids) != 1 || ids[0] != "12345678" {
		t.Fatalf("got %v", ids)
	}

	d = newTestDecoder(t, func(c *DecoderConfig) { c.IDFormat = IDHex })
	ids = d.Feed([]byte{0x02, 0x00, 0xAB, 0xCD, 0x66, 0x03})
	if len(ids) != 1 || ids[0] != "00ABCD" {
		t.Fatalf("got %v", ids)
	}
}

func TestDecoder_FixedLayoutWithMarkerBytesInPayload(t *testing.T) {
	// STX, eight payload bytes (containing 0x02 and 0x03), checksum AA, ETX
	raw := []byte{0x02, 0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0xAA, 0x03}

	// AA is not the XOR of the payload
	d := newTestDecoder(t, func(c *DecoderConfig) {
		c.PayloadLen = 8
		c.VerifyChecksum = false
	})
	ids := d.Feed(raw)
	if len(ids) != 1 || ids[0] != "283686952306183" {
		t.Fatalf("full payload: got %v", ids)
	}

	// EM4100-style rendering of the trailing four bytes
	d = newTestDecoder(t, func(c *DecoderConfig) {
		c.PayloadLen = 8
		c.VerifyChecksum = false
		c.IDBytes = 4
	})
	ids = feedAll(d, raw[:5], raw[5:])
	if len(ids) != 1 || ids[0] != "0067438087" {
		t.Fatalf("trailing bytes: got %v", ids)
	}
}

func TestDecoder_DefaultsNeverEmitTruncatedID(t *testing.T) {
	// variable layout stops at the 0x03 inside the payload
	raw := []byte{0x02, 0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0xAA, 0x03}

	for cut := 0; cut <= len(raw); cut++ {
		d := newTestDecoder(t, nil)
		if ids := feedAll(d, raw[:cut], raw[cut:]); len(ids) != 0 {
			t.Fatalf("split at %d: truncated frame decoded as %v", cut, ids)
		}
	}

	// without verification the same bytes yield a wrong id
	d := newTestDecoder(t, func(c *DecoderConfig) { c.VerifyChecksum = false })
	if ids := d.Feed(raw); len(ids) != 1 || ids[0] != "0000000001" {
		t.Fatalf("unverified variable layout: got %v", ids)
	}
}

func TestDecoderConfig_Ambiguous(t *testing.T) {
	cfg := DefaultDecoderConfig()
	if cfg.ambiguous() {
		t.Fatal("defaults must verify the checksum")
	}
	cfg.VerifyChecksum = false
	if !cfg.ambiguous() {
		t.Fatal("variable layout without verification is ambiguous")
	}
	cfg.PayloadLen = 8
	if cfg.ambiguous() {
		t.Fatal("fixed layout is not ambiguous")
	}
	cfg.PayloadLen = 0
	cfg.Framing = FramingLine
	if cfg.ambiguous() {
		t.Fatal("line framing has no end marker inside ids")
	}
}

func TestDecoder_FixedLayoutResyncsOnStrayStart(t *testing.T) {
	d := newTestDecoder(t, func(c *DecoderConfig) { c.PayloadLen = 4 })

	// stray STX followed by a real frame
	chunk := append([]byte{0x02, 0x11}, wellFormed...)
	ids := d.Feed(chunk)
	if len(ids) != 1 || ids[0] != "0305419896" {
		t.Fatalf("got %v", ids)
	}
}

func TestDecoder_VariableLayoutEndsAtFirstEndMarker(t *testing.T) {
	d := newTestDecoder(t, func(c *DecoderConfig) { c.IDFormat = IDHex })

	// 02 | 11 22 | 33 (checksum) | 03 | 44 03 → second part has no STX
	ids := d.Feed([]byte{0x02, 0x11, 0x22, 0x33, 0x03, 0x44, 0x03})
	if len(ids) != 1 || ids[0] != "1122" {
		t.Fatalf("got %v", ids)
	}
	if d.Pending() != 0 {
		t.Fatalf("bytes after the frame without STX must be discarded, pending=%d", d.Pending())
	}
}

func TestDecoder_OversizedPartialFrameDropped(t *testing.T) {
	d := newTestDecoder(t, nil)

	junk := make([]byte, maxPending+10)
	junk[0] = 0x02
	for i := 1; i < len(junk); i++ {
		junk[i] = 0x11
	}
	if ids := d.Feed(junk); len(ids) != 0 {
		t.Fatalf("got %v", ids)
	}
	if d.Pending() > maxPending {
		t.Fatalf("buffer grew past the limit: %d", d.Pending())
	}
	if ids := d.Feed(wellFormed); len(ids) != 1 {
		t.Fatalf("decoder did not resync: %v", ids)
	}
}

func TestDecoder_Reset(t *testing.T) {
	d := newTestDecoder(t, nil)

	d.Feed(wellFormed[:4])
	d.Reset()
	if d.Pending() != 0 {
		t.Fatal("Reset must discard the partial frame")
	}
	if ids := d.Feed(wellFormed[4:]); len(ids) != 0 {
		t.Fatalf("tail of a discarded frame decoded: %v", ids)
	}
}

func TestDecoder_LineFraming(t *testing.T) {
	d := newTestDecoder(t, func(c *DecoderConfig) { c.Framing = FramingLine })

	ids := feedAll(d, []byte("12345"), []byte("67\r\n\n  \nABC-1\n0012"))
	if len(ids) != 2 || ids[0] != "0001234567" || ids[1] != "ABC-1" {
		t.Fatalf("got %v", ids)
	}
	if d.Pending() != 4 {
		t.Fatalf("unterminated line must stay buffered, pending=%d", d.Pending())
	}
}

func TestDecoder_Normalize(t *testing.T) {
	dec := newTestDecoder(t, nil)
	hexDec := newTestDecoder(t, func(c *DecoderConfig) { c.IDFormat = IDHex })

	cases := []struct {
		d    *Decoder
		in   string
		want string
		ok   bool
	}{
		{dec, " 1234567\n", "0001234567", true},
		{dec, "12345678901", "12345678901", true},
		{dec, "\x02A1B2\x03", "A1B2", true},
		{dec, "   ", "", false},
		{hexDec, "00abcd", "00ABCD", true},
	}
	for _, tc := range cases {
		got, ok := tc.d.Normalize(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("Normalize(%q) = %q,%v want %q,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNewDecoder_RejectsBadConfig(t *testing.T) {
	cases := map[string]func(*DecoderConfig){
		"framing":  func(c *DecoderConfig) { c.Framing = "wiegand" },
		"format":   func(c *DecoderConfig) { c.IDFormat = "base64" },
		"markers":  func(c *DecoderConfig) { c.End = c.Start },
		"checksum": func(c *DecoderConfig) { c.VerifyChecksum = true; c.ChecksumLen = 2 },
		"id bytes": func(c *DecoderConfig) { c.PayloadLen = 4; c.IDBytes = 5 },
		"negative": func(c *DecoderConfig) { c.ChecksumLen = -1 },
	}
	for name, mutate := range cases {
		cfg := DefaultDecoderConfig()
		mutate(&cfg)
		if _, err := NewDecoder(cfg, zerolog.Nop()); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
