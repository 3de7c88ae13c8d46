package snapshot

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRoundTrip(t *testing.T) {
	w := NewWriter()
	w.U8(0xAB)
	w.U16(0xBEEF)
	w.U32(0xDEADBEEF)
	w.U64(0x0123456789ABCDEF)
	w.I32(-12345)
	w.F32(0.25)
	w.Bool(true)
	w.Bool(false)
	w.Raw([]byte{1, 2, 3})

	r := NewReader(w.Bytes())

	got := []any{
		r.U8(), r.U16(), r.U32(), r.U64(), r.I32(), r.F32(), r.Bool(), r.Bool(),
	}
	want := []any{
		uint8(0xAB), uint16(0xBEEF), uint32(0xDEADBEEF),
		uint64(0x0123456789ABCDEF), int32(-12345), float32(0.25), true, false,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	raw := make([]byte, 3)
	r.Raw(raw)
	if diff := cmp.Diff([]byte{1, 2, 3}, raw); diff != "" {
		t.Errorf("raw mismatch (-want +got):\n%s", diff)
	}

	if err := r.Err(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if r.Remaining() != 0 {
		t.Errorf("got %d bytes remaining, want 0", r.Remaining())
	}
}

func TestReaderStickyError(t *testing.T) {
	w := NewWriter()
	w.U16(0x1234)

	r := NewReader(w.Bytes())
	if got := r.U16(); got != 0x1234 {
		t.Fatalf("U16() = %04x, want 1234", got)
	}

	// The buffer is exhausted: this read fails and the error sticks.
	if got := r.U32(); got != 0 {
		t.Errorf("U32() on short buffer = %08x, want 0", got)
	}
	if r.Err() == nil {
		t.Fatal("expected an error after reading past the end")
	}

	// Later reads keep returning zero values without panicking.
	if got := r.U8(); got != 0 {
		t.Errorf("U8() after error = %02x, want 0", got)
	}
}

func TestLittleEndianLayout(t *testing.T) {
	w := NewWriter()
	w.U16(0x1122)
	w.U32(0x33445566)

	want := []byte{0x22, 0x11, 0x66, 0x55, 0x44, 0x33}
	if diff := cmp.Diff(want, w.Bytes()); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
}
