package bitbuffer

import (
	"errors"
	"testing"
)

func TestParseBinary(t *testing.T) {
	buf, err := Parse("1101 0 1011")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if buf.NumRows() != 1 {
		t.Fatalf("rows: got %d", buf.NumRows())
	}
	row := buf.Rows[0]
	if row.Len() != 9 {
		t.Fatalf("len: got %d", row.Len())
	}
	if got := row.Binary(); got != "110101011" {
		t.Fatalf("binary mismatch: %s", got)
	}
	if got := row.String(); got != "{9}d580" {
		t.Fatalf("hex form mismatch: %s", got)
	}
}

func TestParseHexRows(t *testing.T) {
	buf, err := Parse("{9}d58/{8}ff")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if buf.NumRows() != 2 {
		t.Fatalf("rows: got %d", buf.NumRows())
	}
	if got := buf.Rows[0].Binary(); got != "110101011" {
		t.Fatalf("row 0 mismatch: %s", got)
	}
	if got := buf.Rows[1].Binary(); got != "11111111" {
		t.Fatalf("row 1 mismatch: %s", got)
	}
	bits := buf.BitsPerRow()
	if len(bits) != 2 || bits[0] != 9 || bits[1] != 8 {
		t.Fatalf("bits per row mismatch: %v", bits)
	}
	if got := buf.String(); got != "{9}d580/{8}ff" {
		t.Fatalf("string mismatch: %s", got)
	}
}

func TestParseEmpty(t *testing.T) {
	buf, err := Parse("  ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if buf.NumRows() != 0 {
		t.Fatalf("expected no rows, got %d", buf.NumRows())
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"10201", "{9d58", "{x}d5", "{16}d5", "{8}zz", "101//1"} {
		if _, err := Parse(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestNilBuffer(t *testing.T) {
	var buf *Buffer
	if buf.NumRows() != 0 {
		t.Fatalf("nil buffer reports rows")
	}
	if buf.BitsPerRow() != nil {
		t.Fatalf("nil buffer reports bits")
	}
}

func TestReader(t *testing.T) {
	r := NewReader(NewRow(1, 1, 0, 1, 0, 1, 0, 1, 1))
	if err := r.Skip(4); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	bit, err := r.ReadBit()
	if err != nil || bit != 0 {
		t.Fatalf("ReadBit: %d %v", bit, err)
	}
	v, err := r.ReadBits(4)
	if err != nil {
		t.Fatalf("ReadBits: %v", err)
	}
	if v != 0x0B {
		t.Fatalf("nibble mismatch: %x", v)
	}
	if r.Remaining() != 0 {
		t.Fatalf("remaining: %d", r.Remaining())
	}
	if _, err := r.ReadBit(); !errors.Is(err, ErrShortRead) {
		t.Fatalf("expected ErrShortRead, got %v", err)
	}
}

func TestReaderMSBFirst(t *testing.T) {
	r := NewReader(NewRow(1, 0, 0, 0, 0, 0, 0, 0, 0))
	v, err := r.ReadBits(9)
	if err != nil {
		t.Fatalf("ReadBits: %v", err)
	}
	if v != 0x100 {
		t.Fatalf("expected first bit as MSB, got 0x%03x", v)
	}
	if _, err := NewReader(NewRow(1)).ReadBits(2); !errors.Is(err, ErrShortRead) {
		t.Fatalf("expected ErrShortRead, got %v", err)
	}
}
