package bitbuffer

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Row is one demodulated transmission: an ordered sequence of bits in the
// order they were received.
type Row struct {
	bits []byte
}

// NewRow builds a row from individual bit values. Any non-zero value is a 1.
func NewRow(bits ...int) Row {
	r := Row{bits: make([]byte, len(bits))}
	for i, b := range bits {
		if b != 0 {
			r.bits[i] = 1
		}
	}
	return r
}

// Len returns the number of bits in the row.
func (r Row) Len() int { return len(r.bits) }

// Bit returns the bit at position i, counting from the first received bit.
func (r Row) Bit(i int) int { return int(r.bits[i]) }

// Bytes packs the row MSB-first. The final byte is zero padded.
func (r Row) Bytes() []byte {
	out := make([]byte, (len(r.bits)+7)/8)
	for i, b := range r.bits {
		if b != 0 {
			out[i/8] |= 0x80 >> (i % 8)
		}
	}
	return out
}

// Binary renders the row as a string of 0 and 1 digits.
func (r Row) Binary() string {
	var b strings.Builder
	b.Grow(len(r.bits))
	for _, bit := range r.bits {
		b.WriteByte('0' + bit)
	}
	return b.String()
}

// String renders the row in {N}hex notation.
func (r Row) String() string {
	return fmt.Sprintf("{%d}%s", len(r.bits), hex.EncodeToString(r.Bytes()))
}

// Buffer holds the rows recovered from one capture.
type Buffer struct {
	Rows []Row
}

// NumRows returns the number of rows. A nil buffer has none.
func (b *Buffer) NumRows() int {
	if b == nil {
		return 0
	}
	return len(b.Rows)
}

// BitsPerRow returns the bit count of every row.
func (b *Buffer) BitsPerRow() []int {
	if b == nil {
		return nil
	}
	out := make([]int, len(b.Rows))
	for i, r := range b.Rows {
		out[i] = r.Len()
	}
	return out
}

// String renders the buffer in the same notation Parse accepts.
func (b *Buffer) String() string {
	if b == nil {
		return ""
	}
	parts := make([]string, len(b.Rows))
	for i, r := range b.Rows {
		parts[i] = r.String()
	}
	return strings.Join(parts, "/")
}

// Parse reads a buffer from text. Rows are separated by '/'. Each row is
// either {N}hex, taking the first N bits of the hex digits, or a run of
// binary digits. Whitespace, '_' and '|' are ignored.
func Parse(input string) (*Buffer, error) {
	clean := stripSeparators(input)
	buf := &Buffer{}
	if clean == "" {
		return buf, nil
	}
	for i, part := range strings.Split(clean, "/") {
		row, err := parseRow(part)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		buf.Rows = append(buf.Rows, row)
	}
	return buf, nil
}

func parseRow(s string) (Row, error) {
	if s == "" {
		return Row{}, fmt.Errorf("empty row")
	}
	if s[0] == '{' {
		return parseHexRow(s)
	}
	bits := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
		case '1':
			bits[i] = 1
		default:
			return Row{}, fmt.Errorf("invalid binary digit %q at offset %d", s[i], i)
		}
	}
	return Row{bits: bits}, nil
}

func parseHexRow(s string) (Row, error) {
	end := strings.IndexByte(s, '}')
	if end < 0 {
		return Row{}, fmt.Errorf("missing closing brace in %q", s)
	}
	n, err := strconv.Atoi(s[1:end])
	if err != nil || n < 0 {
		return Row{}, fmt.Errorf("invalid bit count %q", s[1:end])
	}
	digits := s[end+1:]
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		digits = digits[2:]
	}
	if len(digits)*4 < n {
		return Row{}, fmt.Errorf("bit count %d exceeds the %d bits supplied", n, len(digits)*4)
	}
	if len(digits)%2 != 0 {
		digits += "0"
	}
	raw, err := hex.DecodeString(digits)
	if err != nil {
		return Row{}, fmt.Errorf("decode hex: %w", err)
	}
	bits := make([]byte, n)
	for i := range bits {
		bits[i] = (raw[i/8] >> (7 - i%8)) & 0x01
	}
	return Row{bits: bits}, nil
}

func stripSeparators(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || r == '|' || r == '_' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
