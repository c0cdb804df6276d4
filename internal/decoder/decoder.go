package decoder

import (
	"context"
	"errors"
	"fmt"

	"github.com/d21d3q/gorfdecode/internal/bitbuffer"
)

// Shape mismatches. Both mean "not a message of this protocol" and are
// expected for most buffers a decoder is offered.
var (
	ErrWrongRowCount = errors.New("wrong row count")
	ErrWrongLength   = errors.New("wrong bit length")
)

// ShapeError reports which shape constraint a buffer failed.
type ShapeError struct {
	Kind error
	Want int
	Got  int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%v: want %d, got %d", e.Kind, e.Want, e.Got)
}

func (e *ShapeError) Unwrap() error { return e.Kind }

// IsNoMatch reports whether err is a benign shape mismatch.
func IsNoMatch(err error) bool {
	return errors.Is(err, ErrWrongRowCount) || errors.Is(err, ErrWrongLength)
}

// Modulation names the line coding the demodulator must apply before a
// decoder can see the bits.
type Modulation int

const (
	OOKPulsePCM Modulation = iota + 1
	OOKPulsePPM
	OOKPulsePWM
	OOKPulseManchesterZeroBit
	FSKPulsePCM
	FSKPulsePWM
)

func (m Modulation) String() string {
	switch m {
	case OOKPulsePCM:
		return "OOK_PULSE_PCM"
	case OOKPulsePPM:
		return "OOK_PULSE_PPM"
	case OOKPulsePWM:
		return "OOK_PULSE_PWM"
	case OOKPulseManchesterZeroBit:
		return "OOK_PULSE_MANCHESTER_ZEROBIT"
	case FSKPulsePCM:
		return "FSK_PULSE_PCM"
	case FSKPulsePWM:
		return "FSK_PULSE_PWM"
	default:
		return fmt.Sprintf("Modulation(%d)", int(m))
	}
}

// Timing holds pulse widths and limits in microseconds.
type Timing struct {
	Short     int `json:"short_width"`
	Long      int `json:"long_width"`
	Sync      int `json:"sync_width,omitempty"`
	Gap       int `json:"gap_limit,omitempty"`
	Reset     int `json:"reset_limit"`
	Tolerance int `json:"tolerance,omitempty"`
}

// Descriptor is what a decoder exposes to whoever dispatches buffers to it.
type Descriptor struct {
	// Name is the short key used for lookup and protocol filters.
	Name        string
	Description string
	Model       string
	Modulation  Modulation
	Timing      Timing
	Rows        int
	Bits        int
	Fields      []string
}

// CheckShape validates row count and row length against the descriptor.
func (d Descriptor) CheckShape(buf *bitbuffer.Buffer) error {
	if n := buf.NumRows(); n != d.Rows {
		return &ShapeError{Kind: ErrWrongRowCount, Want: d.Rows, Got: n}
	}
	for _, bits := range buf.BitsPerRow() {
		if bits != d.Bits {
			return &ShapeError{Kind: ErrWrongLength, Want: d.Bits, Got: bits}
		}
	}
	return nil
}

// Field is one labeled value of a decoded record.
type Field struct {
	Key   string
	Label string
	Value any
}

// Record is an ordered set of fields.
type Record []Field

// Get returns the value stored under key.
func (r Record) Get(key string) (any, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Keys returns the field keys in order.
func (r Record) Keys() []string {
	keys := make([]string, len(r))
	for i, f := range r {
		keys[i] = f.Key
	}
	return keys
}

// Map copies the record into an unordered map.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r))
	for _, f := range r {
		m[f.Key] = f.Value
	}
	return m
}

// Decoder turns a bit buffer into a record.
type Decoder interface {
	Descriptor() Descriptor
	Decode(context.Context, *bitbuffer.Buffer) (Record, error)
}
