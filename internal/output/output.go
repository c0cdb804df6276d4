package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/d21d3q/gorfdecode/internal/decoder"
)

// Format selects how records are written.
type Format string

const (
	FormatJSON Format = "json"
	FormatKV   Format = "kv"
	FormatCBOR Format = "cbor"
)

// ParseFormat validates a format name. An empty name means JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatKV, FormatCBOR:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want json, kv or cbor)", s)
	}
}

// encMode uses Core Deterministic Encoding so the same record always
// produces the same bytes.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("output: CBOR encoder initialization failed: " + err.Error())
	}
}

// Encoder writes records to an underlying writer in one format.
type Encoder struct {
	w      io.Writer
	format Format
}

// NewEncoder returns an encoder writing to w.
func NewEncoder(w io.Writer, format Format) *Encoder {
	return &Encoder{w: w, format: format}
}

// Encode writes one record.
func (e *Encoder) Encode(rec decoder.Record) error {
	var (
		data []byte
		err  error
	)
	switch e.format {
	case FormatJSON, "":
		data, err = MarshalJSON(rec)
		data = append(data, '\n')
	case FormatKV:
		data = MarshalKV(rec)
	case FormatCBOR:
		data, err = MarshalCBOR(rec)
	default:
		return fmt.Errorf("unknown output format %q", e.format)
	}
	if err != nil {
		return err
	}
	_, err = e.w.Write(data)
	return err
}

// MarshalJSON renders the record as a JSON object with keys in record order.
func MarshalJSON(rec decoder.Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range rec {
		if i > 0 {
			buf.WriteString(", ")
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("encode field %q: %w", f.Key, err)
		}
		buf.Write(key)
		buf.WriteString(" : ")
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalKV renders one "label : value" line per field followed by a blank
// line. Fields without a label use their key.
func MarshalKV(rec decoder.Record) []byte {
	width := 0
	for _, f := range rec {
		if n := len(kvLabel(f)); n > width {
			width = n
		}
	}
	var buf bytes.Buffer
	for _, f := range rec {
		fmt.Fprintf(&buf, "%-*s: %v\n", width+1, kvLabel(f), f.Value)
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}

func kvLabel(f decoder.Field) string {
	if f.Label != "" {
		return f.Label
	}
	return f.Key
}

// MarshalCBOR encodes the record as a CBOR map.
func MarshalCBOR(rec decoder.Record) ([]byte, error) {
	return encMode.Marshal(rec.Map())
}
