package rfdecode

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/d21d3q/gorfdecode/internal/bitbuffer"
	"github.com/d21d3q/gorfdecode/internal/decoder"
	"github.com/d21d3q/gorfdecode/internal/decoder/mightymule"
)

// UnknownDecoder is reported when no decoder accepts the input.
const UnknownDecoder = "unknown"

// Rejection explains why one decoder did not accept the input.
type Rejection struct {
	Decoder string `json:"decoder"`
	Reason  string `json:"reason"`
}

// Result captures the outcome of Analyze.
type Result struct {
	Decoder    string
	Input      string
	RowCount   int
	BitsPerRow []int
	Record     decoder.Record
	Fields     map[string]any
	Rejections []Rejection
}

// String renders a human-readable representation of the result.
func (r Result) String() string {
	summary := map[string]any{
		"decoder":      r.Decoder,
		"input":        r.Input,
		"rows":         r.RowCount,
		"bits_per_row": r.BitsPerRow,
	}
	if len(r.Fields) > 0 {
		summary["fields"] = r.Fields
	}
	if r.Decoder == UnknownDecoder && len(r.Rejections) > 0 {
		summary["rejections"] = r.Rejections
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Sprintf("decoder: %s input:%s (marshal error: %v)", r.Decoder, r.Input, err)
	}
	return string(data)
}

// Matched reports whether a decoder produced a record.
func (r Result) Matched() bool { return r.Decoder != UnknownDecoder && r.Record != nil }

// DefaultRegistry returns a new registry holding every built-in decoder.
func DefaultRegistry() *decoder.Registry {
	return decoder.NewRegistry(
		mightymule.Decoder{},
	)
}

// Analyze parses the bit rows in raw and decodes them.
func Analyze(ctx context.Context, raw string) (Result, error) {
	return AnalyzeWithOptions(ctx, raw, AnalyzeOptions{})
}

// AnalyzeWithOptions parses and decodes raw with custom options.
func AnalyzeWithOptions(ctx context.Context, raw string, opts AnalyzeOptions) (Result, error) {
	ctx, reg, err := opts.toInternal(ctx)
	if err != nil {
		return Result{}, err
	}
	return analyze(ctx, reg, raw, opts)
}

func analyze(ctx context.Context, reg *decoder.Registry, raw string, opts AnalyzeOptions) (Result, error) {
	buf, err := bitbuffer.Parse(raw)
	if err != nil {
		return Result{}, fmt.Errorf("parse bit rows: %w", err)
	}
	result := Result{
		Decoder:    UnknownDecoder,
		Input:      buf.String(),
		RowCount:   buf.NumRows(),
		BitsPerRow: buf.BitsPerRow(),
	}

	drv, rec, rejections, err := reg.Decode(ctx, buf)
	for _, rj := range rejections {
		result.Rejections = append(result.Rejections, Rejection{Decoder: rj.Decoder, Reason: rj.Err.Error()})
	}
	if err != nil {
		return result, err
	}
	if drv == nil {
		return result, nil
	}
	name := drv.Descriptor().Name
	if opts.ShowSwitches && name == mightymule.Name {
		rec = appendSwitches(rec)
	}
	result.Decoder = name
	result.Record = rec
	result.Fields = rec.Map()
	return result, nil
}

func appendSwitches(rec decoder.Record) decoder.Record {
	v, ok := rec.Get("id")
	if !ok {
		return rec
	}
	id, ok := v.(int)
	if !ok {
		return rec
	}
	sw := mightymule.SwitchPositions(id)
	parts := make([]string, len(sw))
	for i, on := range sw {
		state := "off"
		if on {
			state = "on"
		}
		parts[i] = fmt.Sprintf("%d=%s", i+1, state)
	}
	out := make(decoder.Record, 0, len(rec)+1)
	out = append(out, rec...)
	return append(out, decoder.Field{Key: "switches", Label: "Switches", Value: strings.Join(parts, ",")})
}
