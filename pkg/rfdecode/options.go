package rfdecode

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/d21d3q/gorfdecode/internal/decoder"
	internalopts "github.com/d21d3q/gorfdecode/internal/options"
)

// AnalyzeOptions configures decoding.
type AnalyzeOptions struct {
	// Protocols restricts dispatch to the named decoders. Empty means all.
	Protocols []string
	// ShowSwitches adds the physical DIP switch positions to devices that
	// encode an id in switches.
	ShowSwitches bool
	// Tracer receives per-decode diagnostic entries at debug level.
	Tracer logrus.FieldLogger
}

// toInternal treats a nil ctx as context.Background.
func (opts AnalyzeOptions) toInternal(ctx context.Context) (context.Context, *decoder.Registry, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	reg, err := DefaultRegistry().Filter(opts.Protocols)
	if err != nil {
		return ctx, nil, err
	}
	ctx = internalopts.WithTracer(ctx, opts.Tracer)
	return ctx, reg, nil
}
