package decoder

import (
	"context"
	"fmt"
	"sync"

	"github.com/d21d3q/gorfdecode/internal/bitbuffer"
)

// Rejection records why a decoder refused a buffer.
type Rejection struct {
	Decoder string
	Err     error
}

// Registry dispatches buffers to decoders in registration order. The zero
// value is empty and ready to use.
type Registry struct {
	mu       sync.RWMutex
	decoders []Decoder
}

// NewRegistry returns a registry holding decs. It panics on duplicate names,
// which can only come from a programming error.
func NewRegistry(decs ...Decoder) *Registry {
	r := &Registry{}
	for _, d := range decs {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}

// Register appends a decoder.
func (r *Registry) Register(d Decoder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := d.Descriptor().Name
	for _, existing := range r.decoders {
		if existing.Descriptor().Name == name {
			return fmt.Errorf("decoder %q already registered", name)
		}
	}
	r.decoders = append(r.decoders, d)
	return nil
}

// Decoders returns a snapshot of the registered decoders.
func (r *Registry) Decoders() []Decoder {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Decoder, len(r.decoders))
	copy(out, r.decoders)
	return out
}

// Lookup returns the decoder registered under name.
func (r *Registry) Lookup(name string) (Decoder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.decoders {
		if d.Descriptor().Name == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("decoder not found: %q", name)
}

// Filter returns a new registry restricted to names. An empty list keeps
// every decoder.
func (r *Registry) Filter(names []string) (*Registry, error) {
	if len(names) == 0 {
		return NewRegistry(r.Decoders()...), nil
	}
	out := &Registry{}
	for _, name := range names {
		d, err := r.Lookup(name)
		if err != nil {
			return nil, err
		}
		if err := out.Register(d); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ByModulation returns the decoders expecting modulation m.
func (r *Registry) ByModulation(m Modulation) []Decoder {
	var out []Decoder
	for _, d := range r.Decoders() {
		if d.Descriptor().Modulation == m {
			out = append(out, d)
		}
	}
	return out
}

// Decode offers buf to every decoder until one accepts it. When none does,
// the returned decoder is nil and the rejections explain why.
func (r *Registry) Decode(ctx context.Context, buf *bitbuffer.Buffer) (Decoder, Record, []Rejection, error) {
	var rejections []Rejection
	for _, d := range r.Decoders() {
		if err := ctx.Err(); err != nil {
			return nil, nil, rejections, err
		}
		rec, err := d.Decode(ctx, buf)
		if err != nil {
			if IsNoMatch(err) {
				rejections = append(rejections, Rejection{Decoder: d.Descriptor().Name, Err: err})
				continue
			}
			return d, nil, rejections, err
		}
		return d, rec, rejections, nil
	}
	return nil, nil, rejections, nil
}
