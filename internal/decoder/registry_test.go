package decoder_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/d21d3q/gorfdecode/internal/bitbuffer"
	"github.com/d21d3q/gorfdecode/internal/decoder"
	"github.com/d21d3q/gorfdecode/internal/decoder/mightymule"
)

// lengthDecoder accepts any single row of a fixed length.
type lengthDecoder struct {
	name string
	bits int
	fail error
}

func (d lengthDecoder) Descriptor() decoder.Descriptor {
	return decoder.Descriptor{Name: d.name, Modulation: decoder.OOKPulsePPM, Rows: 1, Bits: d.bits}
}

func (d lengthDecoder) Decode(_ context.Context, buf *bitbuffer.Buffer) (decoder.Record, error) {
	if err := d.Descriptor().CheckShape(buf); err != nil {
		return nil, err
	}
	if d.fail != nil {
		return nil, d.fail
	}
	return decoder.Record{{Key: "model", Value: d.name}}, nil
}

func parse(t *testing.T, s string) *bitbuffer.Buffer {
	t.Helper()
	buf, err := bitbuffer.Parse(s)
	require.NoError(t, err)
	return buf
}

func TestRegistryDispatch(t *testing.T) {
	reg := decoder.NewRegistry(lengthDecoder{name: "eight", bits: 8}, mightymule.Decoder{})
	ctx := context.Background()

	d, rec, rejections, err := reg.Decode(ctx, parse(t, "110101011"))
	require.NoError(t, err)
	require.Equal(t, "mightymule_fm231", d.Descriptor().Name)
	require.Len(t, rejections, 1)
	require.Equal(t, "eight", rejections[0].Decoder)
	require.ErrorIs(t, rejections[0].Err, decoder.ErrWrongLength)
	v, ok := rec.Get("id")
	require.True(t, ok)
	require.Equal(t, 11, v)

	d, rec, rejections, err = reg.Decode(ctx, parse(t, "1/1"))
	require.NoError(t, err)
	require.Nil(t, d)
	require.Nil(t, rec)
	require.Len(t, rejections, 2)
	for _, r := range rejections {
		require.ErrorIs(t, r.Err, decoder.ErrWrongRowCount)
	}
}

func TestRegistryHardError(t *testing.T) {
	boom := errors.New("boom")
	reg := decoder.NewRegistry(lengthDecoder{name: "broken", bits: 9, fail: boom}, mightymule.Decoder{})
	d, _, _, err := reg.Decode(context.Background(), parse(t, "110101011"))
	require.ErrorIs(t, err, boom)
	require.Equal(t, "broken", d.Descriptor().Name)
}

func TestRegistryCancelled(t *testing.T) {
	reg := decoder.NewRegistry(mightymule.Decoder{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, _, err := reg.Decode(ctx, parse(t, "110101011"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestRegistryLookupAndFilter(t *testing.T) {
	reg := decoder.NewRegistry(lengthDecoder{name: "eight", bits: 8}, mightymule.Decoder{})

	_, err := reg.Lookup("mightymule_fm231")
	require.NoError(t, err)
	_, err = reg.Lookup("missing")
	require.Error(t, err)

	require.Error(t, reg.Register(mightymule.Decoder{}))

	only, err := reg.Filter([]string{"mightymule_fm231"})
	require.NoError(t, err)
	require.Len(t, only.Decoders(), 1)

	all, err := reg.Filter(nil)
	require.NoError(t, err)
	require.Len(t, all.Decoders(), 2)

	_, err = reg.Filter([]string{"missing"})
	require.Error(t, err)

	pwm := reg.ByModulation(decoder.OOKPulsePWM)
	require.Len(t, pwm, 1)
	require.Equal(t, "mightymule_fm231", pwm[0].Descriptor().Name)
}

func TestNewRegistryDuplicatePanics(t *testing.T) {
	require.Panics(t, func() {
		decoder.NewRegistry(mightymule.Decoder{}, mightymule.Decoder{})
	})
}

func TestShapeErrorMessage(t *testing.T) {
	err := &decoder.ShapeError{Kind: decoder.ErrWrongLength, Want: 9, Got: 8}
	require.Equal(t, "wrong bit length: want 9, got 8", err.Error())
	require.True(t, decoder.IsNoMatch(err))
	require.False(t, decoder.IsNoMatch(errors.New("other")))
	require.Equal(t, "OOK_PULSE_PWM", decoder.OOKPulsePWM.String())
}
