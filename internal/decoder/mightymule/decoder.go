// Package mightymule decodes the Mighty Mule FM231 driveway alarm from GTO Inc.
//
// FCC ID I6HGTOFM231. The transmitter sends a 9-bit OOK PWM burst:
//
//	???? B IIII
//
//	?: 4 bits unknown/preamble
//	B: battery status, 0 = OK, 1 = low
//	I: 4-bit device ID from the DIP switches
//
// The DIP switches are labeled 1-4 left to right on the device but appear in
// the data stream in reverse order (4-3-2-1). The reported id is the nibble
// as transmitted; SwitchPositions maps it back to the physical switches.
package mightymule

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/d21d3q/gorfdecode/internal/bitbuffer"
	"github.com/d21d3q/gorfdecode/internal/decoder"
	"github.com/d21d3q/gorfdecode/internal/options"
)

const (
	// Name is the registry key.
	Name = "mightymule_fm231"
	// Model is reported on every decoded message.
	Model = "MightyMule-FM231"

	bitLength = 9
	idBits    = 4
)

var descriptor = decoder.Descriptor{
	Name:        Name,
	Description: "Mighty Mule FM231 Driveway Alarm",
	Model:       Model,
	Modulation:  decoder.OOKPulsePWM,
	Timing: decoder.Timing{
		Short:     650,
		Long:      1200,
		Sync:      3800,
		Gap:       1100,
		Reset:     1100,
		Tolerance: 200,
	},
	Rows:   1,
	Bits:   bitLength,
	Fields: []string{"model", "id", "battery_ok"},
}

// Message is one decoded transmission.
type Message struct {
	Model     string
	ID        int
	BatteryOK int
}

// Record returns the message as an ordered output record.
func (m Message) Record() decoder.Record {
	return decoder.Record{
		{Key: "model", Label: "", Value: m.Model},
		{Key: "id", Label: "ID", Value: m.ID},
		{Key: "battery_ok", Label: "Battery", Value: m.BatteryOK},
	}
}

// Decode extracts a message from buf. It fails with decoder.ErrWrongRowCount
// unless buf has exactly one row, and with decoder.ErrWrongLength unless that
// row is 9 bits long.
func Decode(buf *bitbuffer.Buffer) (Message, error) {
	m, _, _, err := decode(buf)
	return m, err
}

func decode(buf *bitbuffer.Buffer) (msg Message, data uint64, batteryRaw int, err error) {
	if err = descriptor.CheckShape(buf); err != nil {
		return Message{}, 0, 0, err
	}
	data, err = bitbuffer.NewReader(buf.Rows[0]).ReadBits(bitLength)
	if err != nil {
		return Message{}, 0, 0, fmt.Errorf("mightymule: %w", err)
	}
	batteryRaw = int(data>>idBits) & 0x01
	msg = Message{
		Model:     Model,
		ID:        int(data & 0x0F),
		BatteryOK: 1 - batteryRaw,
	}
	return msg, data, batteryRaw, nil
}

// SwitchPositions returns the on/off state of DIP switches 1-4 as labeled on
// the device, left to right. The last transmitted bit is switch 1.
func SwitchPositions(id int) [4]bool {
	var sw [4]bool
	for i := range sw {
		sw[i] = id&(1<<i) != 0
	}
	return sw
}

// Decoder adapts Decode to the decoder.Decoder interface.
type Decoder struct{}

var _ decoder.Decoder = Decoder{}

// Descriptor returns the device descriptor.
func (Decoder) Descriptor() decoder.Descriptor {
	d := descriptor
	d.Fields = append([]string(nil), descriptor.Fields...)
	return d
}

// Decode implements decoder.Decoder. A tracer in ctx receives one debug entry
// per successful decode.
func (Decoder) Decode(ctx context.Context, buf *bitbuffer.Buffer) (decoder.Record, error) {
	msg, data, batteryRaw, err := decode(buf)
	if err != nil {
		return nil, err
	}
	if log := options.Tracer(ctx); log != nil {
		log.WithFields(logrus.Fields{
			"decoder":     descriptor.Name,
			"data":        fmt.Sprintf("%03x", data),
			"battery_raw": batteryRaw,
			"battery_ok":  msg.BatteryOK,
			"id":          msg.ID,
		}).Debug("decoded message")
	}
	return msg.Record(), nil
}
