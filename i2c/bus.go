package i2c

import (
	"context"
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/mklimuk/ltc2473"
)

var _ ltc2473.I2CBus = &GenericBus{}

// GenericBus is an I2C bus opened through periph, typically a Linux i2c-dev
// device. Every transaction ends with a stop condition.
//
// A probe (WriteToAddr with no data) goes out as a one byte read, address
// with the R bit set, not as an empty write: periph returns without touching
// the bus when a transaction has neither a write nor a read part.
type GenericBus struct {
	bus i2c.BusCloser
}

func NewGenericBus(dev string) (*GenericBus, error) {
	state, err := host.Init()
	if err != nil {
		return nil, fmt.Errorf("could not init host: %w", err)
	}
	for _, driver := range state.Loaded {
		slog.Debug("host driver loaded", "driver", driver.String())
	}
	bus, err := i2creg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("could not open i2c bus: %w", err)
	}
	return NewBus(bus), nil
}

// NewBus wraps an already opened periph bus.
func NewBus(bus i2c.BusCloser) *GenericBus {
	return &GenericBus{
		bus: bus,
	}
}

// ReadFromAddr reads len(buffer) bytes. i2c-dev reports a transfer as a
// whole, so the count is either len(buffer) or 0 with an error. stop is
// ignored.
func (b *GenericBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte, stop bool) (int, error) {
	err := b.bus.Tx(uint16(address), nil, buffer)
	if err != nil {
		return 0, busError(address, fmt.Errorf("could not read from i2c bus %x: %w", address, err))
	}
	return len(buffer), nil
}

// WriteToAddr writes buffer to the device. An empty buffer probes the
// address with a single byte read since i2c-dev rejects a transaction without
// messages.
func (b *GenericBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	var err error
	if len(buffer) == 0 {
		var probe [1]byte
		err = b.bus.Tx(uint16(address), nil, probe[:])
	} else {
		err = b.bus.Tx(uint16(address), buffer, nil)
	}
	if err != nil {
		return busError(address, fmt.Errorf("could not write to i2c bus %x: %w", address, err))
	}
	return nil
}

func (b *GenericBus) Release(ctx context.Context) error {
	return nil
}

func (b *GenericBus) SetSpeed(f physic.Frequency) error {
	return b.bus.SetSpeed(f)
}

func (b *GenericBus) Close() error {
	return b.bus.Close()
}

func busError(address byte, err error) *ltc2473.BusError {
	return ltc2473.NewBusError(statusFromErr(err), address, err)
}
