package i2c

import (
	"context"
	"errors"
	"fmt"
	"sync"

	gobot "gobot.io/x/gobot/v2/drivers/i2c"

	"github.com/mklimuk/ltc2473"
)

var _ ltc2473.I2CBus = &GobotBus{}

// GobotBus runs transactions through a gobot adaptor (NanoPi, Raspberry Pi
// and other boards exposing an i2c.Connector). One connection is opened per
// device address and kept until Close.
//
// A probe (WriteToAddr with no data) goes out as a one byte read since gobot
// connections have no zero length write.
type GobotBus struct {
	mx        sync.Mutex
	connector gobot.Connector
	busNr     int
	conns     map[byte]gobot.Connection
}

// NewGobotBus uses the given bus number, or the adaptor's default bus when
// busNr is negative.
func NewGobotBus(connector gobot.Connector, busNr int) *GobotBus {
	if busNr < 0 {
		busNr = connector.DefaultI2cBus()
	}
	return &GobotBus{
		connector: connector,
		busNr:     busNr,
		conns:     make(map[byte]gobot.Connection),
	}
}

func (b *GobotBus) connection(address byte) (gobot.Connection, error) {
	if conn, ok := b.conns[address]; ok {
		return conn, nil
	}
	conn, err := b.connector.GetI2cConnection(int(address), b.busNr)
	if err != nil {
		return nil, fmt.Errorf("could not get connection to %x on bus %d: %w", address, b.busNr, err)
	}
	b.conns[address] = conn
	return conn, nil
}

// ReadFromAddr reads up to len(buffer) bytes. stop is ignored.
func (b *GobotBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte, stop bool) (int, error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	conn, err := b.connection(address)
	if err != nil {
		return 0, ltc2473.NewBusError(ltc2473.StatusOther, address, err)
	}
	n, err := conn.Read(buffer)
	if err != nil {
		return n, busError(address, fmt.Errorf("could not read from i2c bus %x: %w", address, err))
	}
	return n, nil
}

// WriteToAddr writes buffer to the device. An empty buffer probes the
// address with a single byte read.
func (b *GobotBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	conn, err := b.connection(address)
	if err != nil {
		return ltc2473.NewBusError(ltc2473.StatusOther, address, err)
	}
	if len(buffer) == 0 {
		_, err = conn.ReadByte()
	} else {
		err = conn.WriteBytes(buffer)
	}
	if err != nil {
		return busError(address, fmt.Errorf("could not write to i2c bus %x: %w", address, err))
	}
	return nil
}

func (b *GobotBus) Release(ctx context.Context) error {
	return nil
}

func (b *GobotBus) Close() error {
	b.mx.Lock()
	defer b.mx.Unlock()
	var errs []error
	for address, conn := range b.conns {
		if err := conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("could not close connection to %x: %w", address, err))
		}
		delete(b.conns, address)
	}
	return errors.Join(errs...)
}
