package i2c

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gobot "gobot.io/x/gobot/v2/drivers/i2c"

	"github.com/mklimuk/ltc2473"
)

type fakeConnection struct {
	gobot.Connection
	address int
	data    []byte
	writes  [][]byte
	err     error
	closed  bool
}

func (c *fakeConnection) Read(b []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	return copy(b, c.data), nil
}

func (c *fakeConnection) ReadByte() (byte, error) {
	if c.err != nil {
		return 0, c.err
	}
	return 0x80, nil
}

func (c *fakeConnection) WriteBytes(b []byte) error {
	if c.err != nil {
		return c.err
	}
	c.writes = append(c.writes, append([]byte(nil), b...))
	return nil
}

func (c *fakeConnection) Close() error {
	c.closed = true
	return nil
}

type fakeConnector struct {
	conns  map[int]*fakeConnection
	busNrs []int
}

func (a *fakeConnector) GetI2cConnection(address int, busNr int) (gobot.Connection, error) {
	a.busNrs = append(a.busNrs, busNr)
	conn, ok := a.conns[address]
	if !ok {
		return nil, errors.New("no such device")
	}
	return conn, nil
}

func (a *fakeConnector) DefaultI2cBus() int {
	return 1
}

func TestGobotBus_Transactions(t *testing.T) {
	conn := &fakeConnection{address: 0x14, data: []byte{0x80, 0x01}}
	connector := &fakeConnector{conns: map[int]*fakeConnection{0x14: conn}}
	bus := NewGobotBus(connector, -1)
	ctx := context.Background()

	require.NoError(t, bus.WriteToAddr(ctx, 0x14, nil))
	require.NoError(t, bus.WriteToAddr(ctx, 0x14, []byte{0x90}))
	buf := make([]byte, 2)
	n, err := bus.ReadFromAddr(ctx, 0x14, buf, true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0x80, 0x01}, buf)

	assert.Equal(t, [][]byte{{0x90}}, conn.writes)
	// connection is opened once, on the default bus
	assert.Equal(t, []int{1}, connector.busNrs)

	require.NoError(t, bus.Close())
	assert.True(t, conn.closed)
}

func TestGobotBus_ShortRead(t *testing.T) {
	conn := &fakeConnection{address: 0x54, data: []byte{0x80}}
	bus := NewGobotBus(&fakeConnector{conns: map[int]*fakeConnection{0x54: conn}}, 2)

	buf := make([]byte, 2)
	n, err := bus.ReadFromAddr(context.Background(), 0x54, buf, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGobotBus_Errors(t *testing.T) {
	conn := &fakeConnection{address: 0x14, err: errors.New("write failed")}
	bus := NewGobotBus(&fakeConnector{conns: map[int]*fakeConnection{0x14: conn}}, 0)
	ctx := context.Background()

	err := bus.WriteToAddr(ctx, 0x14, nil)
	assert.ErrorIs(t, err, ltc2473.ErrBusFailure)

	err = bus.WriteToAddr(ctx, 0x54, []byte{0x80})
	assert.ErrorIs(t, err, ltc2473.ErrBusFailure)
	assert.Equal(t, ltc2473.StatusOther, ltc2473.StatusOf(err))
}
