package i2c

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"

	"github.com/mklimuk/ltc2473"
	"github.com/mklimuk/ltc2473/adc"
)

const addr uint16 = adc.LTC2473AddrLow

func TestGenericBus_WriteToAddr(t *testing.T) {
	pb := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: addr, W: []byte{0xA0}},
	}, DontPanic: true}
	bus := NewBus(pb)

	require.NoError(t, bus.WriteToAddr(context.Background(), byte(addr), []byte{0xA0}))
	assert.NoError(t, bus.Close())
}

func TestGenericBus_Probe(t *testing.T) {
	pb := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: addr, R: []byte{0x80}},
	}, DontPanic: true}
	bus := NewBus(pb)

	require.NoError(t, bus.WriteToAddr(context.Background(), byte(addr), nil))
	assert.NoError(t, bus.Close())
}

func TestGenericBus_ReadFromAddr(t *testing.T) {
	pb := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: addr, R: []byte{0x12, 0x34}},
	}, DontPanic: true}
	bus := NewBus(pb)

	buf := make([]byte, 2)
	n, err := bus.ReadFromAddr(context.Background(), byte(addr), buf, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0x12, 0x34}, buf)
	assert.NoError(t, bus.Release(context.Background()))
	assert.NoError(t, bus.Close())
}

func TestGenericBus_Errors(t *testing.T) {
	pb := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: 0x54, W: []byte{0x80}},
	}, DontPanic: true}
	bus := NewBus(pb)

	err := bus.WriteToAddr(context.Background(), byte(addr), []byte{0x80})
	require.Error(t, err)
	assert.ErrorIs(t, err, ltc2473.ErrBusFailure)
	var busErr *ltc2473.BusError
	require.ErrorAs(t, err, &busErr)
	assert.Equal(t, byte(addr), busErr.Address)
}

func TestGenericBus_LTC2473(t *testing.T) {
	pb := &i2ctest.Playback{Ops: []i2ctest.IO{
		// probe
		{Addr: addr, R: []byte{0x80}},
		// high speed
		{Addr: addr, W: []byte{0xA0}},
		// conversion
		{Addr: addr, R: []byte{0x80, 0x00}},
		{Addr: addr, R: []byte{0xFF, 0xFF}},
		// sleep
		{Addr: addr, W: []byte{0x90}},
	}, DontPanic: true}
	record := &i2ctest.Record{Bus: pb}
	bus := NewBus(nopCloser{record})
	ctx := context.Background()

	s := adc.NewLTC2473(adc.WithSettleDelay(time.Millisecond))
	require.NoError(t, s.Init(ctx, bus))
	require.True(t, s.Available())
	require.NoError(t, s.SetHighSpeed(ctx))

	v, err := s.Read(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
	v, err = s.Read(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, adc.ConvertCodeToVoltage(0xFFFF), v)

	require.NoError(t, s.SetSleep(ctx))
	assert.Len(t, record.Ops, 5)
	assert.NoError(t, pb.Close())
}

type nopCloser struct {
	*i2ctest.Record
}

func (nopCloser) Close() error {
	return nil
}
