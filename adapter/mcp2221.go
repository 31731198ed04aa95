package adapter

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/karalabe/hid"

	"github.com/mklimuk/ltc2473"
	"github.com/mklimuk/ltc2473/snsctx"
)

const VendorID = 0x04D8
const ProductID = 0x00DD

var ErrCommandFailed = errors.New("command failed")

var _ ltc2473.I2CBus = &MCP2221{}

// HID commands
const (
	cmdStatus             = 0x10
	cmdGetData            = 0x40
	cmdWriteData          = 0x90
	cmdReadData           = 0x91
	cmdReadDataRepeated   = 0x93
	statusCancelTransfer  = 0x10
	statusSetSpeed        = 0x20
	responseEngineBusy    = 0x01
	responseReadError     = 0x41
	responseDataSizeError = 127
)

// I2C engine states reported at byte 8 of the status response.
const (
	engineIdle           = 0x00
	engineStartTimeout   = 0x12
	engineRestartTimeout = 0x17
	engineAddrTimeout    = 0x23
	engineAddrNack       = 0x25
	engineWriteTimeout   = 0x44
	engineReadTimeout    = 0x52
	engineStopTimeout    = 0x62
)

const clockFrequency = 12_000_000

// I2C clock range reachable with an 8-bit divider.
const (
	minSpeed = 47_000
	maxSpeed = 400_000
)

// hidDevice is the part of *hid.Device the adapter uses.
type hidDevice interface {
	Write(b []byte) (int, error)
	Read(b []byte) (int, error)
	Close() error
}

// MCP2221 is a Microchip MCP2221(A) USB to I2C bridge. Each command opens the
// HID device, exchanges one 64 byte report and closes it again; the mutex
// serializes commands so the bridge can be shared by several drivers.
type MCP2221 struct {
	mx           sync.Mutex
	request      []byte
	response     []byte
	responseWait time.Duration
	open         func() (hidDevice, error)
}

type MCP2221Status struct {
	I2CDataBufferCounter   int    `yaml:"data_buffer_counter"`
	I2CSpeedDivider        int    `yaml:"speed_divider"`
	I2CTimeout             int    `yaml:"timeout"`
	I2CState               int    `yaml:"state"`
	CurrentAddress         string `yaml:"current_address"`
	LastWriteRequestedSize uint16 `yaml:"last_write_requested_size"`
	LastWriteSentSize      uint16 `yaml:"last_write_sent_size"`
	ReadPending            int    `yaml:"read_pending"`
}

func NewMCP2221() *MCP2221 {
	return &MCP2221{
		request:      make([]byte, 64),
		response:     make([]byte, 64),
		responseWait: 50 * time.Millisecond,
		open:         openHID,
	}
}

// Init checks that exactly one bridge is attached.
func (d *MCP2221) Init() error {
	if !hid.Supported() {
		return fmt.Errorf("HID is not supported on this platform")
	}
	devs := hid.Enumerate(VendorID, ProductID)
	if len(devs) == 0 {
		return fmt.Errorf("MCP2221 device not found")
	}
	if len(devs) > 1 {
		return fmt.Errorf("ambiguous device identification: %d devices found", len(devs))
	}
	return nil
}

func (d *MCP2221) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	d.request[0] = cmdWriteData
	binary.LittleEndian.PutUint16(d.request[1:3], uint16(len(buffer)))
	d.request[3] = address << 1
	if len(buffer) > 0 {
		copy(d.request[4:], buffer)
	}
	err := d.send(ctx, true)
	if err != nil {
		return ltc2473.NewBusError(ltc2473.StatusOther, address, fmt.Errorf("write to %x failed: %w", address, err))
	}
	// write could not be performed
	if d.response[1] == responseEngineBusy {
		slog.Debug("adapter busy")
		return ltc2473.NewBusError(ltc2473.StatusOther, address, ltc2473.ErrBusBusy)
	}
	return d.checkEngine(ctx, address)
}

// ReadFromAddr reads up to len(buffer) bytes and returns the count reported
// by the bridge. With stop false the read ends with a repeated start.
func (d *MCP2221) ReadFromAddr(ctx context.Context, address byte, buffer []byte, stop bool) (int, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	d.request[0] = cmdReadData
	if !stop {
		d.request[0] = cmdReadDataRepeated
	}
	binary.LittleEndian.PutUint16(d.request[1:3], uint16(len(buffer)))
	d.request[3] = address<<1 + 1
	err := d.send(ctx, true)
	if err != nil {
		return 0, ltc2473.NewBusError(ltc2473.StatusOther, address, fmt.Errorf("bus read from %x failed: %w", address, err))
	}
	if d.response[1] == responseEngineBusy {
		slog.Debug("adapter busy")
		return 0, ltc2473.NewBusError(ltc2473.StatusOther, address, ltc2473.ErrBusBusy)
	}
	resetBuffer(d.request)
	d.request[0] = cmdGetData
	resetBuffer(d.response)
	err = d.send(ctx, true)
	if err != nil {
		return 0, ltc2473.NewBusError(ltc2473.StatusOther, address, fmt.Errorf("error getting read data from adapter: %w", err))
	}
	if d.response[1] == responseReadError || d.response[3] == responseDataSizeError {
		status := engineStatus(d.response[2])
		if status == ltc2473.StatusOK {
			status = ltc2473.StatusOther
		}
		return 0, ltc2473.NewBusError(status, address, fmt.Errorf("error reading the I2C slave data from the I2C engine (state %#x)", d.response[2]))
	}
	n := int(d.response[3])
	if n > len(buffer) {
		return 0, ltc2473.NewBusError(ltc2473.StatusOther, address, fmt.Errorf("invalid data size byte; expected at most %d, got %d", len(buffer), n))
	}
	copy(buffer, d.response[4:4+n])
	return n, nil
}

// checkEngine reads the engine state after a write and cancels the transfer
// when the engine reports a failure.
func (d *MCP2221) checkEngine(ctx context.Context, address byte) error {
	status, err := d.status(ctx)
	if err != nil {
		return ltc2473.NewBusError(ltc2473.StatusOther, address, err)
	}
	state := engineStatus(byte(status.I2CState))
	if state == ltc2473.StatusOK {
		return nil
	}
	if _, err := d.releaseBus(ctx); err != nil {
		slog.Debug("could not cancel transfer", "error", err)
	}
	return ltc2473.NewBusError(state, address, fmt.Errorf("engine state %#x", status.I2CState))
}

func engineStatus(state byte) ltc2473.Status {
	switch state {
	case engineIdle:
		return ltc2473.StatusOK
	case engineAddrNack:
		return ltc2473.StatusAddressNack
	case engineStartTimeout, engineRestartTimeout, engineAddrTimeout,
		engineWriteTimeout, engineReadTimeout, engineStopTimeout:
		return ltc2473.StatusTimeout
	default:
		return ltc2473.StatusOther
	}
}

// SetSpeed sets the I2C clock in Hz. The divider is a single byte so the
// slowest clock is 47 kHz.
func (d *MCP2221) SetSpeed(ctx context.Context, hz int) error {
	if hz < minSpeed || hz > maxSpeed {
		return fmt.Errorf("unsupported I2C speed %d Hz", hz)
	}
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	d.request[0] = cmdStatus
	d.request[3] = statusSetSpeed
	d.request[4] = byte(clockFrequency/hz - 3)
	err := d.send(ctx, true)
	if err != nil {
		return fmt.Errorf("set speed request failed: %w", err)
	}
	if d.response[3] != statusSetSpeed {
		return fmt.Errorf("could not set speed (status %#x): %w", d.response[3], ErrCommandFailed)
	}
	return nil
}

func (d *MCP2221) Status(ctx context.Context) (*MCP2221Status, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.status(ctx)
}

func (d *MCP2221) status(ctx context.Context) (*MCP2221Status, error) {
	d.resetBuffers()
	d.request[0] = cmdStatus
	err := d.send(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("status request failed: %w", err)
	}
	return bufferToStatus(d.response), nil
}

func bufferToStatus(buffer []byte) *MCP2221Status {
	/*
		8:  I2C engine state
		9:  Lower byte (16-bit value) of the requested I2C transfer length
		10: Higher byte (16-bit value) of the requested I2C transfer length
		11:	Lower byte (16-bit value) of the already transferred (through I2C) number of bytes
		12:	Higher byte (16-bit value) of the already transferred (through I2C) number of bytes
		13:	Internal I2C data buffer counter
		14: Current I2C communication speed divider value
		15: Current I2C timeout value
		16:	Lower byte (16-bit value) of the I2C address being used
		17:	Higher byte (16-bit value) of the I2C address being used
	*/
	status := &MCP2221Status{
		I2CState:             int(buffer[8]),
		I2CDataBufferCounter: int(buffer[13]),
		I2CSpeedDivider:      int(buffer[14]),
		I2CTimeout:           int(buffer[15]),
		ReadPending:          int(buffer[25]),
		CurrentAddress:       hex.EncodeToString(buffer[16:18]),
	}
	status.LastWriteRequestedSize = binary.LittleEndian.Uint16(buffer[9:11])
	status.LastWriteSentSize = binary.LittleEndian.Uint16(buffer[11:13])
	return status
}

func (d *MCP2221) Release(ctx context.Context) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	_, err := d.releaseBus(ctx)
	return err
}

// ReleaseBus cancels the current transfer and frees the bus.
func (d *MCP2221) ReleaseBus(ctx context.Context) (*MCP2221Status, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.releaseBus(ctx)
}

func (d *MCP2221) releaseBus(ctx context.Context) (*MCP2221Status, error) {
	d.resetBuffers()
	d.request[0] = cmdStatus
	d.request[2] = statusCancelTransfer
	err := d.send(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("cancel request failed: %w", err)
	}
	return bufferToStatus(d.response), nil
}

func openHID() (hidDevice, error) {
	devs := hid.Enumerate(VendorID, ProductID)
	if len(devs) > 1 {
		return nil, fmt.Errorf("ambiguous device identification")
	}
	if len(devs) == 0 {
		return nil, fmt.Errorf("MCP2221 device not found")
	}
	dev, err := devs[0].Open()
	if err != nil {
		return nil, fmt.Errorf("error opening device: %w", err)
	}
	return dev, nil
}

func (d *MCP2221) send(ctx context.Context, response bool) error {
	dev, err := d.open()
	if err != nil {
		return err
	}
	defer func() {
		if err := dev.Close(); err != nil {
			slog.Debug("could not close adapter", "error", err)
		}
	}()
	verbose := snsctx.IsVerbose(ctx)
	if verbose {
		slog.Debug("sending message to adapter", "request", "\n"+hex.Dump(d.request))
	}
	n, err := dev.Write(d.request)
	if err != nil {
		return fmt.Errorf("could not write request: %w", err)
	}
	if n != 64 {
		return fmt.Errorf("short write: %d", n)
	}
	if !response {
		return nil
	}
	timer := time.NewTimer(d.responseWait)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return ctx.Err()
	}
	slog.Debug("reading response from adapter")
	n, err = dev.Read(d.response)
	if err != nil {
		return fmt.Errorf("could not read response: %w", err)
	}
	if n != 64 {
		return fmt.Errorf("short read: %d", n)
	}
	if verbose {
		slog.Debug("read message from adapter", "response", "\n"+hex.Dump(d.response))
	}
	return nil
}

func (d *MCP2221) resetBuffers() {
	resetBuffer(d.request)
	resetBuffer(d.response)
}

func resetBuffer(buf []byte) {
	for i := range buf {
		buf[i] = 0x00
	}
}
