package adc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"periph.io/x/conn/v3/physic"

	"github.com/mklimuk/ltc2473"
)

// 7-bit addresses selected by the CA0 pin strap.
const (
	LTC2473AddrLow  = 0x14 // CA0 tied to GND
	LTC2473AddrHigh = 0x54 // CA0 tied to VCC
)

// ReferenceVoltage is the internal reference of the converter in volts.
const ReferenceVoltage = 1.250

// SettleDelay is waited after the presence probe in Init.
const SettleDelay = 10 * time.Millisecond

// SleepWakeLatency is the time the reference needs to power up on the first
// read after SetSleep. The driver does not wait it out.
const SleepWakeLatency = 12 * time.Millisecond

// Mode is a mode configuration command byte.
//
//	C7 EN1: 1 enables programming
//	C6 EN2: 0 enables programming
//	C5 SPD: 1 = 833 sps, 0 = 208 sps
//	C4 SLP: 1 = sleep, 0 = nap
//	C3..C0: don't care
type Mode byte

const (
	ModeRegularSpeed Mode = 0b10000000
	ModeHighSpeed    Mode = 0b10100000
	ModeSleep        Mode = 0b10010000
)

func (m Mode) String() string {
	switch m {
	case ModeRegularSpeed:
		return "208sps"
	case ModeHighSpeed:
		return "833sps"
	case ModeSleep:
		return "sleep"
	default:
		return fmt.Sprintf("mode(%#x)", byte(m))
	}
}

const codeLength = 2

// ErrNotInitialized is returned by bus operations called before Init.
var ErrNotInitialized = errors.New("ltc2473: not initialized")

type LTC2473Opts struct {
	Address     byte
	SettleDelay time.Duration
}

type LTC2473Opt func(*LTC2473Opts)

func WithAddress(address byte) LTC2473Opt {
	return func(o *LTC2473Opts) {
		o.Address = address
	}
}

func WithSettleDelay(delay time.Duration) LTC2473Opt {
	return func(o *LTC2473Opts) {
		o.SettleDelay = delay
	}
}

// LTC2473 represents Analog Devices (Linear) LTC2473 16-bit differential
// delta-sigma ADC with a 1.25V internal reference.
// See: https://www.analog.com/media/en/technical-documentation/data-sheets/24713fb.pdf
//
// Typical usage:
//
//	s := NewLTC2473()
//	if err := s.Init(ctx, bus); err != nil { ... }
//	if !s.Available() { ... }
//	v, err := s.Read(ctx, true)
//
// The driver does no locking. Callers sharing a bus between devices must
// serialize access themselves.
type LTC2473 struct {
	transport ltc2473.I2CBus
	config    LTC2473Opts
	available bool
	buf       []byte
}

func NewLTC2473(opts ...LTC2473Opt) *LTC2473 {
	config := LTC2473Opts{
		Address:     LTC2473AddrLow,
		SettleDelay: SettleDelay,
	}
	for _, opt := range opts {
		opt(&config)
	}
	return &LTC2473{
		config: config,
		buf:    make([]byte, codeLength),
	}
}

// Address returns the 7-bit bus address of the device.
func (s *LTC2473) Address() byte {
	return s.config.Address
}

// Init binds the bus, probes the device and waits for it to settle. The
// settle delay is waited whether the device answered or not. The probe result
// is reported by Available; the returned error is only set when ctx ends
// during the settle delay.
func (s *LTC2473) Init(ctx context.Context, bus ltc2473.I2CBus) error {
	s.transport = bus
	s.available = s.Probe(ctx) == nil
	timer := time.NewTimer(s.config.SettleDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Available reports whether the device acknowledged the probe issued by the
// last Init.
func (s *LTC2473) Available() bool {
	return s.available
}

// Probe addresses the device without transferring data and returns nil if it
// acknowledged.
func (s *LTC2473) Probe(ctx context.Context) error {
	if s.transport == nil {
		return ErrNotInitialized
	}
	err := s.transport.WriteToAddr(ctx, s.config.Address, nil)
	if err != nil {
		return fmt.Errorf("ltc2473: probe failed: %w", err)
	}
	return nil
}

// ReadCode reads the last conversion result. When release is false the bus
// is held with a repeated start for a following transaction.
func (s *LTC2473) ReadCode(ctx context.Context, release bool) (uint16, error) {
	if s.transport == nil {
		return 0, ErrNotInitialized
	}
	n, err := s.transport.ReadFromAddr(ctx, s.config.Address, s.buf, release)
	if err != nil {
		return 0, fmt.Errorf("ltc2473: read failed: %w", err)
	}
	if n < codeLength {
		return 0, fmt.Errorf("ltc2473: read failed: %w", &ltc2473.ShortReadError{Expected: codeLength, Received: n})
	}
	return assembleCode(s.buf[0], s.buf[1]), nil
}

// Read reads the last conversion result and returns it in volts. On error
// the returned value is 0 and must not be used; a short transfer is reported
// as *ltc2473.ShortReadError.
func (s *LTC2473) Read(ctx context.Context, release bool) (float64, error) {
	code, err := s.ReadCode(ctx, release)
	if err != nil {
		return 0, err
	}
	return ConvertCodeToVoltage(code), nil
}

// ReadPotential is Read expressed as a periph electric potential.
func (s *LTC2473) ReadPotential(ctx context.Context, release bool) (physic.ElectricPotential, error) {
	v, err := s.Read(ctx, release)
	if err != nil {
		return 0, err
	}
	return physic.ElectricPotential(math.Round(v * float64(physic.Volt))), nil
}

// SetHighSpeed selects the 833 samples per second output rate.
func (s *LTC2473) SetHighSpeed(ctx context.Context) error {
	return s.writeCommand(ctx, ModeHighSpeed)
}

// SetRegularSpeed selects the 208 samples per second output rate.
func (s *LTC2473) SetRegularSpeed(ctx context.Context) error {
	return s.writeCommand(ctx, ModeRegularSpeed)
}

// SetSleep powers the reference and converter down after the next read. The
// first read after that needs SleepWakeLatency before it is valid.
func (s *LTC2473) SetSleep(ctx context.Context) error {
	return s.writeCommand(ctx, ModeSleep)
}

// SetMode sends one of the mode commands.
func (s *LTC2473) SetMode(ctx context.Context, mode Mode) error {
	switch mode {
	case ModeRegularSpeed, ModeHighSpeed, ModeSleep:
		return s.writeCommand(ctx, mode)
	default:
		return fmt.Errorf("ltc2473: unsupported mode %s", mode)
	}
}

func (s *LTC2473) writeCommand(ctx context.Context, mode Mode) error {
	if s.transport == nil {
		return ErrNotInitialized
	}
	err := s.transport.WriteToAddr(ctx, s.config.Address, []byte{byte(mode)})
	if err != nil {
		return fmt.Errorf("ltc2473: could not write %s command: %w", mode, err)
	}
	return nil
}
