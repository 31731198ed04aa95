package adapter

import (
	"context"
	"fmt"
	"sync"

	"github.com/mklimuk/ltc2473"
)

// CodeBehaviorFunc returns the next conversion result of a simulated
// converter.
type CodeBehaviorFunc func(ctx context.Context) (uint16, error)

type SimulatorOpts struct {
	Address   byte
	ShortRead int
}

type SimulatorOpt func(*SimulatorOpts)

func WithSimulatedAddress(address byte) SimulatorOpt {
	return func(o *SimulatorOpts) {
		o.Address = address
	}
}

// WithShortRead makes every read deliver at most n bytes.
func WithShortRead(n int) SimulatorOpt {
	return func(o *SimulatorOpts) {
		o.ShortRead = n
	}
}

// Simulator is an I2C bus with a single LTC2473 attached. It needs no
// hardware and can be used wherever an ltc2473.I2CBus is expected.
//
// Example usage:
//
//	// converter sitting at mid scale (0V)
//	bus := NewSimulator(func(ctx context.Context) (uint16, error) { return 0x8000, nil })
//
//	// converter that is not connected
//	bus := NewSimulator(nil)
//	bus.SetPresent(false)
type Simulator struct {
	mx       sync.Mutex
	config   SimulatorOpts
	behavior CodeBehaviorFunc
	present  bool
	mode     byte
	asleep   bool
	held     bool
	writes   [][]byte
}

var _ ltc2473.I2CBus = &Simulator{}

// NewSimulator creates a bus with a converter at address 0x14 in 208 sps nap
// mode. A nil behavior always converts to mid scale.
func NewSimulator(behavior CodeBehaviorFunc, opts ...SimulatorOpt) *Simulator {
	config := SimulatorOpts{
		Address:   0x14,
		ShortRead: -1,
	}
	for _, opt := range opts {
		opt(&config)
	}
	if behavior == nil {
		behavior = func(ctx context.Context) (uint16, error) { return 0x8000, nil }
	}
	return &Simulator{
		config:   config,
		behavior: behavior,
		present:  true,
		mode:     0x80,
	}
}

// SetPresent attaches or detaches the simulated converter.
func (s *Simulator) SetPresent(present bool) {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.present = present
}

// Mode returns the last mode command the converter accepted.
func (s *Simulator) Mode() byte {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.mode
}

// Asleep reports whether the converter powered down after its last read.
func (s *Simulator) Asleep() bool {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.asleep
}

// Held reports whether the last read ended with a repeated start.
func (s *Simulator) Held() bool {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.held
}

// Writes returns a copy of every data write the converter received.
func (s *Simulator) Writes() [][]byte {
	s.mx.Lock()
	defer s.mx.Unlock()
	out := make([][]byte, len(s.writes))
	for i, w := range s.writes {
		out[i] = append([]byte(nil), w...)
	}
	return out
}

func (s *Simulator) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.held = false
	if !s.present || address != s.config.Address {
		return ltc2473.NewBusError(ltc2473.StatusAddressNack, address, nil)
	}
	if len(buffer) == 0 {
		return nil
	}
	s.writes = append(s.writes, append([]byte(nil), buffer...))
	// only the first byte is a command, C7=1 and C6=0 enable programming
	cmd := buffer[0]
	if cmd&0xC0 == 0x80 {
		s.mode = cmd & 0xF0
	}
	return nil
}

func (s *Simulator) ReadFromAddr(ctx context.Context, address byte, buffer []byte, stop bool) (int, error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	if !s.present || address != s.config.Address {
		return 0, ltc2473.NewBusError(ltc2473.StatusAddressNack, address, nil)
	}
	code, err := s.behavior(ctx)
	if err != nil {
		return 0, ltc2473.NewBusError(ltc2473.StatusOther, address, fmt.Errorf("simulated conversion failed: %w", err))
	}
	data := []byte{byte(code >> 8), byte(code)}
	if s.config.ShortRead >= 0 && s.config.ShortRead < len(data) {
		data = data[:s.config.ShortRead]
	}
	n := copy(buffer, data)
	s.held = !stop
	s.asleep = s.mode&0x10 != 0
	return n, nil
}

func (s *Simulator) Release(ctx context.Context) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.held = false
	return nil
}
