package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"gobot.io/x/gobot/v2/platforms/friendlyelec/nanopi"
	"periph.io/x/conn/v3/physic"

	"github.com/mklimuk/ltc2473"
	"github.com/mklimuk/ltc2473/adapter"
	"github.com/mklimuk/ltc2473/adc"
	"github.com/mklimuk/ltc2473/cmd/ltc2473/console"
	"github.com/mklimuk/ltc2473/config"
	"github.com/mklimuk/ltc2473/i2c"
	"github.com/mklimuk/ltc2473/snsctx"
)

// openBus opens the adapter selected in settings. The returned function
// closes it. The simulated converter answers at addr.
func openBus(ctx context.Context, addr byte) (ltc2473.I2CBus, func(), error) {
	switch settings.Adapter {
	case "mcp2221":
		a := adapter.NewMCP2221()
		if err := a.Init(); err != nil {
			return nil, nil, fmt.Errorf("adapter initialization error: %w", err)
		}
		if err := a.SetSpeed(ctx, settings.Speed); err != nil {
			return nil, nil, fmt.Errorf("could not set bus speed: %w", err)
		}
		return a, func() {}, nil
	case "generic":
		bus, err := i2c.NewGenericBus(settings.Device)
		if err != nil {
			return nil, nil, fmt.Errorf("adapter initialization error: %w", err)
		}
		if err := bus.SetSpeed(physic.Frequency(settings.Speed) * physic.Hertz); err != nil {
			console.Warnf("could not set bus speed: %s", console.Yellow(err))
		}
		return bus, func() {
			if err := bus.Close(); err != nil {
				console.Errorf("error closing bus: %s", console.Red(err))
			}
		}, nil
	case "nanopi":
		npi := nanopi.NewNeoAdaptor()
		if err := npi.Connect(); err != nil {
			return nil, nil, fmt.Errorf("adaptor connect error: %w", err)
		}
		bus := i2c.NewGobotBus(npi, settings.Bus)
		return bus, func() {
			if err := bus.Close(); err != nil {
				console.Errorf("error closing bus: %s", console.Red(err))
			}
			if err := npi.Finalize(); err != nil {
				console.Errorf("error finalizing adaptor: %s", console.Red(err))
			}
		}, nil
	case "sim":
		// mid scale with a few LSB of noise
		return adapter.NewSimulator(func(ctx context.Context) (uint16, error) {
			return uint16(0x8000 + rand.IntN(64) - 32), nil
		}, adapter.WithSimulatedAddress(addr)), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown adapter %q", settings.Adapter)
	}
}

// openConverter opens the bus and initializes the converter on it. It fails
// when the converter does not answer the probe.
func openConverter(ctx context.Context) (*adc.LTC2473, ltc2473.I2CBus, func(), error) {
	addr, err := config.ParseAddress(settings.Address, adc.LTC2473AddrLow, adc.LTC2473AddrHigh)
	if err != nil {
		return nil, nil, nil, err
	}
	bus, closeBus, err := openBus(ctx, addr)
	if err != nil {
		return nil, nil, nil, err
	}
	s := adc.NewLTC2473(adc.WithAddress(addr))
	if err := s.Init(ctx, bus); err != nil {
		closeBus()
		return nil, nil, nil, err
	}
	if !s.Available() {
		closeBus()
		return nil, nil, nil, fmt.Errorf("no LTC2473 answering at %#x", addr)
	}
	return s, bus, closeBus, nil
}

// commandContext returns a context cancelled on interrupt carrying the
// verbose flag for the transports.
func commandContext(c *cli.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	return snsctx.SetVerbose(ctx, c.Bool("verbose")), cancel
}
