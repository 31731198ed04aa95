package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/ltc2473"
	"github.com/mklimuk/ltc2473/adc"
	"github.com/mklimuk/ltc2473/cmd/ltc2473/console"
	"github.com/mklimuk/ltc2473/config"
)

var probeCmd = cli.Command{
	Name:  "probe",
	Usage: "check whether a converter acknowledges its address",
	Action: func(c *cli.Context) error {
		ctx, cancel := commandContext(c)
		defer cancel()
		addr, err := config.ParseAddress(settings.Address, adc.LTC2473AddrLow, adc.LTC2473AddrHigh)
		if err != nil {
			return console.Exit(1, "%s", console.Red(err))
		}
		bus, closeBus, err := openBus(ctx, addr)
		if err != nil {
			return console.Exit(1, "%s", console.Red(err))
		}
		defer closeBus()
		s := adc.NewLTC2473(adc.WithAddress(addr))
		err = s.Init(ctx, bus)
		if err != nil {
			return console.Exit(1, "probe interrupted: %s", console.Red(err))
		}
		if !s.Available() {
			// probe again to report why the address was not acknowledged
			err = s.Probe(ctx)
		}
		if err == nil {
			console.PInfof(console.PictoProbe, "LTC2473 found at %s", console.Green(fmt.Sprintf("%#x", addr)))
			return nil
		}
		return console.Exit(1, "no LTC2473 at %#x (%s): %s", addr, ltc2473.StatusOf(err), console.Red(err))
	},
}
