package main

import (
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/ltc2473/adc"
	"github.com/mklimuk/ltc2473/cmd/ltc2473/console"
)

var modeCmd = cli.Command{
	Name:  "mode",
	Usage: "change the conversion mode",
	Subcommands: cli.Commands{
		modeAction("regular", "208 samples per second, nap between conversions", adc.ModeRegularSpeed),
		modeAction("high", "833 samples per second, 2x speed without nap", adc.ModeHighSpeed),
		modeAction("sleep", "sleep after the current conversion", adc.ModeSleep),
	},
}

func modeAction(name, usage string, mode adc.Mode) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Action: func(c *cli.Context) error {
			ctx, cancel := commandContext(c)
			defer cancel()
			s, _, closeBus, err := openConverter(ctx)
			if err != nil {
				return console.Exit(1, "%s", console.Red(err))
			}
			defer closeBus()
			err = s.SetMode(ctx, mode)
			if err != nil {
				return console.Exit(1, "could not set mode %s: %s", mode, console.Red(err))
			}
			if mode == adc.ModeSleep {
				console.PInfof(console.PictoSleep, "converter asleep, allow %s after waking before reading", adc.SleepWakeLatency)
				return nil
			}
			console.PInfof(console.PictoVoltage, "mode set to %s", console.Green(mode.String()))
			return nil
		},
	}
}
