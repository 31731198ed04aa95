package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/ltc2473/adc"
	"github.com/mklimuk/ltc2473/cmd/ltc2473/console"
)

type sample struct {
	Time    time.Time `yaml:"time"`
	Code    uint16    `yaml:"code"`
	Raw     string    `yaml:"raw"`
	Voltage float64   `yaml:"voltage"`
}

var readCmd = cli.Command{
	Name:  "read",
	Usage: "read conversion results",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "count",
			Usage: "number of reads, 0 reads until interrupted",
			Value: 1,
		},
		&cli.DurationFlag{
			Name:  "interval",
			Usage: "pause between reads",
			Value: 100 * time.Millisecond,
		},
		&cli.BoolFlag{
			Name:  "hold",
			Usage: "keep the bus between reads and release it at the end",
		},
		&cli.BoolFlag{
			Name:  "wake",
			Usage: "wake the converter from sleep before the first read",
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "output format: text or yaml",
			Value: "text",
		},
	},
	Action: func(c *cli.Context) error {
		format := c.String("format")
		if format != "text" && format != "yaml" {
			return console.Exit(1, "unknown format %q", format)
		}
		ctx, cancel := commandContext(c)
		defer cancel()
		s, bus, closeBus, err := openConverter(ctx)
		if err != nil {
			return console.Exit(1, "%s", console.Red(err))
		}
		defer closeBus()

		if c.Bool("wake") {
			err = s.SetRegularSpeed(ctx)
			if err != nil {
				return console.Exit(1, "could not wake converter: %s", console.Red(err))
			}
			time.Sleep(adc.SleepWakeLatency)
		}

		hold := c.Bool("hold")
		if hold {
			defer func() {
				if err := bus.Release(ctx); err != nil {
					console.Errorf("could not release bus: %s", console.Red(err))
				}
			}()
		}

		var enc *yaml.Encoder
		if format == "yaml" {
			enc = yaml.NewEncoder(console.Writer())
			defer func() { _ = enc.Close() }()
		}
		count := c.Int("count")
		interval := c.Duration("interval")
		for i := 0; count == 0 || i < count; i++ {
			if i > 0 {
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(interval):
				}
			}
			if format == "text" {
				v, err := s.ReadPotential(ctx, !hold)
				if err != nil {
					return console.Exit(1, "read error: %s", console.Red(err))
				}
				console.PInfof(console.PictoVoltage, "%s", console.White(v.String()))
				continue
			}
			code, err := s.ReadCode(ctx, !hold)
			if err != nil {
				return console.Exit(1, "read error: %s", console.Red(err))
			}
			err = enc.Encode(sample{
				Time:    time.Now(),
				Code:    code,
				Raw:     fmt.Sprintf("%#06x", code),
				Voltage: adc.ConvertCodeToVoltage(code),
			})
			if err != nil {
				return console.Exit(1, "encoding error: %s", console.Red(err))
			}
		}
		return nil
	},
}
