package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	chlog "github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/ltc2473/config"
)

// settings is resolved in Before from the config file and the global flags.
var settings = config.Default()

func main() {
	os.Exit(run())
}

func run() int {
	err := newApp().Run(os.Args)
	if err != nil {
		var exerr cli.ExitCoder
		if errors.As(err, &exerr) {
			log.Printf("unexpected error: %v", err)
			return exerr.ExitCode()
		}
		slog.Error("unexpected error", "error", err)
		return 1
	}
	return 0
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "ltc2473"
	app.EnableBashCompletion = true
	app.Version = fmt.Sprintf("%s-%s-%s", config.Version, config.Date, config.Commit)
	app.Usage = "LTC2473 ADC cli"
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "enable verbose logging",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML file with adapter and device defaults",
			Value:   "ltc2473.yaml",
			EnvVars: []string{"LTC2473_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "adapter",
			Aliases: []string{"a"},
			Usage:   "bus adapter: mcp2221, generic, nanopi or sim",
			EnvVars: []string{"LTC2473_ADAPTER"},
		},
		&cli.StringFlag{
			Name:    "device",
			Aliases: []string{"d"},
			Usage:   "i2c device for the generic adapter",
			EnvVars: []string{"LTC2473_DEVICE"},
		},
		&cli.IntFlag{
			Name:    "bus",
			Usage:   "bus number for the nanopi adapter, negative for the board default",
			EnvVars: []string{"LTC2473_BUS"},
		},
		&cli.StringFlag{
			Name:    "addr",
			Usage:   "device address: low (0x14), high (0x54) or hex",
			EnvVars: []string{"LTC2473_ADDR"},
		},
		&cli.IntFlag{
			Name:    "speed",
			Usage:   "bus clock in Hz",
			EnvVars: []string{"LTC2473_SPEED"},
		},
	}
	app.Before = func(ctx *cli.Context) error {
		charm := chlog.NewWithOptions(os.Stdout, chlog.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.DateTime,
			Prefix:          "ltc2473",
		})
		charm.SetColorProfile(termenv.TrueColor)
		charm.SetLevel(chlog.InfoLevel)
		if ctx.Bool("verbose") {
			charm.SetLevel(chlog.DebugLevel)
		}
		slog.SetDefault(slog.New(charm))

		cfg, err := config.Load(ctx.String("config"))
		if err != nil {
			return fmt.Errorf("could not load configuration: %w", err)
		}
		if ctx.IsSet("adapter") {
			cfg.Adapter = ctx.String("adapter")
		}
		if ctx.IsSet("device") {
			cfg.Device = ctx.String("device")
		}
		if ctx.IsSet("bus") {
			cfg.Bus = ctx.Int("bus")
		}
		if ctx.IsSet("addr") {
			cfg.Address = ctx.String("addr")
		}
		if ctx.IsSet("speed") {
			cfg.Speed = ctx.Int("speed")
		}
		settings = cfg
		slog.Debug("configuration resolved", "adapter", cfg.Adapter, "device", cfg.Device, "address", cfg.Address)
		return nil
	}
	app.Commands = cli.Commands{
		&probeCmd,
		&readCmd,
		&modeCmd,
		&mcp2221Cmd,
		&usbCmd,
	}
	return app
}
