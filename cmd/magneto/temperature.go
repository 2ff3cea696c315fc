package main

import (
	"context"

	"github.com/mklimuk/magneto/cmd/magneto/console"
	"github.com/mklimuk/magneto/hmc5883"
	"github.com/urfave/cli/v2"
)

var tempReadCmd = cli.Command{
	Name:    "temperature",
	Aliases: []string{"temp"},
	Usage:   "read the die temperature (HMC5983 only)",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "adapter", Aliases: []string{"a"}},
		&cli.StringFlag{Name: "bus", Aliases: []string{"b"}},
		&cli.StringFlag{Name: "chip"},
	},
	Action: func(c *cli.Context) error {
		ctx := context.Background()
		cfg, err := configFromFlags(c)
		if err != nil {
			return console.Exit(1, "invalid configuration: %s", console.Red(err))
		}
		transport, release, err := openTransport(cfg)
		if err != nil {
			return console.Exit(1, "transport error: %s", console.Red(err))
		}
		defer release()
		opts, err := chipOptions(cfg)
		if err != nil {
			return console.Exit(1, "invalid configuration: %s", console.Red(err))
		}
		mag, err := hmc5883.New(transport, opts...).Init(ctx)
		if err != nil {
			return console.Exit(1, "initialization error: %s", console.Red(err))
		}
		temp, err := mag.ReadTemperature(ctx)
		if err != nil {
			return console.Exit(1, "error reading temperature: %s", console.Red(err))
		}
		console.Printf("%s %s°C\n", console.PictoThermometer, console.White(temp))
		return nil
	},
}
