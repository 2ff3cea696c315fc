package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/mklimuk/magneto/cmd/magneto/console"
	"github.com/mklimuk/magneto/hmc5883"
	"github.com/urfave/cli/v2"
)

var readCmd = cli.Command{
	Name:    "read",
	Aliases: []string{"r"},
	Usage:   "read magnetic field samples",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "adapter", Aliases: []string{"a"}},
		&cli.StringFlag{Name: "bus", Aliases: []string{"b"}},
		&cli.StringFlag{Name: "chip"},
		&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Usage: "number of samples", Value: 1},
		&cli.DurationFlag{Name: "interval", Usage: "delay between samples", Value: 500 * time.Millisecond},
		&cli.BoolFlag{Name: "range-check", Usage: "reject samples outside the chip's dynamic range"},
		&cli.BoolFlag{Name: "single-shot", Usage: "trigger each measurement instead of continuous mode"},
	},
	Action: func(c *cli.Context) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
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
		if c.Bool("range-check") {
			opts = append(opts, hmc5883.WithRangeCheck())
		}
		if c.Bool("single-shot") {
			opts = append(opts, hmc5883.WithSingleShot())
		}
		mag, err := hmc5883.New(transport, opts...).Init(ctx)
		if err != nil {
			return console.Exit(1, "initialization error: %s", console.Red(err))
		}
		for i := 0; i < c.Int("count"); i++ {
			if i > 0 {
				if err := wait(ctx, c.Duration("interval")); err != nil {
					return err
				}
			}
			x, y, z, err := mag.ReadSample(ctx)
			if err != nil {
				console.Errorf("error reading sample: %s", console.Red(err))
				continue
			}
			console.Printf("%s x:%s y:%s z:%s\n", console.PictoCompass, console.White(x), console.White(y), console.White(z))
		}
		return nil
	},
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
