package main

import (
	"context"

	"github.com/mklimuk/magneto/cmd/magneto/console"
	"github.com/mklimuk/magneto/hmc5883"
	"github.com/urfave/cli/v2"
)

var selfTestCmd = cli.Command{
	Name:  "selftest",
	Usage: "run a bias self-test measurement",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "adapter", Aliases: []string{"a"}},
		&cli.StringFlag{Name: "bus", Aliases: []string{"b"}},
		&cli.StringFlag{Name: "chip"},
		&cli.BoolFlag{Name: "negative", Usage: "use negative bias excitation"},
		&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "skip the confirmation prompt"},
	},
	Action: func(c *cli.Context) error {
		ctx := context.Background()
		if !c.Bool("yes") {
			// self-test drives the excitation strap, field readings are
			// invalid while it runs
			answer, err := console.YesOrNo("run the bias self-test now?")
			if err != nil {
				return console.Exit(1, "prompt error: %s", console.Red(err))
			}
			if answer != console.Yes {
				console.Print("aborted")
				return nil
			}
		}
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
		x, y, z, err := mag.SelfTest(ctx, !c.Bool("negative"))
		if err != nil {
			return console.Exit(1, "self-test error: %s", console.Red(err))
		}
		console.Printf("%s x:%s y:%s z:%s\n", console.PictoMagnet, console.White(x), console.White(y), console.White(z))
		return nil
	},
}
