package main

import (
	"context"

	"github.com/mklimuk/magneto/cmd/magneto/console"
	"github.com/mklimuk/magneto/hmc5883"
	"github.com/urfave/cli/v2"
)

var identifyCmd = cli.Command{
	Name:    "identify",
	Aliases: []string{"id"},
	Usage:   "read the chip identity registers without initializing",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "adapter", Aliases: []string{"a"}},
		&cli.StringFlag{Name: "bus", Aliases: []string{"b"}},
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
		id, err := hmc5883.New(transport).Identity(ctx)
		if err != nil {
			return console.Exit(1, "error reading identity: %s", console.Red(err))
		}
		console.Printf("%s %#x %#x %#x (%s)\n", console.PictoPin, id[0], id[1], id[2], string(id[:]))
		return nil
	},
}
