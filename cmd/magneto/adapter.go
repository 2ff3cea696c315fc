package main

import (
	"context"

	"github.com/mklimuk/magneto/adapter"
	"github.com/mklimuk/magneto/cmd/magneto/console"
	"github.com/urfave/cli/v2"
)

var adapterCmd = cli.Command{
	Name:  "adapter",
	Usage: "MCP2221 bridge operations",
	Subcommands: []*cli.Command{
		{
			Name:  "status",
			Usage: "show the I2C engine status",
			Action: func(c *cli.Context) error {
				bridge := adapter.NewMCP2221()
				status, err := bridge.Status(context.Background())
				if err != nil {
					return console.Exit(1, "status error: %s", console.Red(err))
				}
				console.Printf("address: %s\n", console.White(status.CurrentAddress))
				console.Printf("speed divider: %s\n", console.White(status.I2CSpeedDivider))
				console.Printf("timeout: %s\n", console.White(status.I2CTimeout))
				console.Printf("buffer counter: %s\n", console.White(status.I2CDataBufferCounter))
				console.Printf("read pending: %s\n", console.White(status.ReadPending))
				return nil
			},
		},
		{
			Name:  "release",
			Usage: "cancel pending transfers and free the I2C engine",
			Action: func(c *cli.Context) error {
				bridge := adapter.NewMCP2221()
				if err := bridge.Release(context.Background()); err != nil {
					return console.Exit(1, "release error: %s", console.Red(err))
				}
				console.Print("bus released")
				return nil
			},
		},
	},
}
