package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/mklimuk/magneto"
	"github.com/mklimuk/magneto/adapter"
	"github.com/mklimuk/magneto/hmc5883"
	"github.com/mklimuk/magneto/i2c"
	"github.com/mklimuk/magneto/spi"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
)

// Config holds CLI defaults loaded from a yaml file. Every field can be
// overridden per command with flags.
type Config struct {
	// mcp2221, i2c or spi
	Adapter string `yaml:"adapter"`
	// bus name: /dev/i2c-1, SPI0.0, ...
	Bus string `yaml:"bus"`
	// 7-bit I2C address; 0 means the chip default
	Address byte `yaml:"address"`
	// chip select pin name for the spi adapter
	CSPin string `yaml:"cs_pin"`
	// hmc5983 (default) or hmc5883l
	Chip string `yaml:"chip"`
	Gain string `yaml:"gain"`
	Rate string `yaml:"rate"`
}

func loadConfig(path string) (Config, error) {
	cfg := Config{
		Adapter: "mcp2221",
		Chip:    "hmc5983",
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("could not read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("could not parse config file %s: %w", path, err)
	}
	return cfg, nil
}

func configFromFlags(c *cli.Context) (Config, error) {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return cfg, err
	}
	if c.IsSet("adapter") {
		cfg.Adapter = c.String("adapter")
	}
	if c.IsSet("bus") {
		cfg.Bus = c.String("bus")
	}
	if c.IsSet("chip") {
		cfg.Chip = c.String("chip")
	}
	return cfg, nil
}

// openTransport builds the register transport described by the config. The
// returned release func closes whatever bus resource was opened.
func openTransport(cfg Config) (magneto.RegisterTransport, func(), error) {
	switch cfg.Adapter {
	case "mcp2221":
		bridge := adapter.NewMCP2221()
		if err := bridge.Init(); err != nil {
			return nil, nil, fmt.Errorf("adapter initialization error: %w", err)
		}
		return i2cTransport(bridge, cfg), func() {}, nil
	case "i2c":
		bus, err := i2c.NewGenericBus(cfg.Bus)
		if err != nil {
			return nil, nil, err
		}
		return i2cTransport(bus, cfg), func() { _ = bus.Close() }, nil
	case "spi":
		port, err := spireg.Open(cfg.Bus)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open spi port %s: %w", cfg.Bus, err)
		}
		cs := gpioreg.ByName(cfg.CSPin)
		if cs == nil {
			_ = port.Close()
			return nil, nil, fmt.Errorf("unknown chip select pin %q", cfg.CSPin)
		}
		transport, err := spi.NewTransport(port, cs)
		if err != nil {
			_ = port.Close()
			return nil, nil, err
		}
		return transport, func() { _ = port.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown adapter %q", cfg.Adapter)
	}
}

func i2cTransport(bus magneto.I2CBus, cfg Config) *i2c.Transport {
	if cfg.Address != 0 {
		return i2c.NewTransport(bus, i2c.WithAddress(cfg.Address))
	}
	return i2c.NewTransport(bus)
}

func chipOptions(cfg Config) ([]hmc5883.Option, error) {
	var opts []hmc5883.Option
	switch cfg.Chip {
	case "", "hmc5983":
	case "hmc5883l":
		opts = append(opts, hmc5883.WithChip(hmc5883.HMC5883L), hmc5883.WithTemperatureEnabled(false))
	default:
		return nil, fmt.Errorf("unknown chip %q", cfg.Chip)
	}
	if cfg.Gain != "" {
		gain, ok := gains[cfg.Gain]
		if !ok {
			return nil, fmt.Errorf("unknown gain %q", cfg.Gain)
		}
		opts = append(opts, hmc5883.WithGain(gain))
	}
	if cfg.Rate != "" {
		rate, ok := rates[cfg.Rate]
		if !ok {
			return nil, fmt.Errorf("unknown data rate %q", cfg.Rate)
		}
		opts = append(opts, hmc5883.WithDataRate(rate))
	}
	return opts, nil
}

// gain keys are the field range in Gauss
var gains = map[string]hmc5883.Gain{
	"0.88": hmc5883.Gain1370,
	"1.3":  hmc5883.Gain1090,
	"1.9":  hmc5883.Gain820,
	"2.5":  hmc5883.Gain660,
	"4.0":  hmc5883.Gain440,
	"4.7":  hmc5883.Gain390,
	"5.6":  hmc5883.Gain330,
	"8.1":  hmc5883.Gain230,
}

// rate keys are in Hz
var rates = map[string]hmc5883.DataRate{
	"0.75": hmc5883.DataRate0_75Hz,
	"1.5":  hmc5883.DataRate1_5Hz,
	"3":    hmc5883.DataRate3Hz,
	"7.5":  hmc5883.DataRate7_5Hz,
	"15":   hmc5883.DataRate15Hz,
	"30":   hmc5883.DataRate30Hz,
	"75":   hmc5883.DataRate75Hz,
	"220":  hmc5883.DataRate220Hz,
}
