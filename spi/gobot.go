package spi

import (
	"context"
	"fmt"

	"github.com/mklimuk/magneto"
	"gobot.io/x/gobot/v2/drivers/spi"
)

var _ magneto.RegisterTransport = &GobotTransport{}

// GobotTransport applies the same register framing over a Gobot SPI adaptor.
// Chip select is owned by the platform's SPI controller, so unlike Transport
// there is no pin to drive and no PinError path.
type GobotTransport struct {
	driver *spi.Driver
}

// NewGobotTransport binds the transport to a Gobot SPI adaptor. bus and
// additional options follow the platform's numbering, as with other Gobot
// SPI drivers. HMC5983 requires mode 3 and tolerates up to 8 MHz.
func NewGobotTransport(adaptor spi.Connector, bus string, opts ...func(spi.Config)) *GobotTransport {
	d := spi.NewDriver(adaptor, bus, opts...)
	d.SetMode(3)
	if d.GetSpeedOrDefault(0) == 0 {
		d.SetSpeed(4_000_000)
	}
	return &GobotTransport{driver: d}
}

// Start establishes the SPI bus. Must be called before any register access.
func (t *GobotTransport) Start() error {
	return t.driver.Start()
}

// Halt releases the bus.
func (t *GobotTransport) Halt() error {
	return t.driver.Halt()
}

func (t *GobotTransport) ops() (spiOps, error) {
	conn := t.driver.Connection()
	ops, ok := conn.(spiOps)
	if !ok {
		return nil, fmt.Errorf("spi connection does not support required operations")
	}
	return ops, nil
}

// spiOps is the subset of operations needed from the Gobot SPI connection.
type spiOps interface {
	ReadCommandData(command []byte, data []byte) error
	WriteBytes(data []byte) error
}

func (t *GobotTransport) WriteRegister(ctx context.Context, reg byte, value byte) error {
	ops, err := t.ops()
	if err != nil {
		return &magneto.CommError{Cause: err}
	}
	if err := ops.WriteBytes([]byte{reg &^ flagRead, value}); err != nil {
		return &magneto.CommError{Cause: err}
	}
	return nil
}

func (t *GobotTransport) ReadBlock(ctx context.Context, reg byte, buffer []byte) error {
	if len(buffer) == 0 || len(buffer) > BlockLen {
		return fmt.Errorf("block length %d outside 1..%d", len(buffer), BlockLen)
	}
	ops, err := t.ops()
	if err != nil {
		return &magneto.CommError{Cause: err}
	}
	frame := reg | flagRead
	if len(buffer) > 1 {
		frame |= flagAutoIncrement
	}
	// The controller clocks the command byte out first, so the echo byte the
	// manual-CS transport has to discard never reaches us here.
	if err := ops.ReadCommandData([]byte{frame}, buffer); err != nil {
		return &magneto.CommError{Cause: err}
	}
	return nil
}
