package spi

import (
	"context"
	"fmt"

	"github.com/mklimuk/magneto"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Register address framing bits. The high bit selects read direction, the
// next bit requests register address auto-increment across a multi-byte
// transfer.
const (
	flagRead          = 0x80
	flagAutoIncrement = 0x40
)

// BlockLen is the largest register block a single transaction may span.
const BlockLen = 32

// txConn is the subset of spi.Conn the transport needs.
type txConn interface {
	Tx(w, r []byte) error
}

// csPin is the subset of gpio.PinOut the transport needs.
type csPin interface {
	Out(l gpio.Level) error
}

var _ magneto.RegisterTransport = &Transport{}

// Transport frames register-level operations over an SPI connection with an
// explicitly driven chip-select line. The line is asserted low before every
// transaction and deasserted high on every exit path, including errors, so
// the bus is never left held.
type Transport struct {
	conn txConn
	cs   csPin
	// one leading address byte plus the largest block
	tx [1 + BlockLen]byte
	rx [1 + BlockLen]byte
}

type PortOption func(*portConfig)

type portConfig struct {
	speed physic.Frequency
	mode  spi.Mode
}

// WithSpeed overrides the default 8 MHz clock.
func WithSpeed(speed physic.Frequency) PortOption {
	return func(c *portConfig) {
		c.speed = speed
	}
}

// WithMode overrides the default SPI mode 3 (CPOL=1, CPHA=1).
func WithMode(mode spi.Mode) PortOption {
	return func(c *portConfig) {
		c.mode = mode
	}
}

// NewTransport connects the port and returns a register transport driving cs
// around every transaction.
func NewTransport(port spi.Port, cs gpio.PinOut, opts ...PortOption) (*Transport, error) {
	config := portConfig{
		speed: 8 * physic.MegaHertz,
		mode:  spi.Mode3,
	}
	for _, opt := range opts {
		opt(&config)
	}
	conn, err := port.Connect(config.speed, config.mode, 8)
	if err != nil {
		return nil, fmt.Errorf("could not connect spi port: %w", err)
	}
	if err := cs.Out(gpio.High); err != nil {
		return nil, &magneto.PinError{Cause: err}
	}
	return &Transport{conn: conn, cs: cs}, nil
}

func (t *Transport) WriteRegister(ctx context.Context, reg byte, value byte) error {
	if err := t.cs.Out(gpio.Low); err != nil {
		return &magneto.PinError{Cause: err}
	}
	// write direction: high bit clear
	txErr := t.conn.Tx([]byte{reg &^ flagRead, value}, nil)
	csErr := t.cs.Out(gpio.High)
	if txErr != nil {
		return &magneto.CommError{Cause: txErr}
	}
	if csErr != nil {
		return &magneto.PinError{Cause: csErr}
	}
	return nil
}

func (t *Transport) ReadBlock(ctx context.Context, reg byte, buffer []byte) error {
	n := len(buffer)
	if n == 0 || n > BlockLen {
		return fmt.Errorf("block length %d outside 1..%d", n, BlockLen)
	}
	frame := reg | flagRead
	if n > 1 {
		frame |= flagAutoIncrement
	}
	t.tx[0] = frame
	for i := 1; i <= n; i++ {
		t.tx[i] = 0
	}
	if err := t.cs.Out(gpio.Low); err != nil {
		return &magneto.PinError{Cause: err}
	}
	txErr := t.conn.Tx(t.tx[:n+1], t.rx[:n+1])
	csErr := t.cs.Out(gpio.High)
	if txErr != nil {
		return &magneto.CommError{Cause: txErr}
	}
	if csErr != nil {
		return &magneto.PinError{Cause: csErr}
	}
	// rx[0] is clocked out while the address byte is shifted in; discard it.
	copy(buffer, t.rx[1:n+1])
	return nil
}
