package i2c

import (
	"context"

	"github.com/mklimuk/magneto"
)

// DefaultAddress is the HMC5883/HMC5983 fixed 7-bit bus address.
const DefaultAddress = 0x1E

var _ magneto.RegisterTransport = &Transport{}

// Transport frames register-level operations for a chip at a fixed address
// on an I2C bus. A write is the two-byte payload [register, value]; a read
// sends [register] and then receives the requested number of bytes. Buses
// implementing magneto.AddressableTransferer get both halves of a read as
// one addressed transaction.
type Transport struct {
	bus     magneto.I2CBus
	address byte
}

type TransportOption func(*Transport)

// WithAddress overrides the default bus address, for parts with
// hardware-strap-selectable address lines.
func WithAddress(address byte) TransportOption {
	return func(t *Transport) {
		t.address = address
	}
}

func NewTransport(bus magneto.I2CBus, opts ...TransportOption) *Transport {
	t := &Transport{
		bus:     bus,
		address: DefaultAddress,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Transport) WriteRegister(ctx context.Context, reg byte, value byte) error {
	err := t.bus.WriteToAddr(ctx, t.address, []byte{reg, value})
	if err != nil {
		return &magneto.CommError{Cause: err}
	}
	return nil
}

func (t *Transport) ReadBlock(ctx context.Context, reg byte, buffer []byte) error {
	if tx, ok := t.bus.(magneto.AddressableTransferer); ok {
		if err := tx.TransferToAddr(ctx, t.address, []byte{reg}, buffer); err != nil {
			return &magneto.CommError{Cause: err}
		}
		return nil
	}
	// Fallback for adapters without combined transactions: set the register
	// pointer, then read.
	if err := t.bus.WriteToAddr(ctx, t.address, []byte{reg}); err != nil {
		return &magneto.CommError{Cause: err}
	}
	if err := t.bus.ReadFromAddr(ctx, t.address, buffer); err != nil {
		return &magneto.CommError{Cause: err}
	}
	return nil
}
