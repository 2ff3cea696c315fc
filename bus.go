package magneto

import (
	"context"
	"fmt"
)

var ErrBusBusy = fmt.Errorf("I2C engine is busy (command not completed)")

// RegisterTransport is the contract the driver core is written against.
// Both operations map to exactly one bus transaction.
type RegisterTransport interface {
	// WriteRegister writes a single byte to the register at reg.
	WriteRegister(ctx context.Context, reg byte, value byte) error
	// ReadBlock reads len(buffer) consecutive register bytes starting at reg,
	// in address-ascending order.
	ReadBlock(ctx context.Context, reg byte, buffer []byte) error
}

type AddressableReader interface {
	ReadFromAddr(ctx context.Context, address byte, buffer []byte) error
}

type AddressableWriter interface {
	WriteToAddr(ctx context.Context, address byte, buffer []byte) error
	Release(ctx context.Context) error
}

// AddressableTransferer performs a combined write-then-read as a single
// addressed transaction. Buses that support it (periph Tx) avoid the
// separate register pointer write.
type AddressableTransferer interface {
	TransferToAddr(ctx context.Context, address byte, w, r []byte) error
}

type I2CBus interface {
	AddressableReader
	AddressableWriter
}
