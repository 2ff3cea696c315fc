package magneto

import (
	"errors"
	"fmt"
)

// ErrUnknownChipID is returned when the identity registers do not match any
// expected product ID. Initialization stops before any configuration write.
var ErrUnknownChipID = errors.New("unrecognized chip identity")

// ErrConfiguration is returned when a write-then-verify register round trip
// does not read back the written value.
var ErrConfiguration = errors.New("configuration read-back mismatch")

// ErrOutOfRange is returned when a decoded sample exceeds the chip's
// documented dynamic range. Only the failing call is affected.
var ErrOutOfRange = errors.New("sample outside dynamic range")

// CommError wraps a bus-level transaction failure. The payload is
// bus-implementation-defined and is never interpreted by the driver core.
type CommError struct {
	Cause error
}

func (e *CommError) Error() string {
	return fmt.Sprintf("bus communication failed: %s", e.Cause)
}

func (e *CommError) Unwrap() error {
	return e.Cause
}

// PinError wraps a chip-select control failure (SPI transports only).
type PinError struct {
	Cause error
}

func (e *PinError) Error() string {
	return fmt.Sprintf("chip select control failed: %s", e.Cause)
}

func (e *PinError) Unwrap() error {
	return e.Cause
}
