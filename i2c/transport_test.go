package i2c

import (
	"context"
	"errors"
	"testing"

	"github.com/mklimuk/magneto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBus models a chip's register map behind plain addressed writes and
// reads: a one-byte write sets the register pointer, a two-byte write is a
// register write, reads stream from the pointer.
type fakeBus struct {
	regs    [0x40]byte
	pointer byte
	address byte
	writes  [][]byte
	err     error
}

func (b *fakeBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	if b.err != nil {
		return b.err
	}
	b.address = address
	b.writes = append(b.writes, append([]byte{}, buffer...))
	b.pointer = buffer[0]
	if len(buffer) == 2 {
		b.regs[buffer[0]] = buffer[1]
	}
	return nil
}

func (b *fakeBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	if b.err != nil {
		return b.err
	}
	b.address = address
	copy(buffer, b.regs[b.pointer:])
	return nil
}

func (b *fakeBus) Release(ctx context.Context) error {
	return nil
}

// transferBus adds the combined write-then-read transaction.
type transferBus struct {
	fakeBus
	transfers int
}

func (b *transferBus) TransferToAddr(ctx context.Context, address byte, w, r []byte) error {
	if b.err != nil {
		return b.err
	}
	b.address = address
	b.transfers++
	copy(r, b.regs[w[0]:])
	return nil
}

func TestTransport_WriteFraming(t *testing.T) {
	bus := &fakeBus{}
	transport := NewTransport(bus)

	require.NoError(t, transport.WriteRegister(context.Background(), 0x01, 0x20))

	assert.Equal(t, byte(DefaultAddress), bus.address)
	require.Len(t, bus.writes, 1)
	assert.Equal(t, []byte{0x01, 0x20}, bus.writes[0])
}

func TestTransport_RoundTrip(t *testing.T) {
	bus := &fakeBus{}
	transport := NewTransport(bus)
	ctx := context.Background()

	require.NoError(t, transport.WriteRegister(ctx, 0x02, 0x5A))
	buf := make([]byte, 1)
	require.NoError(t, transport.ReadBlock(ctx, 0x02, buf))

	assert.Equal(t, byte(0x5A), buf[0])
	// pointer write then read
	assert.Equal(t, []byte{0x02}, bus.writes[len(bus.writes)-1])
}

func TestTransport_ReadBlockCombined(t *testing.T) {
	bus := &transferBus{}
	copy(bus.regs[0x03:], []byte{1, 2, 3, 4, 5, 6})
	transport := NewTransport(bus)

	buf := make([]byte, 6)
	require.NoError(t, transport.ReadBlock(context.Background(), 0x03, buf))

	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, buf)
	// one combined transaction, no separate pointer write
	assert.Equal(t, 1, bus.transfers)
	assert.Empty(t, bus.writes)
}

func TestTransport_Address(t *testing.T) {
	bus := &fakeBus{}
	transport := NewTransport(bus, WithAddress(0x1C))

	require.NoError(t, transport.WriteRegister(context.Background(), 0x00, 0x00))

	assert.Equal(t, byte(0x1C), bus.address)
}

func TestTransport_CommError(t *testing.T) {
	cause := errors.New("bus stuck")
	bus := &fakeBus{err: cause}
	transport := NewTransport(bus)

	err := transport.WriteRegister(context.Background(), 0x00, 0x00)

	var comm *magneto.CommError
	assert.ErrorAs(t, err, &comm)
	assert.ErrorIs(t, err, cause)
}
