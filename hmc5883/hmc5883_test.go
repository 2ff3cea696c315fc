package hmc5883

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mklimuk/magneto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// registerFile models the chip's register map without any bus semantics.
// Writes land in regs and are recorded in order; reads copy consecutive
// registers out, like the auto-incrementing hardware does.
type registerFile struct {
	regs        [0x40]byte
	writes      []byte
	corruptGain bool
}

func newRegisterFile() *registerFile {
	f := &registerFile{}
	copy(f.regs[regIDA:], []byte{'H', '4', '3'})
	return f
}

func (f *registerFile) WriteRegister(ctx context.Context, reg byte, value byte) error {
	f.regs[reg] = value
	f.writes = append(f.writes, reg)
	return nil
}

func (f *registerFile) ReadBlock(ctx context.Context, reg byte, buffer []byte) error {
	copy(buffer, f.regs[reg:])
	if f.corruptGain && reg == regConfigB {
		buffer[0] ^= 0xFF
	}
	return nil
}

func (f *registerFile) setSample(x, y, z int16) {
	for i, v := range []int16{x, y, z} {
		f.regs[regData+2*i] = byte(v)
		f.regs[regData+2*i+1] = byte(uint16(v) >> 8)
	}
}

func initialized(t *testing.T, f *registerFile, opts ...Option) *Magnetometer {
	t.Helper()
	opts = append(opts, WithSettleDelay(time.Millisecond))
	mag, err := New(f, opts...).Init(context.Background())
	require.NoError(t, err)
	return mag
}

// MockTransport is a mock implementation of magneto.RegisterTransport using
// testify/mock, for transports that must fail in controlled ways.
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) WriteRegister(ctx context.Context, reg byte, value byte) error {
	args := m.Called(ctx, reg, value)
	return args.Error(0)
}

func (m *MockTransport) ReadBlock(ctx context.Context, reg byte, buffer []byte) error {
	args := m.Called(ctx, reg, buffer)
	if data, ok := args.Get(0).([]byte); ok && len(data) <= len(buffer) {
		copy(buffer, data)
	}
	return args.Error(1)
}

func TestRegisterFile_RoundTrip(t *testing.T) {
	// write followed by a one-byte read returns the written byte, for every
	// register the driver touches
	f := newRegisterFile()
	ctx := context.Background()
	for _, reg := range []byte{regConfigA, regConfigB, regMode} {
		require.NoError(t, f.WriteRegister(ctx, reg, 0x5A))
		buf := make([]byte, 1)
		require.NoError(t, f.ReadBlock(ctx, reg, buf))
		assert.Equal(t, byte(0x5A), buf[0])
	}
}

func TestDecodeAxis(t *testing.T) {
	tests := []struct {
		lo, hi   byte
		expected int16
	}{
		{0x00, 0x00, 0},
		{0x34, 0x12, 0x1234},
		{0xFF, 0x7F, 32767},
		{0x00, 0x80, -32768},
		{0xFF, 0xFF, -1},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, decodeAxis(test.lo, test.hi))
	}
}

func TestComposeConfigA(t *testing.T) {
	tests := []struct {
		name        string
		mode        Mode
		rate        DataRate
		averaging   Averaging
		tempEnabled bool
		expected    byte
	}{
		{"power-on default", ModeNormal, DataRate15Hz, Average8, false, 0x70},
		{"temp enabled 30Hz", ModeNormal, DataRate30Hz, Average8, true, 0b11110100},
		{"positive bias single sample", ModePositiveBias, DataRate0_75Hz, Average1, false, 0b00000001},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, composeConfigA(test.mode, test.rate, test.averaging, test.tempEnabled))
		})
	}
}

func TestInit_ConfiguresChip(t *testing.T) {
	f := newRegisterFile()
	initialized(t, f, WithGain(Gain820), WithDataRate(DataRate30Hz), WithAveraging(Average8), WithTemperatureEnabled(true))

	assert.Equal(t, composeConfigA(ModeNormal, DataRate30Hz, Average8, true), f.regs[regConfigA])
	assert.Equal(t, byte(Gain820), f.regs[regConfigB])
	assert.Equal(t, byte(opContinuous), f.regs[regMode])
}

func TestInit_UnknownChipID(t *testing.T) {
	f := newRegisterFile()
	copy(f.regs[regIDA:], []byte{0x00, 0x12, 0x34})

	_, err := New(f, WithSettleDelay(time.Millisecond)).Init(context.Background())

	assert.ErrorIs(t, err, magneto.ErrUnknownChipID)
	// no partial configuration on identification failure
	assert.Empty(t, f.writes)
}

func TestInit_GainReadBackMismatch(t *testing.T) {
	f := newRegisterFile()
	f.corruptGain = true

	_, err := New(f, WithSettleDelay(time.Millisecond)).Init(context.Background())

	assert.ErrorIs(t, err, magneto.ErrConfiguration)
}

func TestInit_CommError(t *testing.T) {
	transport := new(MockTransport)
	cause := errors.New("i2c read failed")
	transport.On("ReadBlock", mock.Anything, byte(regIDA), mock.Anything).
		Return(nil, &magneto.CommError{Cause: cause}).Once()

	_, err := New(transport, WithSettleDelay(time.Millisecond)).Init(context.Background())

	var comm *magneto.CommError
	assert.ErrorAs(t, err, &comm)
	assert.ErrorIs(t, err, cause)
	transport.AssertExpectations(t)
}

func TestSetGain(t *testing.T) {
	f := newRegisterFile()
	mag := initialized(t, f)
	ctx := context.Background()

	require.NoError(t, mag.SetGain(ctx, Gain820))
	assert.Equal(t, byte(0b01000000), f.regs[regConfigB])

	// a transport returning a different byte on read-back must fail, not
	// succeed silently
	f.corruptGain = true
	err := mag.SetGain(ctx, Gain1090)
	assert.ErrorIs(t, err, magneto.ErrConfiguration)
}

func TestSetMeasurementConfig_UnsupportedRate(t *testing.T) {
	f := newRegisterFile()
	mag := initialized(t, f, WithChip(HMC5883L), WithTemperatureEnabled(false))

	err := mag.SetMeasurementConfig(context.Background(), ModeNormal, DataRate220Hz, Average1, false)

	assert.ErrorIs(t, err, ErrUnsupportedDataRate)
}

func TestReadSample(t *testing.T) {
	f := newRegisterFile()
	f.setSample(120, -340, 560)
	mag := initialized(t, f)
	ctx := context.Background()

	x, y, z, err := mag.ReadSample(ctx)
	require.NoError(t, err)
	assert.Equal(t, int16(120), x)
	assert.Equal(t, int16(-340), y)
	assert.Equal(t, int16(560), z)

	// identical raw bytes decode to identical triples
	x2, y2, z2, err := mag.ReadSample(ctx)
	require.NoError(t, err)
	assert.Equal(t, [3]int16{x, y, z}, [3]int16{x2, y2, z2})
}

func TestReadSample_RangeCheck(t *testing.T) {
	f := newRegisterFile()
	f.setSample(0, HMC5983.MaxXY+1, 0)
	mag := initialized(t, f, WithRangeCheck())
	ctx := context.Background()

	_, _, _, err := mag.ReadSample(ctx)
	assert.ErrorIs(t, err, magneto.ErrOutOfRange)

	// an out-of-range sample fails only its own call
	f.setSample(10, 20, 30)
	x, y, z, err := mag.ReadSample(ctx)
	require.NoError(t, err)
	assert.Equal(t, [3]int16{10, 20, 30}, [3]int16{x, y, z})
}

func TestReadSample_SingleShot(t *testing.T) {
	f := newRegisterFile()
	f.setSample(1, 2, 3)
	mag := initialized(t, f, WithSingleShot())

	// idle between reads
	assert.Equal(t, byte(opIdle), f.regs[regMode])

	x, y, z, err := mag.ReadSample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [3]int16{1, 2, 3}, [3]int16{x, y, z})
	// the read triggered a single measurement first
	assert.Equal(t, byte(regMode), f.writes[len(f.writes)-1])
	assert.Equal(t, byte(opSingle), f.regs[regMode])
}

func TestReadTemperature(t *testing.T) {
	f := newRegisterFile()
	f.regs[regTempMSB] = 0x19
	f.regs[regTempMSB+1] = 0x00
	mag := initialized(t, f)

	temp, err := mag.ReadTemperature(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int16(75), temp)
}

func TestReadTemperature_Unsupported(t *testing.T) {
	f := newRegisterFile()
	mag := initialized(t, f, WithChip(HMC5883L), WithTemperatureEnabled(false))

	_, err := mag.ReadTemperature(context.Background())
	assert.ErrorIs(t, err, ErrNoTemperature)
}

func TestSelfTest_RestoresConfig(t *testing.T) {
	f := newRegisterFile()
	f.setSample(500, 500, 500)
	mag := initialized(t, f, WithDataRate(DataRate15Hz), WithAveraging(Average8), WithTemperatureEnabled(true))
	before := f.regs[regConfigA]

	x, y, z, err := mag.SelfTest(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, [3]int16{500, 500, 500}, [3]int16{x, y, z})
	assert.Equal(t, before, f.regs[regConfigA])
	// continuous sampling resumes after the biased measurement
	assert.Equal(t, byte(opContinuous), f.regs[regMode])
}

func TestSelfTest_SingleShotStaysIdle(t *testing.T) {
	f := newRegisterFile()
	f.setSample(500, 500, 500)
	mag := initialized(t, f, WithSingleShot())

	_, _, _, err := mag.SelfTest(context.Background(), false)
	require.NoError(t, err)
	// no continuous mode write for a device configured for triggered reads
	assert.Equal(t, byte(opSingle), f.regs[regMode])
}

func TestStatus(t *testing.T) {
	f := newRegisterFile()
	f.regs[regStatus] = StatusReady
	mag := initialized(t, f)

	status, err := mag.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, byte(StatusReady), status)
}
