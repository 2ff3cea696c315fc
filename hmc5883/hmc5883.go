package hmc5883

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mklimuk/magneto"
)

// ErrNoTemperature is returned by ReadTemperature on parts without a
// temperature sensor.
var ErrNoTemperature = errors.New("hmc5883: no temperature sensor on this part")

// ErrUnsupportedDataRate is returned when a requested rate exceeds what the
// part accepts (220 Hz is HMC5983 only).
var ErrUnsupportedDataRate = errors.New("hmc5883: data rate not supported by this part")

type config struct {
	chip        Chip
	gain        Gain
	rate        DataRate
	averaging   Averaging
	mode        Mode
	tempEnabled bool
	singleShot  bool
	rangeCheck  bool
	settle      time.Duration
}

type Option func(*config)

// WithChip selects the part variant; the default is HMC5983.
func WithChip(chip Chip) Option {
	return func(c *config) {
		c.chip = chip
	}
}

func WithGain(gain Gain) Option {
	return func(c *config) {
		c.gain = gain
	}
}

func WithDataRate(rate DataRate) Option {
	return func(c *config) {
		c.rate = rate
	}
}

func WithAveraging(averaging Averaging) Option {
	return func(c *config) {
		c.averaging = averaging
	}
}

func WithTemperatureEnabled(enabled bool) Option {
	return func(c *config) {
		c.tempEnabled = enabled
	}
}

// WithSingleShot leaves the part idle between reads; every ReadSample
// triggers one measurement and waits the chip's conversion time.
func WithSingleShot() Option {
	return func(c *config) {
		c.singleShot = true
	}
}

// WithRangeCheck rejects samples outside the chip's documented dynamic
// range with magneto.ErrOutOfRange. Off by default.
func WithRangeCheck() Option {
	return func(c *config) {
		c.rangeCheck = true
	}
}

// WithSettleDelay overrides the post-configuration settle wait.
func WithSettleDelay(d time.Duration) Option {
	return func(c *config) {
		c.settle = d
	}
}

// Device is an unidentified magnetometer behind a register transport. Init
// is the only operation; sampling becomes available on the *Magnetometer it
// returns once the chip identity and configuration are confirmed.
type Device struct {
	transport magneto.RegisterTransport
	config    config
}

// New wraps a register transport. The transport (and the bus behind it) is
// owned exclusively by the returned device.
//
// Typical usage:
//
//	dev := hmc5883.New(i2c.NewTransport(bus))
//	mag, err := dev.Init(ctx)
//	x, y, z, err := mag.ReadSample(ctx)
func New(transport magneto.RegisterTransport, opts ...Option) *Device {
	c := config{
		chip:        HMC5983,
		gain:        Gain820,
		rate:        DataRate30Hz,
		averaging:   Average8,
		mode:        ModeNormal,
		tempEnabled: true,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.settle == 0 {
		c.settle = c.chip.SettleDelay
	}
	// the temperature enable bit is reserved on parts without the sensor
	if !c.chip.HasTemperature {
		c.tempEnabled = false
	}
	return &Device{transport: transport, config: c}
}

// Identity reads the raw identity registers without initializing the part.
func (d *Device) Identity(ctx context.Context) ([3]byte, error) {
	var id [3]byte
	if err := d.transport.ReadBlock(ctx, regIDA, id[:]); err != nil {
		return id, fmt.Errorf("hmc5883: identity read failed: %w", err)
	}
	return id, nil
}

// Init validates the chip identity and applies the configured measurement
// setup: configuration register A (mode, rate, averaging, temperature
// enable), register B (gain, confirmed by read-back) and the operating mode
// register. It then blocks for the settle interval so the first sample can
// be trusted. No configuration register is touched when the identity check
// fails.
func (d *Device) Init(ctx context.Context) (*Magnetometer, error) {
	id, err := d.Identity(ctx)
	if err != nil {
		return nil, err
	}
	if id != d.config.chip.Identity {
		return nil, fmt.Errorf("hmc5883: identity %#x %#x %#x does not match %s: %w",
			id[0], id[1], id[2], d.config.chip.Name, magneto.ErrUnknownChipID)
	}
	m := &Magnetometer{
		transport: d.transport,
		config:    d.config,
	}
	err = m.SetMeasurementConfig(ctx, d.config.mode, d.config.rate, d.config.averaging, d.config.tempEnabled)
	if err != nil {
		return nil, err
	}
	if err = m.SetGain(ctx, d.config.gain); err != nil {
		return nil, err
	}
	op := byte(opContinuous)
	if d.config.singleShot {
		op = opIdle
	}
	if err = m.transport.WriteRegister(ctx, regMode, op); err != nil {
		return nil, fmt.Errorf("hmc5883: mode register write failed: %w", err)
	}
	if err = sleep(ctx, d.config.settle); err != nil {
		return nil, err
	}
	return m, nil
}

// Magnetometer is an identified, configured part. Instances are only
// produced by (*Device).Init, so a sampling call on an unverified chip is
// not representable.
type Magnetometer struct {
	transport magneto.RegisterTransport
	config    config
}

// SetGain writes the gain to configuration register B and confirms it by
// reading the register back. A read-back that differs bit-for-bit fails
// with magneto.ErrConfiguration.
func (m *Magnetometer) SetGain(ctx context.Context, gain Gain) error {
	if err := m.transport.WriteRegister(ctx, regConfigB, byte(gain)); err != nil {
		return fmt.Errorf("hmc5883: gain write failed: %w", err)
	}
	confirm, err := m.readRegister(ctx, regConfigB)
	if err != nil {
		return fmt.Errorf("hmc5883: gain read-back failed: %w", err)
	}
	if confirm != byte(gain) {
		return fmt.Errorf("hmc5883: gain wrote %#x, read %#x: %w", byte(gain), confirm, magneto.ErrConfiguration)
	}
	m.config.gain = gain
	return nil
}

// SetMeasurementConfig composes configuration register A from the four
// fields and writes it in one transaction.
func (m *Magnetometer) SetMeasurementConfig(ctx context.Context, mode Mode, rate DataRate, averaging Averaging, tempEnabled bool) error {
	if rate > m.config.chip.MaxDataRate {
		return fmt.Errorf("hmc5883: rate %#b on %s: %w", byte(rate), m.config.chip.Name, ErrUnsupportedDataRate)
	}
	err := m.transport.WriteRegister(ctx, regConfigA, composeConfigA(mode, rate, averaging, tempEnabled))
	if err != nil {
		return fmt.Errorf("hmc5883: measurement config write failed: %w", err)
	}
	m.config.mode = mode
	m.config.rate = rate
	m.config.averaging = averaging
	m.config.tempEnabled = tempEnabled
	return nil
}

// ReadSample returns the latest field sample in counts, X, Y, Z. In
// single-shot mode it first triggers a measurement and waits the chip's
// conversion time. With range checking enabled, samples beyond the
// documented dynamic range fail with magneto.ErrOutOfRange; the failure
// does not affect subsequent calls.
func (m *Magnetometer) ReadSample(ctx context.Context) (x, y, z int16, err error) {
	if m.config.singleShot {
		if err = m.transport.WriteRegister(ctx, regMode, opSingle); err != nil {
			return 0, 0, 0, fmt.Errorf("hmc5883: single measurement trigger failed: %w", err)
		}
		if err = sleep(ctx, m.config.chip.ConversionDelay); err != nil {
			return 0, 0, 0, err
		}
	}
	var buf [6]byte
	if err = m.transport.ReadBlock(ctx, regData, buf[:]); err != nil {
		return 0, 0, 0, fmt.Errorf("hmc5883: sample read failed: %w", err)
	}
	x = decodeAxis(buf[0], buf[1])
	y = decodeAxis(buf[2], buf[3])
	z = decodeAxis(buf[4], buf[5])
	if m.config.rangeCheck && !inRange(x, y, z, m.config.chip) {
		return 0, 0, 0, fmt.Errorf("hmc5883: sample (%d, %d, %d): %w", x, y, z, magneto.ErrOutOfRange)
	}
	return x, y, z, nil
}

// ReadTemperature returns the die temperature in whole degrees Celsius
// (HMC5983 only).
func (m *Magnetometer) ReadTemperature(ctx context.Context) (int16, error) {
	if !m.config.chip.HasTemperature {
		return 0, ErrNoTemperature
	}
	var buf [2]byte
	if err := m.transport.ReadBlock(ctx, regTempMSB, buf[:]); err != nil {
		return 0, fmt.Errorf("hmc5883: temperature read failed: %w", err)
	}
	// fixed point, 128 LSb per degree, offset 25°C
	raw := int16(uint16(buf[1]) | uint16(buf[0])<<8)
	return raw/128 + 25, nil
}

// Status reads the status register (ready and lock bits).
func (m *Magnetometer) Status(ctx context.Context) (byte, error) {
	return m.readRegister(ctx, regStatus)
}

// SelfTest runs one biased measurement (positive or negative excitation
// strap) and restores the previous measurement configuration afterwards.
// The returned counts reflect the bias field on top of the ambient one; the
// datasheet gives per-gain acceptance windows the caller can apply.
func (m *Magnetometer) SelfTest(ctx context.Context, positive bool) (x, y, z int16, err error) {
	bias := ModeNegativeBias
	if positive {
		bias = ModePositiveBias
	}
	prev := m.config
	if err = m.SetMeasurementConfig(ctx, bias, prev.rate, prev.averaging, prev.tempEnabled); err != nil {
		return 0, 0, 0, err
	}
	defer func() {
		restoreErr := m.SetMeasurementConfig(ctx, prev.mode, prev.rate, prev.averaging, prev.tempEnabled)
		if err == nil && restoreErr != nil {
			err = restoreErr
		}
		if prev.singleShot {
			// the chip drops back to idle on its own after a single measurement
			return
		}
		if modeErr := m.transport.WriteRegister(ctx, regMode, opContinuous); modeErr != nil {
			modeErr = fmt.Errorf("hmc5883: mode restore failed: %w", modeErr)
			if err == nil {
				err = modeErr
			}
		}
	}()
	if err = m.transport.WriteRegister(ctx, regMode, opSingle); err != nil {
		return 0, 0, 0, fmt.Errorf("hmc5883: self test trigger failed: %w", err)
	}
	if err = sleep(ctx, m.config.chip.ConversionDelay); err != nil {
		return 0, 0, 0, err
	}
	var buf [6]byte
	if err = m.transport.ReadBlock(ctx, regData, buf[:]); err != nil {
		return 0, 0, 0, fmt.Errorf("hmc5883: self test read failed: %w", err)
	}
	return decodeAxis(buf[0], buf[1]), decodeAxis(buf[2], buf[3]), decodeAxis(buf[4], buf[5]), nil
}

func (m *Magnetometer) readRegister(ctx context.Context, reg byte) (byte, error) {
	var buf [1]byte
	if err := m.transport.ReadBlock(ctx, reg, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// decodeAxis combines the low and high byte of an axis into a signed value.
func decodeAxis(lo, hi byte) int16 {
	return int16(uint16(lo) | uint16(hi)<<8)
}

func inRange(x, y, z int16, chip Chip) bool {
	return abs(x) <= chip.MaxXY && abs(y) <= chip.MaxXY && abs(z) <= chip.MaxZ
}

func abs(v int16) int16 {
	if v < 0 {
		return -v
	}
	return v
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
