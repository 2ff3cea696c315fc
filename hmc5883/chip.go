package hmc5883

import "time"

// Chip describes a supported part. The two variants share the register map;
// they differ in the temperature sensor, the top data rate and timing.
type Chip struct {
	Name string
	// expected content of the identity registers at 0x0A
	Identity [3]byte
	// HMC5983 exposes a die temperature sensor at 0x31/0x32
	HasTemperature bool
	// highest data rate the part accepts
	MaxDataRate DataRate
	// wait after the initialization sequence before the first sample is
	// trusted
	SettleDelay time.Duration
	// minimum conversion time for a single-shot measurement
	ConversionDelay time.Duration
	// dynamic range limits in counts (datasheet: ±1600 µT on X/Y,
	// ±2500 µT on Z at 0.3 µT/LSb)
	MaxXY int16
	MaxZ  int16
}

var HMC5883L = Chip{
	Name:            "HMC5883L",
	Identity:        [3]byte{'H', '4', '3'},
	MaxDataRate:     DataRate75Hz,
	SettleDelay:     100 * time.Millisecond,
	ConversionDelay: 7 * time.Millisecond,
	MaxXY:           5334,
	MaxZ:            8334,
}

var HMC5983 = Chip{
	Name:            "HMC5983",
	Identity:        [3]byte{'H', '4', '3'},
	HasTemperature:  true,
	MaxDataRate:     DataRate220Hz,
	SettleDelay:     100 * time.Millisecond,
	ConversionDelay: 7 * time.Millisecond,
	MaxXY:           5334,
	MaxZ:            8334,
}
