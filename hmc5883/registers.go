package hmc5883

// Register map, shared by HMC5883L and HMC5983.
const (
	regConfigA = 0x00
	regConfigB = 0x01
	regMode    = 0x02
	// X/Y/Z output, six bytes, low byte first within each axis
	regData   = 0x03
	regStatus = 0x09
	// identity registers A..C, expected 'H', '4', '3'
	regIDA = 0x0A
	// temperature output, HMC5983 only
	regTempMSB = 0x31
)

// Mode register values.
const (
	opContinuous = 0x00
	opSingle     = 0x01
	opIdle       = 0x02
)

// Status register bits.
const (
	StatusReady = 0x01
	StatusLock  = 0x02
)

// Gain selects the sensitivity written to configuration register B. The
// value is the register byte itself (bits 7:5); the suffix is the
// sensitivity in LSb/Gauss.
type Gain byte

const (
	// ±0.88 Ga, 0.73 mGa/LSb
	Gain1370 Gain = 0b00000000
	// ±1.30 Ga, 0.92 mGa/LSb
	Gain1090 Gain = 0b00100000
	// ±1.90 Ga, 1.22 mGa/LSb
	Gain820 Gain = 0b01000000
	// ±2.50 Ga, 1.52 mGa/LSb
	Gain660 Gain = 0b01100000
	// ±4.00 Ga, 2.27 mGa/LSb
	Gain440 Gain = 0b10000000
	// ±4.70 Ga, 2.56 mGa/LSb
	Gain390 Gain = 0b10100000
	// ±5.60 Ga, 3.03 mGa/LSb
	Gain330 Gain = 0b11000000
	// ±8.10 Ga, 4.35 mGa/LSb
	Gain230 Gain = 0b11100000
)

// DataRate selects the continuous-measurement output rate (CRA bits 4:2).
type DataRate byte

const (
	DataRate0_75Hz DataRate = 0b000
	DataRate1_5Hz  DataRate = 0b001
	DataRate3Hz    DataRate = 0b010
	DataRate7_5Hz  DataRate = 0b011
	DataRate15Hz   DataRate = 0b100
	DataRate30Hz   DataRate = 0b101
	DataRate75Hz   DataRate = 0b110
	// HMC5983 only
	DataRate220Hz DataRate = 0b111
)

// Averaging selects how many samples are averaged per output (CRA bits 6:5).
type Averaging byte

const (
	Average1 Averaging = 0b00
	Average2 Averaging = 0b01
	Average4 Averaging = 0b10
	Average8 Averaging = 0b11
)

// Mode selects the measurement bias configuration (CRA bits 1:0).
type Mode byte

const (
	ModeNormal          Mode = 0b00
	ModePositiveBias    Mode = 0b01
	ModeNegativeBias    Mode = 0b10
	ModeTemperatureOnly Mode = 0b11
)

// composeConfigA builds the configuration register A byte. Fields occupy
// non-overlapping positions: temperature enable bit 7, averaging bits 6:5,
// data rate bits 4:2, measurement mode bits 1:0.
func composeConfigA(mode Mode, rate DataRate, averaging Averaging, tempEnabled bool) byte {
	v := byte(averaging&0b11)<<5 | byte(rate&0b111)<<2 | byte(mode&0b11)
	if tempEnabled {
		v |= 1 << 7
	}
	return v
}
