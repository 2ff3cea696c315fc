package hmc5883

import (
	"context"
)

// SampleBehaviorFunc defines the function signature for field sample behavior.
// It returns X, Y, Z counts or an error.
type SampleBehaviorFunc func(ctx context.Context) (int16, int16, int16, error)

// TemperatureBehaviorFunc defines the function signature for temperature
// behavior. It returns the temperature in whole degrees Celsius or an error.
type TemperatureBehaviorFunc func(ctx context.Context) (int16, error)

// MockMagnetometer is a mock implementation of the magnetometer sampling
// surface that uses behavior functions to produce results without requiring
// any hardware.
type MockMagnetometer struct {
	sampleBehavior SampleBehaviorFunc
	tempBehavior   TemperatureBehaviorFunc
}

// NewMockMagnetometer creates a new mock magnetometer with the given
// behavior functions.
//
// Example usage:
//
//	m := NewMockMagnetometer(
//		func(ctx context.Context) (int16, int16, int16, error) { return 120, -340, 560, nil },
//		func(ctx context.Context) (int16, error) { return 25, nil },
//	)
func NewMockMagnetometer(sampleBehavior SampleBehaviorFunc, tempBehavior TemperatureBehaviorFunc) *MockMagnetometer {
	return &MockMagnetometer{
		sampleBehavior: sampleBehavior,
		tempBehavior:   tempBehavior,
	}
}

// ReadSample returns a field sample by calling the sample behavior function.
func (m *MockMagnetometer) ReadSample(ctx context.Context) (int16, int16, int16, error) {
	return m.sampleBehavior(ctx)
}

// ReadTemperature returns the temperature by calling the temperature
// behavior function.
func (m *MockMagnetometer) ReadTemperature(ctx context.Context) (int16, error) {
	return m.tempBehavior(ctx)
}
