package hmc5883

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMockMagnetometer(t *testing.T) {
	m := NewMockMagnetometer(
		func(ctx context.Context) (int16, int16, int16, error) { return 120, -340, 560, nil },
		func(ctx context.Context) (int16, error) { return 25, nil },
	)
	ctx := context.Background()

	x, y, z, err := m.ReadSample(ctx)
	assert.NoError(t, err)
	assert.Equal(t, [3]int16{120, -340, 560}, [3]int16{x, y, z})

	temp, err := m.ReadTemperature(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int16(25), temp)
}

func TestMockMagnetometer_Errors(t *testing.T) {
	sensorErr := errors.New("sensor offline")
	m := NewMockMagnetometer(
		func(ctx context.Context) (int16, int16, int16, error) { return 0, 0, 0, sensorErr },
		func(ctx context.Context) (int16, error) { return 0, sensorErr },
	)

	_, _, _, err := m.ReadSample(context.Background())
	assert.ErrorIs(t, err, sensorErr)
}
