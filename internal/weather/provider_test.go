package weather

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upperLabels struct{}

func (upperLabels) T(key string) string { return "<" + key + ">" }

func TestByLocationRanges(t *testing.T) {
	p := NewMockProvider(0, 3)
	for i := 0; i < 50; i++ {
		s, err := p.ByLocation(context.Background(), "  Pune ", upperLabels{})
		require.NoError(t, err)
		assert.Equal(t, "Pune", s.Location)
		assert.InDelta(t, 25, s.Temperature, 10)
		assert.InDelta(t, 65, s.Humidity, 25)
		assert.InDelta(t, 15.5, s.WindSpeed, 12.5)
		assert.InDelta(t, 10, s.Visibility, 5)
		assert.InDelta(t, 6, s.UVIndex, 4)
		assert.Equal(t, "<partlyCloudy>", s.Condition)
	}
}

func TestByCoordinatesLabelAndRanges(t *testing.T) {
	p := NewMockProvider(0, 9)
	s, err := p.ByCoordinates(context.Background(), 18.5204, 73.8567, nil)
	require.NoError(t, err)
	assert.Equal(t, "Lat: 18.52, Lon: 73.86", s.Location)
	assert.InDelta(t, 27.5, s.Temperature, 7.5)
	assert.InDelta(t, 70, s.Humidity, 20)
	assert.Equal(t, "partlyCloudy", s.Condition, "nil labeler returns keys")
}

func TestValidation(t *testing.T) {
	p := NewMockProvider(time.Hour, 1)

	_, err := p.ByLocation(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, ErrLocationRequired)

	_, err = p.ByCoordinates(context.Background(), 91, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)

	_, err = p.ByCoordinates(context.Background(), math.NaN(), 0, nil)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
}

func TestCancellation(t *testing.T) {
	p := NewMockProvider(time.Hour, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.ByLocation(ctx, "Pune", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestForecastTipsSummary(t *testing.T) {
	f := Forecast(upperLabels{})
	require.Len(t, f, 5)
	assert.Equal(t, "<wednesday>", f[2].Day)
	assert.Equal(t, 80, f[2].RainChance)

	tips := Tips(nil)
	require.Len(t, tips, 3)
	assert.Equal(t, "high", tips[1].Priority)
	assert.Equal(t, "pestAlert", tips[1].Title)

	s := Summary(nil)
	assert.Equal(t, "friday", s.BestPlantingDay)
	assert.Equal(t, "reduced", s.IrrigationNeeded)
}
