package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yannickvh/ctrade/internal/domain"
)

func TestPacedData_PassesStreamThrough(t *testing.T) {
	inner := NewSliceData([]domain.MarketState{kline(1000, 1), kline(2000, 2)})
	paced, err := NewPacedData(context.Background(), inner, 10000) // effectively unpaced
	require.NoError(t, err)

	var seen []int64
	for paced.Next() {
		seen = append(seen, paced.Current().Timestamp)
	}
	assert.Equal(t, []int64{1000, 2000}, seen)
	assert.NoError(t, paced.Err())
}

func TestPacedData_Throttles(t *testing.T) {
	inner := NewSliceData([]domain.MarketState{kline(1000, 1), kline(2000, 2), kline(3000, 3)})
	paced, err := NewPacedData(context.Background(), inner, 50) // 20ms per bar
	require.NoError(t, err)

	start := time.Now()
	count := 0
	for paced.Next() {
		count++
	}
	require.Equal(t, 3, count)
	// Burst of 1, so at least two 20ms waits.
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestPacedData_CancelledContextEndsStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inner := NewSliceData([]domain.MarketState{kline(1000, 1)})
	paced, err := NewPacedData(ctx, inner, 1) // slow enough to always wait
	require.NoError(t, err)

	// The limiter's burst token may admit the first bar; the cancelled
	// context must stop the stream no later than the second Next.
	for paced.Next() {
	}
	assert.ErrorIs(t, paced.Err(), context.Canceled)
}

func TestPacedData_RejectsNonPositiveRate(t *testing.T) {
	inner := NewSliceData(nil)
	_, err := NewPacedData(context.Background(), inner, 0)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
