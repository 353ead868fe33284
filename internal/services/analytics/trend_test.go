package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrend(t *testing.T) {
	t.Run("growth", func(t *testing.T) {
		change := Trend(150, 100)
		require.NotNil(t, change)
		assert.InDelta(t, 50.0, *change, 1e-9)
	})

	t.Run("decline", func(t *testing.T) {
		change := Trend(80, 100)
		require.NotNil(t, change)
		assert.InDelta(t, -20.0, *change, 1e-9)
	})

	t.Run("zero baseline yields nil, never a division", func(t *testing.T) {
		assert.Nil(t, Trend(120, 0))
	})

	t.Run("both zero", func(t *testing.T) {
		assert.Nil(t, Trend(0, 0))
	})
}

func TestMetricTrend(t *testing.T) {
	mt := MetricTrend(150, 100)
	assert.Equal(t, 150.0, mt.Current)
	assert.Equal(t, 100.0, mt.Previous)
	require.NotNil(t, mt.ChangePct)
	assert.InDelta(t, 50.0, *mt.ChangePct, 1e-9)

	flat := MetricTrend(10, 0)
	assert.Nil(t, flat.ChangePct)
}
