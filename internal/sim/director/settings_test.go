package director

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func baseSettings() EpochSettings {
	return EpochSettings{
		MaxEnemies:             5,
		BuildUpSpawnRate:       1,
		PeakFadeDespawnRate:    0.5,
		SustainPeak:            DurationRange{Min: 5 * time.Second, Max: 10 * time.Second},
		Relax:                  DurationRange{Min: 8 * time.Second, Max: 12 * time.Second},
		PeakIntensityThreshold: 20,
		RelaxUpperBound:        5,
	}
}

func TestEscalated(t *testing.T) {
	base := baseSettings()

	cases := []struct {
		epoch         int
		wantEnemies   int
		wantThreshold float64
	}{
		{1, 5, 20},
		{2, 8, 23},
		{3, 13, 28},
		{4, 18, 35},
		{5, 18, 35}, // past the table: clamp to the last row
		{9, 18, 35},
	}
	for _, tc := range cases {
		got := escalated(base, tc.epoch, DefaultEscalations)
		assert.Equal(t, tc.wantEnemies, got.MaxEnemies, "epoch %d", tc.epoch)
		assert.Equal(t, tc.wantThreshold, got.PeakIntensityThreshold, "epoch %d", tc.epoch)
	}
}

func TestEscalated_DeltasAreAgainstBase(t *testing.T) {
	base := baseSettings()
	// Escalation never compounds: epoch 3 applies its row to the base, not
	// to the epoch-2 result.
	e3 := escalated(base, 3, DefaultEscalations)
	assert.Equal(t, base.MaxEnemies+8, e3.MaxEnemies)
	assert.Equal(t, base.PeakIntensityThreshold+8, e3.PeakIntensityThreshold)
}

func TestEscalated_UntouchedFields(t *testing.T) {
	base := baseSettings()
	got := escalated(base, 4, DefaultEscalations)
	assert.Equal(t, base.BuildUpSpawnRate, got.BuildUpSpawnRate)
	assert.Equal(t, base.PeakFadeDespawnRate, got.PeakFadeDespawnRate)
	assert.Equal(t, base.SustainPeak, got.SustainPeak)
	assert.Equal(t, base.Relax, got.Relax)
	assert.Equal(t, base.RelaxUpperBound, got.RelaxUpperBound)
}

func TestEscalated_EmptyTable(t *testing.T) {
	base := baseSettings()
	assert.Equal(t, base, escalated(base, 7, nil))
	assert.Equal(t, base, escalated(base, 1, DefaultEscalations))
}

func TestEscalated_SparseTable(t *testing.T) {
	table := []EscalationStep{
		{Epoch: 3, MaxEnemiesDelta: 4, PeakThresholdDelta: 6},
	}
	base := baseSettings()
	assert.Equal(t, base, escalated(base, 2, table), "no row at or below epoch 2")
	got := escalated(base, 3, table)
	assert.Equal(t, base.MaxEnemies+4, got.MaxEnemies)
}
