package director

import "time"

// DurationRange bounds a uniformly sampled phase duration.
type DurationRange struct {
	Min time.Duration
	Max time.Duration
}

// EpochSettings is the parameter bundle governing one epoch. The director
// holds one live instance, escalated (never replaced) at each epoch
// rollover.
type EpochSettings struct {
	// MaxEnemies is the worth budget of simultaneously living enemies.
	MaxEnemies int
	// BuildUpSpawnRate is spawns per second during BuildUp.
	BuildUpSpawnRate float64
	// PeakFadeDespawnRate is off-screen despawns per second during PeakFade.
	PeakFadeDespawnRate float64
	// SustainPeak bounds the sampled hold duration at the peak.
	SustainPeak DurationRange
	// Relax bounds the sampled recovery duration.
	Relax DurationRange
	// PeakIntensityThreshold is the intensity that ends BuildUp.
	PeakIntensityThreshold float64
	// RelaxUpperBound is the intensity under which PeakFade may end.
	RelaxUpperBound float64
}

// EscalationStep is one row of the per-epoch escalation table, expressed as
// deltas against the epoch-1 base settings.
type EscalationStep struct {
	Epoch int `mapstructure:"epoch"`
	// MaxEnemiesDelta is added to the base worth budget.
	MaxEnemiesDelta int `mapstructure:"max_enemies_delta"`
	// PeakThresholdDelta is added to the base peak intensity threshold.
	PeakThresholdDelta float64 `mapstructure:"peak_threshold_delta"`
}

// DefaultEscalations is the escalation table used when the session config
// leaves it empty. Epochs past the last row reuse that row.
var DefaultEscalations = []EscalationStep{
	{Epoch: 2, MaxEnemiesDelta: 3, PeakThresholdDelta: 3},
	{Epoch: 3, MaxEnemiesDelta: 8, PeakThresholdDelta: 8},
	{Epoch: 4, MaxEnemiesDelta: 13, PeakThresholdDelta: 15},
}

// escalated returns base adjusted for the given epoch using the table.
// Epoch 1 returns base unchanged; epochs beyond the table clamp to its last
// row.
func escalated(base EpochSettings, epoch int, table []EscalationStep) EpochSettings {
	out := base
	if epoch <= 1 || len(table) == 0 {
		return out
	}
	var step EscalationStep
	found := false
	for _, row := range table {
		if row.Epoch <= epoch && (!found || row.Epoch > step.Epoch) {
			step = row
			found = true
		}
	}
	if !found {
		return out
	}
	out.MaxEnemies += step.MaxEnemiesDelta
	out.PeakIntensityThreshold += step.PeakThresholdDelta
	return out
}
