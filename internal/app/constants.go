package app

// Line counts at which a clear escalates to a stronger client effect.
const (
	BlastWaveLines = 2
	LightningLines = 3
)
