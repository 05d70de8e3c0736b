package bot

import (
	botinternal "blockblast/internal/bot/internal"
	"blockblast/internal/domain"
)

const deadEndPenalty = -1000.0

// DefaultTuning keeps the board open early and chases clears once it fills up.
var DefaultTuning = botinternal.BotTuning{
	Open: botinternal.PhaseWeights{
		PointsWeight:    0.05,
		FilledWeight:    -0.2,
		HoleWeight:      -4.0,
		NearFullWeight:  0.5,
		RoughnessWeight: -0.4,
		LargeFitWeight:  1.5,
		ClearBonus:      2.0,
	},
	Crowded: botinternal.PhaseWeights{
		PointsWeight:    0.08,
		FilledWeight:    -0.4,
		HoleWeight:      -5.0,
		NearFullWeight:  1.0,
		RoughnessWeight: -0.5,
		LargeFitWeight:  3.0,
		ClearBonus:      4.0,
	},
	Critical: botinternal.PhaseWeights{
		PointsWeight:    0.1,
		FilledWeight:    -0.8,
		HoleWeight:      -6.0,
		NearFullWeight:  1.5,
		RoughnessWeight: -0.5,
		LargeFitWeight:  6.0,
		ClearBonus:      8.0,
	},
	DeadEndPenalty: deadEndPenalty,
}

// smartBotTuning searches deeper and weighs survival harder.
var smartBotTuning = botinternal.BotTuning{
	Open:           DefaultTuning.Open,
	Crowded:        DefaultTuning.Crowded,
	Critical:       DefaultTuning.Critical,
	DeadEndPenalty: deadEndPenalty,
	BeamWidth:      6,
	MaxDepth:       domain.BatchSize,
}
