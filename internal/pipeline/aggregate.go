package pipeline

import (
	"github.com/fightsight/engine/internal/domain/model"
)

// aggregate folds the enriched strikes and combinations into per-fighter
// totals and the report input handed to the report collaborator.
func aggregate(
	sess model.AnalysisSession,
	fighters []model.SessionFighter,
	strikes []model.StrikeEvent,
	combos []model.Combination,
) ([]model.SessionFighter, model.ReportInput) {
	summaries := make([]model.FighterSummary, len(fighters))

	for i := range fighters {
		f := &fighters[i]
		f.StrikesThrown = 0
		f.StrikesLanded = 0
		f.StrikesMissed = 0
		f.Combinations = 0
		f.StrikesAgainst = 0

		byCategory := make(map[string]int)
		byTarget := make(map[string]int)

		for _, s := range strikes {
			if s.Receiver == f.Label {
				f.StrikesAgainst++
			}
			if s.Thrower != f.Label {
				continue
			}
			f.StrikesThrown++
			if s.Outcome.Landed() {
				f.StrikesLanded++
			} else {
				f.StrikesMissed++
			}
			byCategory[string(s.Category)]++
			byTarget[string(s.TargetZone)]++
		}
		for _, c := range combos {
			if c.Thrower == f.Label {
				f.Combinations++
			}
		}

		accuracy := 0.0
		if f.StrikesThrown > 0 {
			accuracy = float64(f.StrikesLanded) / float64(f.StrikesThrown)
		}
		summaries[i] = model.FighterSummary{
			Label:          f.Label,
			Stance:         f.Stance,
			StrikesThrown:  f.StrikesThrown,
			StrikesLanded:  f.StrikesLanded,
			StrikesMissed:  f.StrikesMissed,
			Accuracy:       accuracy,
			Combinations:   f.Combinations,
			StrikesAgainst: f.StrikesAgainst,
			ByCategory:     byCategory,
			ByTarget:       byTarget,
		}
	}

	input := model.ReportInput{
		SessionID:         sess.ID,
		Sport:             sess.Sport,
		Rounds:            sess.Rounds,
		TotalStrikes:      len(strikes),
		TotalCombinations: len(combos),
		Fighters:          summaries,
		Strikes:           strikes,
		Combinations:      combos,
	}
	return fighters, input
}
