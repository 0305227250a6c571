// Package enrich annotates classified strikes with derived contextual
// fields once combination membership is known. The pass is pure and
// order-dependent: no external calls, deterministic for a fixed input.
package enrich

import (
	"sort"

	"github.com/google/uuid"

	"github.com/fightsight/engine/internal/domain/model"
)

// defaultCounterWindow is how far back, in seconds, an opponent strike
// counts as having initiated the exchange.
const defaultCounterWindow = 1.0

// Enricher computes the per-strike enrichment fields.
type Enricher struct {
	counterWindow float64
}

// Option applies a configuration option to the Enricher.
type Option func(*Enricher)

// WithCounterWindow sets the look-back window, in seconds, for the
// initiation classification.
func WithCounterWindow(seconds float64) Option {
	return func(e *Enricher) {
		if seconds > 0 {
			e.counterWindow = seconds
		}
	}
}

// New creates an enricher with configuration options.
func New(opts ...Option) *Enricher {
	e := &Enricher{counterWindow: defaultCounterWindow}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply returns a copy of strikes with enrichment fields populated:
// session-ordinal position, elapsed time since the previous strike by any
// fighter, combination membership and in-combination position, a coarse
// range bucket, and the initiation class. Input order does not matter; the
// output is in session chronological order.
func (e *Enricher) Apply(strikes []model.StrikeEvent, links []model.CombinationStrike) []model.StrikeEvent {
	if len(strikes) == 0 {
		return nil
	}

	out := make([]model.StrikeEvent, len(strikes))
	copy(out, strikes)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		if out[i].FrameNumber != out[j].FrameNumber {
			return out[i].FrameNumber < out[j].FrameNumber
		}
		return out[i].ID.String() < out[j].ID.String()
	})

	membership := make(map[uuid.UUID]model.CombinationStrike, len(links))
	for _, l := range links {
		membership[l.StrikeEventID] = l
	}

	for i := range out {
		s := &out[i]

		s.SequencePosition = i + 1
		if i == 0 {
			s.SecondsSincePrev = 0
		} else {
			s.SecondsSincePrev = s.Timestamp - out[i-1].Timestamp
		}

		if l, ok := membership[s.ID]; ok {
			s.InCombination = true
			s.ComboPosition = l.Position
		} else {
			s.InCombination = false
			s.ComboPosition = 0
		}

		s.Range = rangeFor(s.Category)
		s.Initiation = e.initiation(out[:i], *s)
	}

	return out
}

// initiation classifies a strike against the opponent's recent activity:
// offense when the receiver threw nothing inside the window, counter when
// the receiver's strike did not land, defensive_response when it did.
func (e *Enricher) initiation(preceding []model.StrikeEvent, s model.StrikeEvent) model.Initiation {
	for i := len(preceding) - 1; i >= 0; i-- {
		p := preceding[i]
		if s.Timestamp-p.Timestamp > e.counterWindow {
			break
		}
		if p.Thrower != s.Receiver {
			continue
		}
		if p.Outcome.Landed() {
			return model.InitiationDefensive
		}
		return model.InitiationCounter
	}
	return model.InitiationOffense
}

// rangeFor maps a strike family to its typical fighting distance.
func rangeFor(c model.StrikeCategory) model.RangeBucket {
	switch c {
	case model.CategoryKick:
		return model.RangeLong
	case model.CategoryElbow, model.CategoryKnee, model.CategoryClinch:
		return model.RangeShort
	default:
		return model.RangeMedium
	}
}
