// Package combo clusters a session's ordered strike events into
// combinations and ordered combination-strike links.
package combo

import (
	"sort"

	"github.com/google/uuid"

	"github.com/fightsight/engine/internal/domain/model"
)

// defaultWindow is the maximum gap, in seconds, between consecutive strikes
// of one combination.
const defaultWindow = 2.0

// Builder clusters strikes using a greedy single pass.
type Builder struct {
	window float64
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithWindow sets the clustering gap in seconds.
func WithWindow(seconds float64) Option {
	return func(b *Builder) {
		if seconds > 0 {
			b.window = seconds
		}
	}
}

// New creates a builder with configuration options.
func New(opts ...Option) *Builder {
	b := &Builder{window: defaultWindow}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build clusters strikes into combinations and position links. A strike
// joins the open cluster when it shares the cluster's thrower and follows
// the cluster's most recent strike within the window; otherwise the open
// cluster closes and a new one opens. Clusters of a single strike are
// discarded. Positions are assigned 1..N in chronological order.
//
// Output is deterministic and idempotent for a fixed input set: strikes are
// ordered by (timestamp, frame number, event ID) before clustering and
// combination IDs derive from the member strikes.
func (b *Builder) Build(sessionID uuid.UUID, strikes []model.StrikeEvent) ([]model.Combination, []model.CombinationStrike) {
	if len(strikes) == 0 {
		return nil, nil
	}

	ordered := make([]model.StrikeEvent, len(strikes))
	copy(ordered, strikes)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Timestamp != ordered[j].Timestamp {
			return ordered[i].Timestamp < ordered[j].Timestamp
		}
		if ordered[i].FrameNumber != ordered[j].FrameNumber {
			return ordered[i].FrameNumber < ordered[j].FrameNumber
		}
		return ordered[i].ID.String() < ordered[j].ID.String()
	})

	var (
		combos  []model.Combination
		links   []model.CombinationStrike
		cluster []model.StrikeEvent
	)

	flush := func() {
		if len(cluster) >= 2 {
			c, l := b.emit(sessionID, cluster)
			combos = append(combos, c)
			links = append(links, l...)
		}
		cluster = nil
	}

	for _, s := range ordered {
		if len(cluster) > 0 {
			last := cluster[len(cluster)-1]
			if s.Thrower == last.Thrower && s.Timestamp-last.Timestamp <= b.window {
				cluster = append(cluster, s)
				continue
			}
			flush()
		}
		cluster = append(cluster, s)
	}
	flush()

	return combos, links
}

// emit materializes one closed cluster of at least two strikes.
func (b *Builder) emit(sessionID uuid.UUID, cluster []model.StrikeEvent) (model.Combination, []model.CombinationStrike) {
	first, last := cluster[0], cluster[len(cluster)-1]

	c := model.Combination{
		ID:             combinationID(sessionID, first.ID),
		SessionID:      sessionID,
		Thrower:        first.Thrower,
		StartTimestamp: first.Timestamp,
		EndTimestamp:   last.Timestamp,
		Duration:       last.Timestamp - first.Timestamp,
		StrikeCount:    len(cluster),
	}

	links := make([]model.CombinationStrike, 0, len(cluster))
	for i, s := range cluster {
		if s.Outcome.Landed() {
			c.LandedCount++
		} else {
			c.MissedCount++
		}
		links = append(links, model.CombinationStrike{
			CombinationID: c.ID,
			StrikeEventID: s.ID,
			Position:      i + 1,
		})
	}
	return c, links
}

// combinationID derives a stable identifier from the session and the first
// member strike, so re-running on identical input reproduces the same rows.
func combinationID(sessionID, firstStrikeID uuid.UUID) uuid.UUID {
	ns := uuid.NewSHA1(uuid.NameSpaceOID, sessionID[:])
	return uuid.NewSHA1(ns, firstStrikeID[:])
}
