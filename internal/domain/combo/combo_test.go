package combo_test

import (
	"testing"

	"github.com/google/uuid"

	"github.com/fightsight/engine/internal/domain/combo"
	"github.com/fightsight/engine/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func strike(ts float64, frame int, thrower model.FighterLabel, outcome model.Outcome) model.StrikeEvent {
	return model.StrikeEvent{
		ID:          uuid.NewSHA1(uuid.NameSpaceOID, []byte{byte(frame)}),
		FrameNumber: frame,
		Timestamp:   ts,
		Thrower:     thrower,
		Receiver:    thrower.Opponent(),
		Outcome:     outcome,
	}
}

func TestBuilder(t *testing.T) {
	sessionID := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	Convey("Given a builder with the default 2.0s window", t, func() {
		b := combo.New()

		Convey("When one fighter strikes at 0.0, 0.5 and 1.0", func() {
			strikes := []model.StrikeEvent{
				strike(0.0, 0, model.FighterA, model.OutcomeLanded),
				strike(0.5, 15, model.FighterA, model.OutcomeMissed),
				strike(1.0, 30, model.FighterA, model.OutcomeLanded),
			}
			combos, links := b.Build(sessionID, strikes)

			Convey("Then exactly one combination contains all three", func() {
				So(len(combos), ShouldEqual, 1)
				c := combos[0]
				So(c.Thrower, ShouldEqual, model.FighterA)
				So(c.StrikeCount, ShouldEqual, 3)
				So(c.StartTimestamp, ShouldEqual, 0.0)
				So(c.EndTimestamp, ShouldEqual, 1.0)
				So(c.Duration, ShouldAlmostEqual, 1.0, 1e-9)
				So(c.LandedCount, ShouldEqual, 2)
				So(c.MissedCount, ShouldEqual, 1)
			})

			Convey("Then positions run 1..3 in chronological order", func() {
				So(len(links), ShouldEqual, 3)
				for i, l := range links {
					So(l.Position, ShouldEqual, i+1)
					So(l.CombinationID, ShouldEqual, combos[0].ID)
					So(l.StrikeEventID, ShouldEqual, strikes[i].ID)
				}
			})
		})

		Convey("When the third strike falls outside the window", func() {
			strikes := []model.StrikeEvent{
				strike(0.0, 0, model.FighterA, model.OutcomeLanded),
				strike(0.5, 15, model.FighterA, model.OutcomeLanded),
				strike(3.0, 90, model.FighterA, model.OutcomeLanded),
			}
			combos, links := b.Build(sessionID, strikes)

			Convey("Then only the first two form a combination", func() {
				So(len(combos), ShouldEqual, 1)
				So(combos[0].StrikeCount, ShouldEqual, 2)
				So(len(links), ShouldEqual, 2)
			})

			Convey("Then the isolated strike belongs to no combination", func() {
				for _, l := range links {
					So(l.StrikeEventID, ShouldNotEqual, strikes[2].ID)
				}
			})
		})

		Convey("When strikes alternate between fighters inside the window", func() {
			strikes := []model.StrikeEvent{
				strike(0.0, 0, model.FighterA, model.OutcomeLanded),
				strike(0.4, 12, model.FighterB, model.OutcomeLanded),
				strike(0.8, 24, model.FighterA, model.OutcomeLanded),
			}
			combos, _ := b.Build(sessionID, strikes)

			Convey("Then no cross-fighter cluster forms", func() {
				So(combos, ShouldBeEmpty)
			})
		})

		Convey("When both fighters throw their own bursts", func() {
			strikes := []model.StrikeEvent{
				strike(0.0, 0, model.FighterA, model.OutcomeLanded),
				strike(0.5, 15, model.FighterA, model.OutcomeLanded),
				strike(4.0, 120, model.FighterB, model.OutcomeMissed),
				strike(4.5, 135, model.FighterB, model.OutcomeLanded),
				strike(5.0, 150, model.FighterB, model.OutcomeLanded),
			}
			combos, links := b.Build(sessionID, strikes)

			Convey("Then each fighter gets their own combination", func() {
				So(len(combos), ShouldEqual, 2)
				So(combos[0].Thrower, ShouldEqual, model.FighterA)
				So(combos[0].StrikeCount, ShouldEqual, 2)
				So(combos[1].Thrower, ShouldEqual, model.FighterB)
				So(combos[1].StrikeCount, ShouldEqual, 3)
			})

			Convey("Then no strike appears in more than one combination", func() {
				seen := make(map[uuid.UUID]bool)
				for _, l := range links {
					So(seen[l.StrikeEventID], ShouldBeFalse)
					seen[l.StrikeEventID] = true
				}
			})
		})

		Convey("When two same-fighter strikes share a timestamp", func() {
			strikes := []model.StrikeEvent{
				strike(1.0, 31, model.FighterA, model.OutcomeLanded),
				strike(1.0, 30, model.FighterA, model.OutcomeLanded),
			}
			_, links := b.Build(sessionID, strikes)

			Convey("Then the lower frame number takes the earlier position", func() {
				So(len(links), ShouldEqual, 2)
				So(links[0].StrikeEventID, ShouldEqual, strikes[1].ID)
				So(links[0].Position, ShouldEqual, 1)
				So(links[1].StrikeEventID, ShouldEqual, strikes[0].ID)
				So(links[1].Position, ShouldEqual, 2)
			})
		})

		Convey("When re-running on an identical input set", func() {
			strikes := []model.StrikeEvent{
				strike(0.0, 0, model.FighterA, model.OutcomeLanded),
				strike(0.5, 15, model.FighterA, model.OutcomeMissed),
				strike(1.2, 36, model.FighterA, model.OutcomeLanded),
				strike(9.0, 270, model.FighterB, model.OutcomeLanded),
				strike(9.3, 279, model.FighterB, model.OutcomeLanded),
			}
			combos1, links1 := b.Build(sessionID, strikes)
			combos2, links2 := b.Build(sessionID, strikes)

			Convey("Then the assignment is identical, IDs included", func() {
				So(combos2, ShouldResemble, combos1)
				So(links2, ShouldResemble, links1)
			})
		})

		Convey("When there are no strikes", func() {
			combos, links := b.Build(sessionID, nil)

			Convey("Then nothing is emitted", func() {
				So(combos, ShouldBeEmpty)
				So(links, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a builder with a custom window", t, func() {
		b := combo.New(combo.WithWindow(0.3))

		Convey("When gaps exceed the tightened window", func() {
			strikes := []model.StrikeEvent{
				strike(0.0, 0, model.FighterA, model.OutcomeLanded),
				strike(0.5, 15, model.FighterA, model.OutcomeLanded),
			}
			combos, _ := b.Build(sessionID, strikes)

			Convey("Then no combination forms", func() {
				So(combos, ShouldBeEmpty)
			})
		})
	})
}
