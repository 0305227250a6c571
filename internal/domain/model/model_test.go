package model_test

import (
	"testing"

	"github.com/fightsight/engine/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSessionStatus(t *testing.T) {
	Convey("Given session lifecycle states", t, func() {
		Convey("Then completed and failed are terminal", func() {
			So(model.StatusCompleted.Terminal(), ShouldBeTrue)
			So(model.StatusFailed.Terminal(), ShouldBeTrue)
		})

		Convey("Then pending and processing are not terminal", func() {
			So(model.StatusPending.Terminal(), ShouldBeFalse)
			So(model.StatusProcessing.Terminal(), ShouldBeFalse)
		})
	})
}

func TestFighterLabel(t *testing.T) {
	Convey("Given the two fighter labels", t, func() {
		Convey("Then Opponent flips between them", func() {
			So(model.FighterA.Opponent(), ShouldEqual, model.FighterB)
			So(model.FighterB.Opponent(), ShouldEqual, model.FighterA)
		})

		Convey("Then only the known labels are valid", func() {
			So(model.FighterA.Valid(), ShouldBeTrue)
			So(model.FighterB.Valid(), ShouldBeTrue)
			So(model.FighterLabel("referee").Valid(), ShouldBeFalse)
		})
	})
}

func TestOutcome(t *testing.T) {
	Convey("Given strike outcomes", t, func() {
		Convey("Then only landed counts as connecting", func() {
			So(model.OutcomeLanded.Landed(), ShouldBeTrue)
			So(model.OutcomeMissed.Landed(), ShouldBeFalse)
			So(model.OutcomeBlocked.Landed(), ShouldBeFalse)
			So(model.OutcomeEvaded.Landed(), ShouldBeFalse)
		})
	})
}

func TestLimb(t *testing.T) {
	Convey("Given tracked limbs", t, func() {
		Convey("Then legs are distinguished from hands", func() {
			So(model.LimbLeftLeg.IsLeg(), ShouldBeTrue)
			So(model.LimbRightLeg.IsLeg(), ShouldBeTrue)
			So(model.LimbLeftHand.IsLeg(), ShouldBeFalse)
			So(model.LimbRightHand.IsLeg(), ShouldBeFalse)
		})
	})
}
