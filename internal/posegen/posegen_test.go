package posegen_test

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/fightsight/engine/internal/domain/detect"
	"github.com/fightsight/engine/internal/domain/model"
	"github.com/fightsight/engine/internal/domain/pose"
	"github.com/fightsight/engine/internal/posegen"
	"github.com/fightsight/engine/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestBuildScript(t *testing.T) {
	Convey("Given a generation config", t, func() {
		Convey("When building a script with room for every strike", func() {
			cfg := &posegen.Config{Duration: 30, FPS: 20, Strikes: 10}
			script := posegen.BuildScript(cfg)

			Convey("Then strikes are evenly spaced and alternate throwers", func() {
				So(len(script), ShouldEqual, 10)
				for i, action := range script {
					So(action.AtSeconds, ShouldBeGreaterThan, 0)
					So(action.AtSeconds, ShouldBeLessThan, 30)
					if i > 0 {
						So(action.AtSeconds, ShouldBeGreaterThan, script[i-1].AtSeconds)
						So(action.Fighter, ShouldNotEqual, script[i-1].Fighter)
					}
				}
			})
		})

		Convey("When the fight is too short for the requested strikes", func() {
			cfg := &posegen.Config{Duration: 3, FPS: 20, Strikes: 50}
			script := posegen.BuildScript(cfg)

			Convey("Then the script is thinned instead of overlapping", func() {
				So(len(script), ShouldBeGreaterThan, 0)
				So(len(script), ShouldBeLessThan, 50)
				for i := 1; i < len(script); i++ {
					So(script[i].AtSeconds-script[i-1].AtSeconds, ShouldBeGreaterThan, 0.7)
				}
			})
		})

		Convey("When no strikes are requested", func() {
			cfg := &posegen.Config{Duration: 10, FPS: 20}

			Convey("Then the script is empty", func() {
				So(posegen.BuildScript(cfg), ShouldBeEmpty)
			})
		})
	})
}

func TestGenerateFrames(t *testing.T) {
	Convey("Given a scripted choreography", t, func() {
		ctx := context.Background()
		cfg := &posegen.Config{Duration: 7, FPS: 20}
		script := []posegen.Action{
			{AtSeconds: 1.0, Fighter: model.FighterA, Limb: model.LimbLeftHand},
			{AtSeconds: 2.5, Fighter: model.FighterB, Limb: model.LimbRightHand},
			{AtSeconds: 4.0, Fighter: model.FighterA, Limb: model.LimbLeftLeg},
			{AtSeconds: 5.5, Fighter: model.FighterB, Limb: model.LimbLeftHand},
		}

		Convey("When generating the pose sequence", func() {
			frames, err := posegen.GenerateFrames(ctx, cfg, script)
			So(err, ShouldBeNil)

			Convey("Then the sequence covers the whole fight at the given rate", func() {
				So(len(frames), ShouldEqual, 140)
				So(frames[0].Index, ShouldEqual, 0)
				So(frames[len(frames)-1].Timestamp, ShouldAlmostEqual, 6.95, 0.001)
			})

			Convey("Then both fighters carry a full skeleton in every frame", func() {
				for _, fr := range frames {
					a, okA := fr.Person(model.FighterA)
					b, okB := fr.Person(model.FighterB)
					So(okA, ShouldBeTrue)
					So(okB, ShouldBeTrue)
					So(a.WellFormed(), ShouldBeTrue)
					So(b.WellFormed(), ShouldBeTrue)
				}
			})

			Convey("Then the detector recovers exactly the scripted strikes", func() {
				candidates := detect.New().Detect(frames)
				So(len(candidates), ShouldEqual, len(script))
				for i, c := range candidates {
					So(c.Thrower, ShouldEqual, script[i].Fighter)
					So(c.Limb, ShouldEqual, script[i].Limb)
					So(math.Abs(c.Timestamp-script[i].AtSeconds), ShouldBeLessThan, 0.5)
				}
			})
		})

		Convey("When the duration is too short to render", func() {
			short := &posegen.Config{Duration: 0.01, FPS: 20}
			_, err := posegen.GenerateFrames(ctx, short, nil)

			Convey("Then generation is refused", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When the context is already cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := posegen.GenerateFrames(cancelled, cfg, script)

			Convey("Then generation stops with the context error", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestWriteFrames(t *testing.T) {
	Convey("Given a generated sequence", t, func() {
		ctx := context.Background()
		cfg := &posegen.Config{Duration: 3, FPS: 10}
		frames, err := posegen.GenerateFrames(ctx, cfg, nil)
		So(err, ShouldBeNil)

		Convey("When writing and reading it back through the pose source", func() {
			path := filepath.Join(t.TempDir(), "poses.jsonl")
			written, err := posegen.WriteFrames(ctx, path, frames)
			So(err, ShouldBeNil)
			So(written, ShouldEqual, path)

			loaded, err := pose.NewFileSource(path).Frames(ctx)

			Convey("Then the sequence survives the roundtrip", func() {
				So(err, ShouldBeNil)
				So(len(loaded), ShouldEqual, len(frames))
				So(loaded[0].Timestamp, ShouldEqual, frames[0].Timestamp)
				So(loaded[len(loaded)-1].Index, ShouldEqual, frames[len(frames)-1].Index)
			})
		})

		Convey("When writing an empty sequence", func() {
			_, err := posegen.WriteFrames(ctx, filepath.Join(t.TempDir(), "empty.jsonl"), nil)

			Convey("Then it is refused", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
