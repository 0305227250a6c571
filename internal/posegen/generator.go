package posegen

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/fightsight/engine/internal/domain/model"
	"github.com/fightsight/engine/internal/domain/pose"
	"github.com/fightsight/engine/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	limbPickDivisor    = 4
)

// Ring geometry in normalized image coordinates. Fighter A stands on the
// left facing +x, fighter B mirrored on the right.
const (
	fighterACenterX = 0.30
	fighterBCenterX = 0.70

	reachHand = 0.30 // wrist x offset from torso center at full extension
	reachLeg  = 0.32 // ankle x offset from torso center at full extension
	kickY     = 0.62 // ankle height at full kick extension

	extendSeconds  = 0.2
	retractSeconds = 0.3

	baseVisibility = 0.95
	jitterAmp      = 0.0005

	minFPS = 10 // below this the extension spans less than one frame pair
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// BuildScript lays out the strike choreography: evenly spaced actions,
// alternating throwers, limbs picked at random with hands favored over legs.
func BuildScript(config *Config) []Action {
	count := config.Strikes
	if count <= 0 {
		return nil
	}

	// Leave room for each strike to fully extend and retract before the
	// next one starts.
	interval := config.Duration / float64(count+1)
	minInterval := extendSeconds + retractSeconds + 0.3
	if interval < minInterval {
		count = int(config.Duration/minInterval) - 1
		if count <= 0 {
			count = 1
		}
		interval = config.Duration / float64(count+1)
	}

	script := make([]Action, 0, count)
	for i := 0; i < count; i++ {
		fighter := model.FighterA
		if i%2 == 1 {
			fighter = model.FighterB
		}
		script = append(script, Action{
			AtSeconds: interval * float64(i+1),
			Fighter:   fighter,
			Limb:      pickLimb(),
		})
	}
	return script
}

// pickLimb chooses a limb with punches three times as likely as kicks.
func pickLimb() model.Limb {
	n, _ := rand.Int(rand.Reader, big.NewInt(limbPickDivisor))
	switch n.Int64() {
	case 0:
		return model.LimbRightHand
	case 1:
		return model.LimbLeftLeg
	default:
		return model.LimbLeftHand
	}
}

// GenerateFrames renders the full pose sequence for the scripted fight.
// Both fighters hold guard; each action extends the scripted limb toward
// the opponent and retracts it.
func GenerateFrames(ctx context.Context, config *Config, script []Action) ([]pose.Frame, error) {
	fps := config.FPS
	if fps < minFPS {
		fps = minFPS
	}
	total := int(config.Duration * float64(fps))
	if total < 2 {
		return nil, fmt.Errorf("duration %.2fs at %d fps yields no usable sequence", config.Duration, fps)
	}

	logger.Get().Info(ctx, "generating pose frames",
		logger.Int("frames", total),
		logger.Int("fps", fps),
		logger.Int("strikes", len(script)))

	frames := make([]pose.Frame, 0, total)
	for i := 0; i < total; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("frame generation cancelled: %w", ctx.Err())
		default:
		}

		ts := float64(i) / float64(fps)
		frames = append(frames, pose.Frame{
			Index:     i,
			Timestamp: ts,
			Persons: map[model.FighterLabel]pose.Joints{
				model.FighterA: fighterJoints(model.FighterA, fighterACenterX, +1, ts, script),
				model.FighterB: fighterJoints(model.FighterB, fighterBCenterX, -1, ts, script),
			},
		})
	}

	logger.Get().Info(ctx, "generated pose frames", logger.Int("count", len(frames)))
	return frames, nil
}

// fighterJoints renders one fighter's full skeleton at time ts, applying
// whichever scripted action is active for that fighter.
func fighterJoints(label model.FighterLabel, cx, facing, ts float64, script []Action) pose.Joints {
	j := guardJoints(cx, facing)

	for _, action := range script {
		if action.Fighter != label {
			continue
		}
		progress, active := strikeProgress(ts, action.AtSeconds)
		if !active {
			continue
		}
		applyStrike(j, cx, facing, action.Limb, progress)
	}

	for name, lm := range j {
		lm.X += (getRandomFloat() - 0.5) * 2 * jitterAmp
		lm.Y += (getRandomFloat() - 0.5) * 2 * jitterAmp
		j[name] = lm
	}
	return j
}

// strikeProgress maps time to extension progress in [0,1]: a linear ramp
// up over the extension phase, then back down over the retraction phase.
func strikeProgress(ts, at float64) (float64, bool) {
	dt := ts - at
	switch {
	case dt < 0 || dt > extendSeconds+retractSeconds:
		return 0, false
	case dt <= extendSeconds:
		return dt / extendSeconds, true
	default:
		return 1 - (dt-extendSeconds)/retractSeconds, true
	}
}

// applyStrike moves the striking limb's distal joints toward the opponent
// proportionally to progress.
func applyStrike(j pose.Joints, cx, facing float64, limb model.Limb, progress float64) {
	move := func(name string, target pose.Landmark) {
		lm := j[name]
		lm.X += (target.X - lm.X) * progress
		lm.Y += (target.Y - lm.Y) * progress
		j[name] = lm
	}

	switch limb {
	case model.LimbLeftHand, model.LimbRightHand:
		wrist, cluster := pose.JointLeftWrist, []string{"left_pinky", "left_index", "left_thumb"}
		elbow := pose.JointLeftElbow
		if limb == model.LimbRightHand {
			wrist, cluster = pose.JointRightWrist, []string{"right_pinky", "right_index", "right_thumb"}
			elbow = pose.JointRightElbow
		}
		target := pose.Landmark{X: cx + facing*reachHand, Y: 0.36, Visibility: baseVisibility}
		move(wrist, target)
		for _, name := range cluster {
			move(name, target)
		}
		move(elbow, pose.Landmark{X: cx + facing*reachHand*0.6, Y: 0.38, Visibility: baseVisibility})
	case model.LimbLeftLeg, model.LimbRightLeg:
		ankle, cluster := pose.JointLeftAnkle, []string{"left_heel", "left_foot_index"}
		knee := pose.JointLeftKnee
		if limb == model.LimbRightLeg {
			ankle, cluster = pose.JointRightAnkle, []string{"right_heel", "right_foot_index"}
			knee = pose.JointRightKnee
		}
		target := pose.Landmark{X: cx + facing*reachLeg, Y: kickY, Visibility: baseVisibility}
		move(ankle, target)
		for _, name := range cluster {
			move(name, target)
		}
		move(knee, pose.Landmark{X: cx + facing*reachLeg*0.5, Y: 0.64, Visibility: baseVisibility})
	}
}

// guardJoints builds the full 33-joint skeleton for a fighter in guard
// stance, lead side toward the opponent.
func guardJoints(cx, facing float64) pose.Joints {
	j := make(pose.Joints, pose.LandmarkCount)
	set := func(name string, dx, y float64) {
		j[name] = pose.Landmark{X: cx + facing*dx, Y: y, Visibility: baseVisibility}
	}

	set("nose", 0.03, 0.20)
	set("left_eye_inner", 0.028, 0.19)
	set("left_eye", 0.032, 0.19)
	set("left_eye_outer", 0.036, 0.19)
	set("right_eye_inner", 0.022, 0.19)
	set("right_eye", 0.018, 0.19)
	set("right_eye_outer", 0.014, 0.19)
	set("left_ear", 0.030, 0.20)
	set("right_ear", 0.008, 0.20)
	set("mouth_left", 0.032, 0.215)
	set("mouth_right", 0.020, 0.215)

	set("left_shoulder", 0.05, 0.35)
	set("right_shoulder", -0.03, 0.35)
	set("left_elbow", 0.09, 0.44)
	set("right_elbow", 0.00, 0.45)
	set("left_wrist", 0.10, 0.38)
	set("right_wrist", 0.02, 0.40)
	set("left_pinky", 0.115, 0.375)
	set("right_pinky", 0.035, 0.395)
	set("left_index", 0.118, 0.38)
	set("right_index", 0.038, 0.40)
	set("left_thumb", 0.112, 0.385)
	set("right_thumb", 0.032, 0.405)

	set("left_hip", 0.03, 0.58)
	set("right_hip", -0.03, 0.58)
	set("left_knee", 0.05, 0.72)
	set("right_knee", -0.04, 0.72)
	set("left_ankle", 0.06, 0.86)
	set("right_ankle", -0.05, 0.86)
	set("left_heel", 0.055, 0.875)
	set("right_heel", -0.055, 0.875)
	set("left_foot_index", 0.075, 0.88)
	set("right_foot_index", -0.035, 0.88)

	return j
}
