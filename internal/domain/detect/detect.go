// Package detect converts consecutive pose frames into strike candidates
// via velocity and limb-extension analysis.
package detect

import (
	"math"
	"sort"

	"github.com/fightsight/engine/internal/domain/model"
	"github.com/fightsight/engine/internal/domain/pose"
)

// Default detection thresholds.
const (
	defaultVelocityThreshold = 0.8  // normalized units per second
	defaultMinVisibility     = 0.5  // landmarks below this are ignored
	defaultRefractoryPeriod  = 0.25 // seconds between candidates per limb
)

// limbJoints maps each tracked limb to its proximal and distal joints.
var limbJoints = map[model.Limb]struct{ proximal, distal string }{
	model.LimbLeftHand:  {pose.JointLeftShoulder, pose.JointLeftWrist},
	model.LimbRightHand: {pose.JointRightShoulder, pose.JointRightWrist},
	model.LimbLeftLeg:   {pose.JointLeftHip, pose.JointLeftAnkle},
	model.LimbRightLeg:  {pose.JointRightHip, pose.JointRightAnkle},
}

// limbOrder fixes the scan order so output is deterministic for a fixed
// frame sequence.
var limbOrder = []model.Limb{
	model.LimbLeftHand, model.LimbRightHand,
	model.LimbLeftLeg, model.LimbRightLeg,
}

// Detector finds strike candidates in a pose frame sequence.
type Detector struct {
	velocityThreshold float64
	minVisibility     float64
	refractoryPeriod  float64
}

// New creates a detector with configuration options.
func New(opts ...Option) *Detector {
	d := &Detector{
		velocityThreshold: defaultVelocityThreshold,
		minVisibility:     defaultMinVisibility,
		refractoryPeriod:  defaultRefractoryPeriod,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect scans consecutive frame pairs for both fighters and all limbs and
// returns candidates ordered by timestamp. One physical strike produces at
// most one candidate per limb: raw hits within the refractory period
// collapse to the local velocity maximum.
func (d *Detector) Detect(frames []pose.Frame) []model.StrikeCandidate {
	if len(frames) < 2 {
		return nil
	}

	var raw []model.StrikeCandidate
	for i := 1; i < len(frames); i++ {
		prev, cur := frames[i-1], frames[i]
		dt := cur.Timestamp - prev.Timestamp
		if dt <= 0 {
			continue // out-of-order or duplicate timestamp, skip the pair
		}

		for _, label := range []model.FighterLabel{model.FighterA, model.FighterB} {
			for _, limb := range limbOrder {
				if c, ok := d.candidate(prev, cur, i, dt, label, limb); ok {
					raw = append(raw, c)
				}
			}
		}
	}

	return d.collapse(raw, len(frames))
}

// candidate evaluates one fighter/limb across one frame pair.
func (d *Detector) candidate(prev, cur pose.Frame, idx int, dt float64, label model.FighterLabel, limb model.Limb) (model.StrikeCandidate, bool) {
	joints := limbJoints[limb]

	prevSelf, ok := prev.Person(label)
	if !ok {
		return model.StrikeCandidate{}, false
	}
	curSelf, ok := cur.Person(label)
	if !ok {
		return model.StrikeCandidate{}, false
	}

	// Both endpoints of the displacement must be visible; otherwise no
	// candidate is produced for this frame/limb.
	prevDistal, prevOK := prevSelf.Visible(joints.distal, d.minVisibility)
	curDistal, curOK := curSelf.Visible(joints.distal, d.minVisibility)
	if !prevOK || !curOK {
		return model.StrikeCandidate{}, false
	}

	velocity := distance3(prevDistal, curDistal) / dt
	if velocity < d.velocityThreshold {
		return model.StrikeCandidate{}, false
	}

	if !d.extending(prevSelf, curSelf, cur, label, limb, prevDistal, curDistal) {
		return model.StrikeCandidate{}, false
	}

	return model.StrikeCandidate{
		FrameIndex: idx,
		Timestamp:  cur.Timestamp,
		Thrower:    label,
		Limb:       limb,
		Velocity:   velocity,
		Confidence: math.Min(velocity/d.velocityThreshold, 1.0),
	}, true
}

// extending confirms the limb is moving away from the thrower's body toward
// the opponent. Both the proximal joint and the opponent's torso must be
// resolvable or the geometric test fails closed.
func (d *Detector) extending(prevSelf, curSelf pose.Joints, cur pose.Frame, label model.FighterLabel, limb model.Limb, prevDistal, curDistal pose.Landmark) bool {
	joints := limbJoints[limb]

	prevProximal, ok := prevSelf.Visible(joints.proximal, d.minVisibility)
	if !ok {
		return false
	}
	curProximal, ok := curSelf.Visible(joints.proximal, d.minVisibility)
	if !ok {
		return false
	}

	// The limb must be lengthening between the two frames.
	if distance3(curProximal, curDistal) <= distance3(prevProximal, prevDistal) {
		return false
	}

	opponent, ok := cur.Person(label.Opponent())
	if !ok {
		return false
	}
	opponentCenter, ok := opponent.TorsoCenter(d.minVisibility)
	if !ok {
		return false
	}
	ownCenter, ok := curSelf.TorsoCenter(d.minVisibility)
	if !ok {
		return false
	}

	// Displacement direction must point from the thrower's body toward the
	// opponent's torso (image-plane dot product).
	dx, dy := curDistal.X-prevDistal.X, curDistal.Y-prevDistal.Y
	tx, ty := opponentCenter.X-ownCenter.X, opponentCenter.Y-ownCenter.Y
	return dx*tx+dy*ty > 0
}

// collapse merges same-limb candidates inside the refractory period down to
// the local velocity maximum, then fills in the 3-frame windows.
func (d *Detector) collapse(raw []model.StrikeCandidate, frameCount int) []model.StrikeCandidate {
	if len(raw) == 0 {
		return nil
	}

	type limbKey struct {
		thrower model.FighterLabel
		limb    model.Limb
	}

	byLimb := make(map[limbKey][]model.StrikeCandidate)
	for _, c := range raw {
		k := limbKey{c.Thrower, c.Limb}
		byLimb[k] = append(byLimb[k], c)
	}

	var out []model.StrikeCandidate
	for _, cands := range byLimb {
		best := cands[0]
		last := cands[0]
		for _, c := range cands[1:] {
			if c.Timestamp-last.Timestamp <= d.refractoryPeriod {
				// Same physical strike: keep the velocity peak. Ties keep
				// the earlier candidate so output is stable.
				if c.Velocity > best.Velocity {
					best = c
				}
			} else {
				out = append(out, best)
				best = c
			}
			last = c
		}
		out = append(out, best)
	}

	for i := range out {
		out[i].Window = window(out[i].FrameIndex, frameCount)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		if out[i].FrameIndex != out[j].FrameIndex {
			return out[i].FrameIndex < out[j].FrameIndex
		}
		if out[i].Thrower != out[j].Thrower {
			return out[i].Thrower < out[j].Thrower
		}
		return out[i].Limb < out[j].Limb
	})
	return out
}

// window returns the before/during/after frame indices around idx, clamped
// to the sequence bounds.
func window(idx, frameCount int) [3]int {
	before, after := idx-1, idx+1
	if before < 0 {
		before = 0
	}
	if after > frameCount-1 {
		after = frameCount - 1
	}
	return [3]int{before, idx, after}
}

func distance3(a, b pose.Landmark) float64 {
	dx, dy, dz := b.X-a.X, b.Y-a.Y, b.Z-a.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
