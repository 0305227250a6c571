// Package pose models per-frame skeletal landmarks and the contract for
// reading an extracted pose sequence.
package pose

import (
	"github.com/fightsight/engine/internal/domain/model"
)

/* landmark names follow the 33-point full-body skeleton:
0: nose                16: right_wrist
1: left_eye_inner      17: left_pinky
2: left_eye            18: right_pinky
3: left_eye_outer      19: left_index
4: right_eye_inner     20: right_index
5: right_eye           21: left_thumb
6: right_eye_outer     22: right_thumb
7: left_ear            23: left_hip
8: right_ear           24: right_hip
9: mouth_left          25: left_knee
10: mouth_right        26: right_knee
11: left_shoulder      27: left_ankle
12: right_shoulder     28: right_ankle
13: left_elbow         29: left_heel
14: right_elbow        30: right_heel
15: left_wrist         31: left_foot_index
                       32: right_foot_index
*/

// Joint names used by the candidate detector.
const (
	JointNose          = "nose"
	JointLeftShoulder  = "left_shoulder"
	JointRightShoulder = "right_shoulder"
	JointLeftElbow     = "left_elbow"
	JointRightElbow    = "right_elbow"
	JointLeftWrist     = "left_wrist"
	JointRightWrist    = "right_wrist"
	JointLeftHip       = "left_hip"
	JointRightHip      = "right_hip"
	JointLeftKnee      = "left_knee"
	JointRightKnee     = "right_knee"
	JointLeftAnkle     = "left_ankle"
	JointRightAnkle    = "right_ankle"
)

// LandmarkCount is the number of named joints a well-formed person entry
// carries per frame.
const LandmarkCount = 33

// AllJoints lists the full 33-joint skeleton in index order.
var AllJoints = [LandmarkCount]string{
	"nose",
	"left_eye_inner", "left_eye", "left_eye_outer",
	"right_eye_inner", "right_eye", "right_eye_outer",
	"left_ear", "right_ear",
	"mouth_left", "mouth_right",
	"left_shoulder", "right_shoulder",
	"left_elbow", "right_elbow",
	"left_wrist", "right_wrist",
	"left_pinky", "right_pinky",
	"left_index", "right_index",
	"left_thumb", "right_thumb",
	"left_hip", "right_hip",
	"left_knee", "right_knee",
	"left_ankle", "right_ankle",
	"left_heel", "right_heel",
	"left_foot_index", "right_foot_index",
}

// Landmark is one joint position in normalized image coordinates with a
// 0..1 visibility score.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Joints maps joint names to landmarks for one detected person.
type Joints map[string]Landmark

// Frame holds the landmarks of up to two tracked persons for one video
// frame. A person absent from the frame has no entry.
type Frame struct {
	Index     int                           `json:"frame_index"`
	Timestamp float64                       `json:"timestamp"` // seconds from video start
	Persons   map[model.FighterLabel]Joints `json:"persons"`
}

// Person returns the joints for a fighter and whether they were detected.
func (f Frame) Person(label model.FighterLabel) (Joints, bool) {
	j, ok := f.Persons[label]
	return j, ok
}

// Visible reports whether the named joint is present with at least the
// given visibility.
func (j Joints) Visible(name string, min float64) (Landmark, bool) {
	lm, ok := j[name]
	if !ok || lm.Visibility < min {
		return Landmark{}, false
	}
	return lm, true
}

// WellFormed reports whether a person entry carries the full skeleton.
func (j Joints) WellFormed() bool {
	return len(j) >= LandmarkCount
}

// TorsoCenter returns the midpoint of shoulders and hips, used as the
// body-reference point for extension tests. The second return is false when
// too few torso joints are visible.
func (j Joints) TorsoCenter(minVisibility float64) (Landmark, bool) {
	var sum Landmark
	n := 0
	for _, name := range []string{JointLeftShoulder, JointRightShoulder, JointLeftHip, JointRightHip} {
		if lm, ok := j.Visible(name, minVisibility); ok {
			sum.X += lm.X
			sum.Y += lm.Y
			sum.Z += lm.Z
			n++
		}
	}
	if n < 2 {
		return Landmark{}, false
	}
	return Landmark{X: sum.X / float64(n), Y: sum.Y / float64(n), Z: sum.Z / float64(n)}, true
}
