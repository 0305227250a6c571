// Package detect converts consecutive pose frames into strike candidates
// via velocity and limb-extension analysis.
package detect

// Option applies a configuration option to the Detector.
type Option func(*Detector)

// WithVelocityThreshold sets the minimum normalized distal-joint velocity,
// in units per second, for a frame pair to produce a candidate.
func WithVelocityThreshold(threshold float64) Option {
	return func(d *Detector) {
		if threshold > 0 {
			d.velocityThreshold = threshold
		}
	}
}

// WithMinVisibility sets the landmark visibility floor below which joints
// are excluded from velocity computation.
func WithMinVisibility(min float64) Option {
	return func(d *Detector) {
		if min >= 0 && min <= 1 {
			d.minVisibility = min
		}
	}
}

// WithRefractoryPeriod sets the window, in seconds, inside which same-limb
// candidates collapse to the single local velocity maximum.
func WithRefractoryPeriod(seconds float64) Option {
	return func(d *Detector) {
		if seconds > 0 {
			d.refractoryPeriod = seconds
		}
	}
}
