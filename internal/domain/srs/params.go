package srs

// Params defines all configurable parameters for the FSRS scheduler.
//
// The defaults must not be changed casually: every stored due date in every
// user's collection was computed with them, and the golden tests in this
// package pin their exact numeric behavior.
type Params struct {
	// Weights is the FSRS weight vector w0..w18.
	Weights [19]float64

	// Decay is the exponent of the forgetting curve.
	Decay float64
	// Factor is the scale constant of the forgetting curve, chosen so that
	// retrievability(t=s) = 0.9.
	Factor float64

	// TargetRecall is the desired recall probability at review time.
	TargetRecall float64

	// MinStability is the floor applied to every computed stability.
	MinStability float64

	// MinIntervalDays and MaxIntervalDays bound the rounded interval.
	MinIntervalDays int
	MaxIntervalDays int
}

// NewDefaultParams returns the default FSRS parameter set.
func NewDefaultParams() *Params {
	return &Params{
		Weights: [19]float64{
			0.4072, 1.1829, 3.1262, 15.4722, 7.2102,
			0.5316, 1.0651, 0.0234, 1.616, 0.1544,
			1.0824, 1.9813, 0.0953, 0.2975, 2.2042,
			0.2407, 2.9466, 0.5034, 0.6567,
		},
		Decay:           -0.5,
		Factor:          19.0 / 81.0,
		TargetRecall:    0.9,
		MinStability:    0.1,
		MinIntervalDays: 1,
		MaxIntervalDays: 256,
	}
}
