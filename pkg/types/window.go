package types

// RetentionWindow is one retention-time window of a gradient. Windows
// partition [0, gradientLength) contiguously without overlap; the
// capacity is the maximum number of peptides monitorable in the window
// during one method.
type RetentionWindow struct {
	// Index is the window's position within the gradient, from 0.
	Index int `json:"index" yaml:"index"`

	// StartMin and EndMin bound the window interval [StartMin, EndMin)
	// in gradient minutes.
	StartMin float64 `json:"start_min" yaml:"start_min"`
	EndMin   float64 `json:"end_min" yaml:"end_min"`

	// Capacity is the peptide slot count derived from the duty-cycle
	// model. A truncated final window may carry a lower capacity.
	Capacity int `json:"capacity" yaml:"capacity"`
}

// Admits reports whether a retention time falls inside the window
// widened by toleranceMin on both sides: [StartMin-tol, EndMin+tol).
func (w RetentionWindow) Admits(rtMin, toleranceMin float64) bool {
	return rtMin >= w.StartMin-toleranceMin && rtMin < w.EndMin+toleranceMin
}
