package detector

// Classification is the gesture classifier's top category for one hand.
type Classification struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Observation is what the vision engine reports for one hand slot in one
// frame. Landmarks and Classification are nil when absent. The slot index is
// the observation's position in the frame batch and carries no identity
// across frames.
type Observation struct {
	Landmarks      *Landmarks      `json:"landmarks,omitempty"`
	Classification *Classification `json:"classification,omitempty"`
	Handedness     string          `json:"handedness"`
}

// Present reports whether the observation carries landmarks.
func (o Observation) Present() bool {
	return o.Landmarks != nil
}

// LabelScore returns the classification label and score, or ("", 0) when the
// observation has no classification.
func (o Observation) LabelScore() (string, float64) {
	if o.Classification == nil {
		return "", 0
	}
	return o.Classification.Label, o.Classification.Score
}
