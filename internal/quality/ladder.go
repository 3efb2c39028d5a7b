package quality

// step is one rung of the quality ladder. apply changes s and returns a
// description, or returns "" when s is already at that rung's limit.
type step func(s *Settings) string

var degradeLadder = []step{
	func(s *Settings) string {
		if s.Width <= 640 {
			return ""
		}
		s.Width, s.Height = 640, 480
		return "resolution 640x480"
	},
	func(s *Settings) string {
		if s.MaxHands <= 1 {
			return ""
		}
		s.MaxHands = 1
		return "single hand"
	},
	func(s *Settings) string {
		if s.ModelComplexity <= 0 {
			return ""
		}
		s.ModelComplexity--
		return "lower model complexity"
	},
	func(s *Settings) string {
		if s.MaxFrameRate <= 20 {
			return ""
		}
		s.MaxFrameRate = 20
		return "frame rate 20"
	},
}

var upgradeLadder = []step{
	func(s *Settings) string {
		if s.MaxFrameRate >= 30 {
			return ""
		}
		s.MaxFrameRate = 30
		return "frame rate 30"
	},
	func(s *Settings) string {
		if s.ModelComplexity >= 2 {
			return ""
		}
		s.ModelComplexity++
		return "higher model complexity"
	},
	func(s *Settings) string {
		if s.MaxHands >= 2 {
			return ""
		}
		s.MaxHands = 2
		return "dual hands"
	},
	func(s *Settings) string {
		if s.Width >= 960 {
			return ""
		}
		s.Width, s.Height = 960, 720
		return "resolution 960x720"
	},
}

// climb applies the first rung of ladder that changes s.
func climb(ladder []step, s *Settings) string {
	for _, apply := range ladder {
		if desc := apply(s); desc != "" {
			return desc
		}
	}
	return ""
}
