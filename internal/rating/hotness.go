package rating

// HotnessMidpoint is reported when every candidate has the same mean.
const HotnessMidpoint = 5.0

// Scale rescales means into [0, 10] relative to a population.
type Scale struct {
	Min float64
	Max float64
}

// NewScale returns the scale spanned by mus. An empty population yields a
// degenerate scale.
func NewScale(mus []float64) Scale {
	if len(mus) == 0 {
		return Scale{}
	}
	s := Scale{Min: mus[0], Max: mus[0]}
	for _, mu := range mus[1:] {
		if mu < s.Min {
			s.Min = mu
		}
		if mu > s.Max {
			s.Max = mu
		}
	}
	return s
}

// Hotness maps mu linearly so that Min is 0 and Max is 10. Values outside
// the scale are clamped.
func (s Scale) Hotness(mu float64) float64 {
	span := s.Max - s.Min
	if span <= 0 {
		return HotnessMidpoint
	}
	h := 10 * (mu - s.Min) / span
	if h < 0 {
		return 0
	}
	if h > 10 {
		return 10
	}
	return h
}
