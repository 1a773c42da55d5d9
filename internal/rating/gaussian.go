package rating

import "math"

// tiny guards the truncation ratios against a vanishing denominator.
const tiny = 2.222758749e-162

func pdf(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}

func cdf(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

func ppf(p float64) float64 {
	return -math.Sqrt2 * math.Erfcinv(2*p)
}

func vWin(t, eps float64) float64 {
	x := t - eps
	denom := cdf(x)
	if denom < tiny {
		return -x
	}
	return pdf(x) / denom
}

func wWin(t, eps float64) float64 {
	x := t - eps
	if cdf(x) < tiny {
		if x < 0 {
			return 1
		}
		return 0
	}
	v := vWin(t, eps)
	return clamp01(v * (v + x))
}

func vDraw(t, eps float64) float64 {
	abs := math.Abs(t)
	a, b := eps-abs, -eps-abs
	denom := cdf(a) - cdf(b)
	v := a
	if denom >= tiny {
		v = (pdf(b) - pdf(a)) / denom
	}
	if t < 0 {
		return -v
	}
	return v
}

func wDraw(t, eps float64) float64 {
	abs := math.Abs(t)
	a, b := eps-abs, -eps-abs
	denom := cdf(a) - cdf(b)
	if denom < tiny {
		return 1
	}
	v := vDraw(abs, eps)
	return clamp01(v*v + (a*pdf(a)-b*pdf(b))/denom)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
