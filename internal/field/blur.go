package field

import "math"

// KernelSigma returns the Gaussian sigma conventionally paired with an odd kernel size.
func KernelSigma(ksize int) float64 {
	return 0.3*(float64(ksize-1)*0.5-1) + 0.8
}

// gaussianKernel returns a normalized kernel of 2*radius+1 taps.
func gaussianKernel(radius int) []float32 {
	ksize := 2*radius + 1
	sigma := KernelSigma(ksize)
	k := make([]float64, ksize)
	var sum float64
	for i := range k {
		d := float64(i - radius)
		k[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += k[i]
	}
	out := make([]float32, ksize)
	for i := range k {
		out[i] = float32(k[i] / sum)
	}
	return out
}

// reflect101 mirrors an out-of-range index back into [0, n) without repeating the edge.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

// GaussianBlur returns s convolved with a separable Gaussian of kernel size
// 2*radius+1. A radius of zero or less returns an unmodified copy.
func GaussianBlur(s *Scalar, radius int) *Scalar {
	if radius <= 0 || s.W == 0 || s.H == 0 {
		return s.Clone()
	}
	k := gaussianKernel(radius)

	tmp := NewScalar(s.W, s.H)
	for y := 0; y < s.H; y++ {
		row := s.Pix[y*s.W : (y+1)*s.W]
		for x := 0; x < s.W; x++ {
			var acc float32
			for i, w := range k {
				acc += w * row[reflect101(x+i-radius, s.W)]
			}
			tmp.Pix[y*s.W+x] = acc
		}
	}

	out := NewScalar(s.W, s.H)
	for y := 0; y < s.H; y++ {
		for x := 0; x < s.W; x++ {
			var acc float32
			for i, w := range k {
				acc += w * tmp.Pix[reflect101(y+i-radius, s.H)*s.W+x]
			}
			out.Pix[y*s.W+x] = acc
		}
	}
	return out
}
