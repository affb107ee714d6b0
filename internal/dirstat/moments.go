package dirstat

import (
	"math"
	"slices"
	"strings"
)

const (
	// stdFloor bounds the standard deviation from below so that standardized
	// moments stay finite for samples of identical sizes.
	stdFloor = 1e-10
	// mebibyte converts bytes to the *_human fields.
	mebibyte = 1024 * 1024
)

// decilePoints are the percentiles reported in Summary.Deciles.
//
//nolint:gochecknoglobals // Fixed table
var decilePoints = []int{10, 20, 30, 40, 50, 60, 70, 80, 90}

// moments is the numeric description of one size sample.
type moments struct {
	sum      int64
	min      int64
	max      int64
	mean     float64
	variance float64
	std      float64
	median   float64
	deciles  Deciles
	iqr      float64
	skewness float64
	kurtosis float64
}

// describe computes the moments of a non-empty sample.
// Variance and standard deviation use the population convention (divide by N).
func describe(sample []int64) moments {
	n := float64(len(sample))

	sorted := make([]float64, len(sample))
	for i, v := range sample {
		sorted[i] = float64(v)
	}

	slices.Sort(sorted)

	var m moments

	m.min, m.max = slices.Min(sample), slices.Max(sample)

	for _, v := range sample {
		m.sum += v
	}

	m.mean = float64(m.sum) / n

	var sumSq float64

	for _, x := range sorted {
		d := x - m.mean
		sumSq += d * d
	}

	m.variance = sumSq / n
	m.std = math.Max(math.Sqrt(m.variance), stdFloor)

	var sum3, sum4 float64

	for _, x := range sorted {
		z := (x - m.mean) / m.std
		sum3 += z * z * z
		sum4 += z * z * z * z
	}

	m.skewness = sum3 / n
	m.kurtosis = sum4 / n

	m.deciles = make(Deciles, len(decilePoints))
	for _, p := range decilePoints {
		m.deciles[p] = percentile(sorted, float64(p))
	}

	m.median = roundHalfEven(percentile(sorted, 50), 2) //nolint:mnd // 2 decimals
	m.iqr = percentile(sorted, 75) - percentile(sorted, 25)

	return m
}

// percentile returns the p-th percentile (0-100) of an ascending sample,
// interpolating linearly between the two closest order statistics.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}

	pos := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))

	if lower == upper {
		return sorted[lower]
	}

	frac := pos - float64(lower)

	return sorted[lower] + (sorted[upper]-sorted[lower])*frac
}

// roundHalfEven rounds x to the given number of decimals, ties to even.
func roundHalfEven(x float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))

	return math.RoundToEven(x*scale) / scale
}

// extension returns the suffix of the final path component starting at its
// last dot. Names whose only dot is leading (".bashrc") or trailing ("name.")
// have no extension.
func extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i > 0 && i < len(name)-1 {
		return name[i:]
	}

	return ""
}

// toMiB converts a byte count to mebibytes.
func toMiB(n int64) float64 {
	return float64(n) / mebibyte
}
