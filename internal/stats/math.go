package stats

import "math"

// Round1 rounds to one decimal place, the precision of every reported metric.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Percent returns part/whole*100, or 0 when whole is 0.
func Percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

// CalculateMean returns the arithmetic mean of values.
func CalculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// CalculateStdDev returns the population standard deviation of values.
func CalculateStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := CalculateMean(values)
	sq := 0.0
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return math.Sqrt(sq / float64(len(values)))
}

// CoefficientOfVariation is stddev/mean, 0 for an empty or zero-mean sample.
func CoefficientOfVariation(values []float64) float64 {
	mean := CalculateMean(values)
	if mean == 0 {
		return 0
	}
	return CalculateStdDev(values) / mean
}
