package stats

import "math"

// Signal types raised on a health trend.
const (
	SignalOutlier = "outlier"
	SignalShift   = "shift"
)

// shiftRun is the number of consecutive sprints on one side of the average
// that counts as a shift.
const shiftRun = 8

// Trend statuses.
const (
	TrendStable   = "stable"
	TrendVolatile = "volatile"
	TrendShifting = "shifting"
)

// Signal is a sprint whose health score deviates from routine variation.
type Signal struct {
	Index       int    `json:"index"`
	Sprint      string `json:"sprint"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// HealthTrend is an individuals and moving range chart over sprint scores.
type HealthTrend struct {
	Average      float64   `json:"average"`
	AmR          float64   `json:"average_moving_range"`
	UNPL         float64   `json:"upper_natural_process_limit"`
	LNPL         float64   `json:"lower_natural_process_limit"`
	Values       []float64 `json:"values"`
	MovingRanges []float64 `json:"moving_ranges"`
	Signals      []Signal  `json:"signals"`
	Status       string    `json:"status"`
}

// AnalyzeHealthTrend builds the chart for scores listed in sprint order.
// Limits are clamped to the score range.
func AnalyzeHealthTrend(scores []float64, sprints []string) HealthTrend {
	if len(scores) == 0 {
		return HealthTrend{Status: TrendStable}
	}

	trend := HealthTrend{Values: scores, Signals: []Signal{}}

	// 1. Average
	trend.Average = CalculateMean(scores)

	// 2. Moving ranges
	if len(scores) > 1 {
		trend.MovingRanges = make([]float64, len(scores)-1)
		sum := 0.0
		for i := 0; i < len(scores)-1; i++ {
			mr := math.Abs(scores[i+1] - scores[i])
			trend.MovingRanges[i] = mr
			sum += mr
		}
		trend.AmR = sum / float64(len(scores)-1)
	}

	// 3. Natural process limits (2.66 is the scaling constant for individuals)
	trend.UNPL = math.Min(100, trend.Average+2.66*trend.AmR)
	trend.LNPL = math.Max(0, trend.Average-2.66*trend.AmR)

	// 4. Signals
	trend.Signals = detectSignals(scores, trend.Average, trend.UNPL, trend.LNPL, sprints)

	trend.Status = TrendStable
	for _, s := range trend.Signals {
		if s.Type == SignalShift {
			trend.Status = TrendShifting
			break
		}
		trend.Status = TrendVolatile
	}

	trend.Average = Round1(trend.Average)
	trend.AmR = Round1(trend.AmR)
	trend.UNPL = Round1(trend.UNPL)
	trend.LNPL = Round1(trend.LNPL)
	return trend
}

func detectSignals(values []float64, avg, unpl, lnpl float64, sprints []string) []Signal {
	signals := []Signal{}
	name := func(i int) string {
		if i < len(sprints) {
			return sprints[i]
		}
		return ""
	}

	for i, v := range values {
		if v > unpl {
			signals = append(signals, Signal{
				Index:       i,
				Sprint:      name(i),
				Type:        SignalOutlier,
				Description: "Health score above the upper natural process limit",
			})
		} else if v < lnpl {
			signals = append(signals, Signal{
				Index:       i,
				Sprint:      name(i),
				Type:        SignalOutlier,
				Description: "Health score below the lower natural process limit",
			})
		}
	}

	if len(values) >= shiftRun {
		side, count := 0, 0
		for i, v := range values {
			current := 0
			if v > avg {
				current = 1
			} else if v < avg {
				current = -1
			}

			if current == side && current != 0 {
				count++
			} else {
				side = current
				count = 1
			}

			if count == shiftRun {
				signals = append(signals, Signal{
					Index:       i,
					Sprint:      name(i),
					Type:        SignalShift,
					Description: "8 consecutive sprints on one side of the average",
				})
			}
		}
	}

	return signals
}
