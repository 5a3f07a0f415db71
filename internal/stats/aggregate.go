package stats

import (
	"sprint-health/internal/tracker"
)

// BucketSum accumulates estimation and task count for one bucket.
type BucketSum struct {
	Seconds float64 `json:"-"`
	Count   int     `json:"count"`
}

// Hours returns the rounded hour total.
func (b BucketSum) Hours() float64 {
	return Round1(b.Seconds / 3600)
}

func (b *BucketSum) add(t tracker.Task) {
	b.Seconds += t.Estimation
	b.Count++
}

// BucketTotals partitions a task subset by bucket.
type BucketTotals struct {
	ByBucket map[Bucket]BucketSum
	Total    BucketSum
}

// SumBuckets classifies every task exactly once.
func SumBuckets(tasks []tracker.Task) BucketTotals {
	totals := BucketTotals{ByBucket: make(map[Bucket]BucketSum, len(Buckets))}
	for _, b := range Buckets {
		totals.ByBucket[b] = BucketSum{}
	}
	for _, t := range tasks {
		b := Classify(t.Status, t.Resolution)
		sum := totals.ByBucket[b]
		sum.add(t)
		totals.ByBucket[b] = sum
		totals.Total.add(t)
	}
	return totals
}

// Hours returns the rounded hour total of a bucket.
func (bt BucketTotals) Hours(b Bucket) float64 {
	return bt.ByBucket[b].Hours()
}

// Share returns the bucket's share of the total estimation in percent.
func (bt BucketTotals) Share(b Bucket) float64 {
	return Percent(bt.ByBucket[b].Seconds, bt.Total.Seconds)
}

// Counts returns the task count per bucket keyed by bucket name.
func (bt BucketTotals) Counts() map[string]int {
	counts := make(map[string]int, len(Buckets)+1)
	for _, b := range Buckets {
		counts[string(b)] = bt.ByBucket[b].Count
	}
	counts["total"] = bt.Total.Count
	return counts
}

// BlockedHours sums the estimation of unfinished tasks that link to a blocker.
func BlockedHours(tasks []tracker.Task) float64 {
	var sum BucketSum
	for _, t := range tasks {
		if IsBlocked(t) {
			sum.add(t)
		}
	}
	return sum.Hours()
}

// AssigneeLoad counts tasks per named assignee.
func AssigneeLoad(tasks []tracker.Task) map[string]int {
	load := make(map[string]int)
	for _, t := range tasks {
		if t.Assignee != "" {
			load[t.Assignee]++
		}
	}
	return load
}

// BacklogChange returns scope added after the grace period as a percentage
// of the initial scope, or 0 when there was no initial scope.
func BacklogChange(tasks []tracker.Task, sprint tracker.Sprint) float64 {
	graceEnd := NewSprintWindow(sprint).GraceEnd()

	var initial, added float64
	for _, t := range tasks {
		if t.CreateDate.After(graceEnd) {
			added += t.Estimation
		} else {
			initial += t.Estimation
		}
	}
	if initial == 0 {
		return 0
	}
	return Round1(added * 100 / initial)
}
