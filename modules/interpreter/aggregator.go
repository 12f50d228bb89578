package interpreter

import (
	"fmt"
	"sort"
)

// Aggregation types for explanation statistics.
const (
	StatsTopK           = "top_k"
	StatsAverageScore   = "average_score"
	StatsAverageRanking = "average_ranking"
)

func validStatsType(t string) error {
	switch t {
	case StatsTopK, StatsAverageScore, StatsAverageRanking:
		return nil
	}
	return fmt.Errorf("unsupported stats_type %q", t)
}

// FeatureStat is one aggregated (feature, statistic) pair.
type FeatureStat struct {
	Index int
	Value float64
}

// aggregator accumulates per-class explanation statistics across many
// instances. Explanations whose confidence falls below the threshold are
// ignored.
type aggregator struct {
	threshold float64
	classes   map[int]*classAgg
}

type classAgg struct {
	n        int
	topCount map[int]int
	scoreSum map[int]float64
	rankSum  map[int]float64
	seen     map[int]int
}

func newAggregator(threshold float64) *aggregator {
	return &aggregator{threshold: threshold, classes: make(map[int]*classAgg)}
}

func (a *aggregator) feed(exp Explanation) {
	for class, ce := range exp {
		if ce.Confidence < a.threshold {
			continue
		}
		agg, ok := a.classes[class]
		if !ok {
			agg = &classAgg{
				topCount: make(map[int]int),
				scoreSum: make(map[int]float64),
				rankSum:  make(map[int]float64),
				seen:     make(map[int]int),
			}
			a.classes[class] = agg
		}
		agg.n++
		for rank, fw := range ce.Features {
			agg.topCount[fw.Index]++
			agg.scoreSum[fw.Index] += fw.Score
			agg.rankSum[fw.Index] += float64(rank + 1)
			agg.seen[fw.Index]++
		}
	}
}

// empty reports whether nothing cleared the confidence threshold.
func (a *aggregator) empty() bool {
	return len(a.classes) == 0
}

// stats aggregates with the requested type:
//   - top_k: how often a feature appears among an instance's top features
//   - average_score: mean attribution score where the feature appeared
//   - average_ranking: mean rank where the feature appeared (lower first)
//
// The returned map holds at most k entries per class.
func (a *aggregator) stats(statsType string, k int) (map[int][]FeatureStat, error) {
	if err := validStatsType(statsType); err != nil {
		return nil, err
	}
	out := make(map[int][]FeatureStat, len(a.classes))
	for class, agg := range a.classes {
		var stats []FeatureStat
		for idx, count := range agg.seen {
			var v float64
			switch statsType {
			case StatsTopK:
				v = float64(agg.topCount[idx]) / float64(agg.n)
			case StatsAverageScore:
				v = agg.scoreSum[idx] / float64(count)
			case StatsAverageRanking:
				v = agg.rankSum[idx] / float64(count)
			}
			stats = append(stats, FeatureStat{Index: idx, Value: v})
		}
		ascending := statsType == StatsAverageRanking
		sort.SliceStable(stats, func(i, j int) bool {
			if ascending {
				return stats[i].Value < stats[j].Value
			}
			return stats[i].Value > stats[j].Value
		})
		if k > 0 && k < len(stats) {
			stats = stats[:k]
		}
		out[class] = stats
	}
	return out, nil
}
