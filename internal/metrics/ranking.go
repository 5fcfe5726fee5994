package metrics

import (
	"sort"
)

// RankEntry is one company's position in a top/bottom ranking.
type RankEntry struct {
	Code  string
	Name  string
	Value float64
}

// Ranking holds the N highest and N lowest companies for a metric. Companies
// with an undefined metric are excluded and counted in Undefined.
type Ranking struct {
	Metric    Metric
	N         int
	Top       []RankEntry
	Bottom    []RankEntry
	Undefined int
}

// TopBottom extracts the n highest and n lowest companies by the given
// metric. Ties break by security code ascending so repeated runs over the
// same table produce identical rankings.
func TopBottom(ms []CompanyMetrics, metric Metric, n int) Ranking {
	var entries []RankEntry
	undefined := 0
	for _, m := range ms {
		v := m.Value(metric)
		if !v.Defined {
			undefined++
			continue
		}
		entries = append(entries, RankEntry{Code: m.Code, Name: m.Name, Value: v.Float})
	}

	desc := append([]RankEntry(nil), entries...)
	sort.Slice(desc, func(i, j int) bool {
		if desc[i].Value != desc[j].Value {
			return desc[i].Value > desc[j].Value
		}
		return desc[i].Code < desc[j].Code
	})

	asc := append([]RankEntry(nil), entries...)
	sort.Slice(asc, func(i, j int) bool {
		if asc[i].Value != asc[j].Value {
			return asc[i].Value < asc[j].Value
		}
		return asc[i].Code < asc[j].Code
	})

	if n > len(entries) {
		n = len(entries)
	}

	return Ranking{
		Metric:    metric,
		N:         n,
		Top:       desc[:n],
		Bottom:    asc[:n],
		Undefined: undefined,
	}
}
