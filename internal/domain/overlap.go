// Path: internal/domain/overlap.go
package domain

// OverlapThreshold is the share of B's matches that must also match A before
// the max policy is recommended.
const OverlapThreshold = 0.9

// OverlapReport compares the commit identifiers matched by two patterns on one day.
type OverlapReport struct {
	Date   string
	LabelA string
	LabelB string
	// TotalA and TotalB are the server-reported counts.
	TotalA int
	TotalB int
	// FetchedA and FetchedB are the identifiers actually retrieved.
	FetchedA     int
	FetchedB     int
	Intersection int
	Union        int
	PctAInB      float64
	PctBInA      float64
	// Capped is set when either total exceeds ResultWindow; the overlap is
	// then estimated from a sample.
	Capped bool
	// Partial is set when paging stopped early on an error.
	Partial        bool
	Recommendation CombinePolicy
}

// NewOverlapReport computes the overlap statistics of two identifier sets.
func NewOverlapReport(date, labelA, labelB string, totalA, totalB int, a, b *IdentifierSet) *OverlapReport {
	inter := len(a.Intersect(b))
	r := &OverlapReport{
		Date:         date,
		LabelA:       labelA,
		LabelB:       labelB,
		TotalA:       totalA,
		TotalB:       totalB,
		FetchedA:     a.Len(),
		FetchedB:     b.Len(),
		Intersection: inter,
		Union:        len(a.Union(b)),
		Capped:       totalA > ResultWindow || totalB > ResultWindow,
	}
	if a.Len() > 0 {
		r.PctAInB = float64(inter) / float64(a.Len())
	}
	if b.Len() > 0 {
		r.PctBInA = float64(inter) / float64(b.Len())
	}
	r.Recommendation = Recommend(r.PctBInA)
	return r
}

// Recommend picks the combine policy suggested by the overlap of B inside A.
func Recommend(pctBInA float64) CombinePolicy {
	if pctBInA > OverlapThreshold {
		return PolicyMax
	}
	return PolicySum
}
