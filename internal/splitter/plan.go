package splitter

import (
	"errors"
	"fmt"
)

var (
	// ErrZeroSplits rejects a request for zero output fragments.
	ErrZeroSplits = errors.New("number of splits must be greater than 0")
	// ErrNoPages rejects splitting a document with no pages.
	ErrNoPages = errors.New("document has no pages to split")
)

// Range is a 1-based inclusive span of page numbers carried by one split.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Plan is the deterministic partition of a document's pages. It is a pure
// function of (totalPages, splits): no randomness, no dependence on content.
type Plan struct {
	PagesPerSplit int     `json:"pages_per_split"`
	Ranges        []Range `json:"ranges"`
}

// PlanSplits validates the request and computes the page range carried by
// each split. PagesPerSplit is the ceiling of totalPages/splits; when the
// division is not exact the ceiling can exhaust all pages before the last
// requested split, so len(Ranges) may be less than splits.
func PlanSplits(totalPages, splits int) (Plan, error) {
	if err := validate(totalPages, splits); err != nil {
		return Plan{}, err
	}

	perSplit := (totalPages + splits - 1) / splits
	plan := Plan{PagesPerSplit: perSplit}

	for idx := 0; idx < splits; idx++ {
		start := idx * perSplit
		if start >= totalPages {
			break
		}
		end := start + perSplit
		if end > totalPages {
			end = totalPages
		}
		plan.Ranges = append(plan.Ranges, Range{Start: start + 1, End: end})
	}
	return plan, nil
}

func validate(totalPages, splits int) error {
	if splits <= 0 {
		return ErrZeroSplits
	}
	if totalPages <= 0 {
		return ErrNoPages
	}
	if splits > totalPages {
		return fmt.Errorf("number of splits (%d) cannot exceed total pages (%d)", splits, totalPages)
	}
	return nil
}
