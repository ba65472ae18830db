package dashboard

import (
	"sort"

	"beta-dashboard/loader"
	"beta-dashboard/models"
)

// Band classifies an index beta for card colouring.
type Band string

const (
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

// BandFor maps a numeric beta to its band: below 1.0 low, below 1.2 medium, else high.
func BandFor(beta float64) Band {
	switch {
	case beta < 1.0:
		return BandLow
	case beta < 1.2:
		return BandMedium
	default:
		return BandHigh
	}
}

// Color is the card background for the band.
func (b Band) Color() string {
	switch b {
	case BandLow:
		return "#e0f3e0"
	case BandMedium:
		return "#fff2cc"
	default:
		return "#ffcccc"
	}
}

// IndexGroup is every bank sharing one (Index, IndexBeta) pair.
type IndexGroup struct {
	Index     string               `json:"index"`
	IndexBeta string               `json:"index_beta"`
	Country   string               `json:"country"` // first country encountered in the group
	Beta      float64              `json:"beta"`
	Band      Band                 `json:"band"`
	Rows      []models.BankBetaRow `json:"rows"`
}

// GroupByIndex partitions rows by (Index, IndexBeta), ordered by Index then IndexBeta.
// Rows keep their input order inside a group.
func GroupByIndex(rows []models.BankBetaRow) []IndexGroup {
	type key struct{ index, beta string }
	pos := map[key]int{}
	var groups []IndexGroup
	for _, r := range rows {
		k := key{r.Index, r.IndexBeta}
		i, ok := pos[k]
		if !ok {
			beta := loader.NumericBeta(r.IndexBeta)
			groups = append(groups, IndexGroup{
				Index:     r.Index,
				IndexBeta: r.IndexBeta,
				Country:   r.Country,
				Beta:      beta,
				Band:      BandFor(beta),
			})
			i = len(groups) - 1
			pos[k] = i
		}
		groups[i].Rows = append(groups[i].Rows, r)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		if groups[a].Index != groups[b].Index {
			return groups[a].Index < groups[b].Index
		}
		return groups[a].IndexBeta < groups[b].IndexBeta
	})
	return groups
}
