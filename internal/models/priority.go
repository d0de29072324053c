package models

// PriorityOverrides is the immutable externally-curated criticality ranking
// merged onto the roster at load time. Tier 1 is the most critical; assets
// absent from every list fall back to DefaultPriority. The value object is
// built once at service construction and rebuilt explicitly when the
// priority files change.
type PriorityOverrides struct {
	byBFM map[string]int
}

// NewPriorityOverrides copies the provided map into an overrides value.
func NewPriorityOverrides(byBFM map[string]int) PriorityOverrides {
	copied := make(map[string]int, len(byBFM))
	for bfmNo, tier := range byBFM {
		copied[bfmNo] = tier
	}
	return PriorityOverrides{byBFM: copied}
}

// PriorityFor returns the tier for an asset, or DefaultPriority.
func (p PriorityOverrides) PriorityFor(bfmNo string) int {
	if tier, ok := p.byBFM[bfmNo]; ok {
		return tier
	}
	return DefaultPriority
}

// Len reports how many assets carry an explicit tier.
func (p PriorityOverrides) Len() int {
	return len(p.byBFM)
}
