package domain

// CountAndPercentage is a count together with its share of a total.
type CountAndPercentage struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// All is the "everything" row of a statistic: the whole total at 100%.
func All(total int) CountAndPercentage {
	return CountAndPercentage{Count: total, Percentage: 1.0}
}

// Share is count over total. An empty total yields a zero percentage.
func Share(count, total int) CountAndPercentage {
	if total == 0 {
		return CountAndPercentage{Count: count}
	}
	return CountAndPercentage{Count: count, Percentage: float64(count) / float64(total)}
}

// InventorRate classifies unique people.
type InventorRate struct {
	All          CountAndPercentage `json:"all"`
	Women        CountAndPercentage `json:"women"`
	Men          CountAndPercentage `json:"men"`
	Undetermined CountAndPercentage `json:"undetermined"`
}

// DisclosureOutput classifies disclosures by the people listed on them.
type DisclosureOutput struct {
	All                    CountAndPercentage `json:"all"`
	AtLeastOneWoman        CountAndPercentage `json:"at_least_one_woman"`
	AtLeastOneMan          CountAndPercentage `json:"at_least_one_man"`
	AtLeastOneUndetermined CountAndPercentage `json:"at_least_one_undetermined"`
	SoloWoman              CountAndPercentage `json:"solo_woman"`
	SoloMan                CountAndPercentage `json:"solo_man"`
}

// FractionalInventorship splits each disclosure's credit across its people.
type FractionalInventorship struct {
	All          float64 `json:"all"`
	Women        float64 `json:"women"`
	Men          float64 `json:"men"`
	Undetermined float64 `json:"undetermined"`
}

// SummarySnapshot is a read-only view of a finished aggregation run.
type SummarySnapshot struct {
	RowCount               int                    `json:"row_count"`
	UniquePeople           int                    `json:"unique_people"`
	UniqueDisclosures      int                    `json:"unique_disclosures"`
	Mismatches             int                    `json:"mismatches"`
	InventorRate           InventorRate           `json:"inventor_rate"`
	DisclosureOutput       DisclosureOutput       `json:"disclosure_output"`
	FractionalInventorship FractionalInventorship `json:"fractional_inventorship"`
}
