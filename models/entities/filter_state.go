package entities

// FilterState is a user query over the aggregated updates. Empty sets select
// everything.
type FilterState struct {
	Search  string
	Sources []string
	Topics  []Topic
}

func (f FilterState) IsEmpty() bool {
	return f.Search == "" && len(f.Sources) == 0 && len(f.Topics) == 0
}
