package model

// Issue is the provider-neutral view of a tracker issue used as an index
// record. Number is assigned by the provider and immutable once created.
type Issue struct {
	Number int
	Title  string
	Body   string
	Labels []string
	Locked bool
}

// Comment is a single comment on an index issue. High-churn record kinds
// (verification codes) store one record per comment instead of rewriting
// the issue body.
type Comment struct {
	ID   int64
	Body string
}

func (i *Issue) HasLabel(name string) bool {
	for _, l := range i.Labels {
		if l == name {
			return true
		}
	}
	return false
}
