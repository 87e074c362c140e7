package query

import "github.com/agentic-research/idsieve/api"

// Labeler maps an outcome to display text. It is purely presentational.
type Labeler interface {
	Label(Outcome) string
}

// LabelSet is a Labeler backed by fixed strings.
type LabelSet api.Labels

// Label implements Labeler.
func (l LabelSet) Label(o Outcome) string {
	switch o {
	case Match:
		return l.Match
	case NoMatch:
		return l.NoMatch
	default:
		return l.Pending
	}
}
