package query

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/idsieve/api"
	"github.com/agentic-research/idsieve/internal/index"
)

const (
	present = "5d41402a-bc4b-4a76-b971-000000000001"
	absent  = "5d41402a-bc4b-4a76-b971-000000000002"
)

func newService(t *testing.T, swap *index.HotSwap) *Service {
	t.Helper()
	s, err := NewService(swap, 16, false)
	require.NoError(t, err)
	return s
}

func load(t *testing.T, h *index.Handle, ids ...string) {
	t.Helper()
	require.NoError(t, h.Start())
	h.Trie().InsertBatch(ids)
}

func TestSearch_TriState(t *testing.T) {
	swap := index.NewHotSwap()
	s := newService(t, swap)

	// Empty: nothing loaded yet.
	assert.Equal(t, Indeterminate, s.Search(present).Outcome)

	h := swap.Begin()
	load(t, h, present)

	// Loading: even a stored identifier is only answered once ready,
	// and an absent one is never a definitive no-match.
	r := s.Search(absent)
	assert.Equal(t, Indeterminate, r.Outcome)
	assert.Equal(t, index.Loading, r.Status)

	require.NoError(t, h.Complete())
	r = s.Search(present)
	assert.Equal(t, Match, r.Outcome)
	require.NotNil(t, r.Record)
	assert.Equal(t, present, r.Record.ID)
	assert.Equal(t, NoMatch, s.Search(absent).Outcome)
}

func TestSearch_FailedLoadIsNeverAuthoritative(t *testing.T) {
	swap := index.NewHotSwap()
	s := newService(t, swap)
	h := swap.Begin()
	load(t, h, present)
	require.NoError(t, h.Fail(errors.New("truncated")))

	r := s.Search(absent)
	assert.Equal(t, Indeterminate, r.Outcome)
	assert.Equal(t, index.Error, r.Status)
	assert.Equal(t, Indeterminate, s.Check(present))
}

func TestSearch_ReusesCachedSlot(t *testing.T) {
	swap := index.NewHotSwap()
	s := newService(t, swap)
	h := swap.Begin()
	load(t, h, present)
	require.NoError(t, h.Complete())

	first := s.Search(present)
	second := s.Search(present)
	assert.Equal(t, first, second)
	assert.Same(t, first.Record, second.Record)
	assert.Equal(t, 1, s.Len())
}

func TestPoll_ResolvesIndeterminate(t *testing.T) {
	swap := index.NewHotSwap()
	s := newService(t, swap)
	h := swap.Begin()
	load(t, h, present)

	s.Search(present)
	s.Search(absent)
	assert.ElementsMatch(t, []string{present, absent}, s.Pending())

	still := s.Poll()
	require.Len(t, still, 2)
	for _, r := range still {
		assert.Equal(t, Indeterminate, r.Outcome)
	}

	require.NoError(t, h.Complete())
	resolved := s.Poll()
	require.Len(t, resolved, 2)
	got := map[string]Outcome{}
	for _, r := range resolved {
		got[r.ID] = r.Outcome
	}
	assert.Equal(t, map[string]Outcome{present: Match, absent: NoMatch}, got)
	assert.Empty(t, s.Pending())
	assert.Empty(t, s.Poll(), "nothing left to resolve")
}

func TestRefresh_AfterNewLoad(t *testing.T) {
	swap := index.NewHotSwap()
	s := newService(t, swap)

	h1 := swap.Begin()
	load(t, h1, present)
	require.NoError(t, h1.Complete())
	assert.Equal(t, Match, s.Search(present).Outcome)
	assert.Equal(t, NoMatch, s.Search(absent).Outcome)

	h2 := swap.Begin()
	load(t, h2, absent)
	require.NoError(t, h2.Complete())

	got := map[string]Result{}
	for _, r := range s.Refresh() {
		got[r.ID] = r
	}
	require.Len(t, got, 2)
	assert.Equal(t, NoMatch, got[present].Outcome)
	assert.Equal(t, Match, got[absent].Outcome)
	assert.Equal(t, h2.Generation(), got[absent].Generation)
}

func TestSearch_StaleGenerationReevaluated(t *testing.T) {
	swap := index.NewHotSwap()
	s := newService(t, swap)
	h1 := swap.Begin()
	load(t, h1, present)
	require.NoError(t, h1.Complete())
	assert.Equal(t, Match, s.Search(present).Outcome)

	swap.Begin()
	r := s.Search(present)
	assert.Equal(t, Indeterminate, r.Outcome, "a new load invalidates the cached match")
	assert.Equal(t, index.Empty, r.Status)
}

func TestClear(t *testing.T) {
	swap := index.NewHotSwap()
	s := newService(t, swap)
	s.Search(present)
	s.Clear()
	assert.Equal(t, 0, s.Len())
	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Refresh())
}

func TestCheck_DoesNotCache(t *testing.T) {
	swap := index.NewHotSwap()
	s := newService(t, swap)
	h := swap.Begin()
	load(t, h, present)
	require.NoError(t, h.Complete())

	assert.Equal(t, Match, s.Check(present))
	assert.Equal(t, NoMatch, s.Check(absent))
	assert.Equal(t, NoMatch, s.Check("not-a-uuid"))
	assert.Equal(t, 0, s.Len())
}

func TestSearch_CaseFold(t *testing.T) {
	swap := index.NewHotSwap()
	h := swap.Begin()
	load(t, h, present)
	require.NoError(t, h.Complete())

	strict := newService(t, swap)
	assert.Equal(t, NoMatch, strict.Search(strings.ToUpper(present)).Outcome)

	folding, err := NewService(swap, 16, true)
	require.NoError(t, err)
	r := folding.Search(strings.ToUpper(present))
	assert.Equal(t, Match, r.Outcome)
	assert.Equal(t, strings.ToUpper(present), r.ID)
}

func TestNewService_InvalidCacheSize(t *testing.T) {
	_, err := NewService(index.NewHotSwap(), 0, false)
	require.Error(t, err)
}

func TestLabelSet(t *testing.T) {
	l := LabelSet(api.DefaultProfile().Labels)
	assert.Equal(t, "affected", l.Label(Match))
	assert.Equal(t, "unaffected", l.Label(NoMatch))
	assert.Equal(t, "pending", l.Label(Indeterminate))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "match", Match.String())
	assert.Equal(t, "no-match", NoMatch.String())
	assert.Equal(t, "indeterminate", Indeterminate.String())
	assert.False(t, Indeterminate.Definitive())
}
