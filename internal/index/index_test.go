package index

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/idsieve/internal/trie"
)

func TestHandle_HappyPath(t *testing.T) {
	h := NewHandle(1)
	assert.Equal(t, Empty, h.Status())
	require.NoError(t, h.Start())
	assert.Equal(t, Loading, h.Status())
	require.NoError(t, h.Complete())
	assert.Equal(t, Ready, h.Status())
	assert.True(t, h.Status().Terminal())
	assert.NoError(t, h.Err())
}

func TestHandle_Failure(t *testing.T) {
	h := NewHandle(1)
	require.NoError(t, h.Start())
	cause := errors.New("disk on fire")
	require.NoError(t, h.Fail(cause))
	assert.Equal(t, Error, h.Status())
	assert.ErrorIs(t, h.Err(), cause)

	// Terminal: no way back to ready.
	assert.ErrorIs(t, h.Complete(), ErrInvalidTransition)
	assert.Equal(t, Error, h.Status())
}

func TestHandle_InvalidTransitions(t *testing.T) {
	h := NewHandle(1)
	assert.ErrorIs(t, h.Complete(), ErrInvalidTransition)
	assert.ErrorIs(t, h.Fail(errors.New("x")), ErrInvalidTransition)
	assert.ErrorIs(t, h.SetTrie(trie.New()), ErrInvalidTransition)

	require.NoError(t, h.Start())
	assert.ErrorIs(t, h.Start(), ErrInvalidTransition)
	require.NoError(t, h.Complete())
	assert.ErrorIs(t, h.Fail(errors.New("late")), ErrInvalidTransition)
	assert.Equal(t, Ready, h.Status())
}

func TestHandle_SetTrieWhileLoading(t *testing.T) {
	h := NewHandle(1)
	require.NoError(t, h.Start())
	tr := trie.New()
	_, err := tr.Insert("5d41402a-bc4b-4a76-b971-000000000001")
	require.NoError(t, err)
	require.NoError(t, h.SetTrie(tr))
	assert.Same(t, tr, h.Trie())
}

func TestHandle_Snapshot(t *testing.T) {
	h := NewHandle(3)
	h.SetLabel("affected_ids")
	h.AddProcessed(10)
	h.AddProcessed(5)
	snap := h.Snapshot()
	assert.Equal(t, uint64(3), snap.Generation)
	assert.Equal(t, Empty, snap.Status)
	assert.Equal(t, int64(15), snap.Processed)
	assert.Equal(t, "affected_ids", snap.Label)
	assert.Equal(t, 0, snap.Stored)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "empty", Empty.String())
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "error", Error.String())
	assert.Equal(t, "Status(9)", Status(9).String())
}

func TestHotSwap(t *testing.T) {
	hs := NewHotSwap()
	first := hs.Current()
	assert.Equal(t, Empty, first.Status())
	assert.Equal(t, uint64(0), first.Generation())

	h1 := hs.Begin()
	assert.Same(t, h1, hs.Current())
	assert.False(t, hs.IsCurrent(first))
	assert.True(t, hs.IsCurrent(h1))

	h2 := hs.Begin()
	assert.False(t, hs.IsCurrent(h1))
	assert.Greater(t, h2.Generation(), h1.Generation())
}
