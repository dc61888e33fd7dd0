package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeSkipsBlankKeys(t *testing.T) {
	rows := []Row{
		{Key: "  ", Value: "x"},
		{Key: "a", Value: ""},
		{Key: "", Value: ""},
		{Key: " b ", Value: " 2 "},
	}
	assert.Equal(t, []Pair{{Key: "a", Value: ""}, {Key: "b", Value: "2"}}, Serialize(rows))
}

func TestSerializeKeepsDuplicatesInOrder(t *testing.T) {
	rows := []Row{{Key: "tag", Value: "1"}, {Key: "x", Value: "y"}, {Key: "tag", Value: "2"}}
	assert.Equal(t, []Pair{
		{Key: "tag", Value: "1"},
		{Key: "x", Value: "y"},
		{Key: "tag", Value: "2"},
	}, Serialize(rows))
}

func TestSerializeEmpty(t *testing.T) {
	out := Serialize(nil)
	require.NotNil(t, out)
	assert.Empty(t, out)
}

func TestListEditing(t *testing.T) {
	l := NewList([]Pair{{Key: "a", Value: "1"}})
	idx := l.Add("", "")
	assert.Equal(t, 1, idx)
	require.True(t, l.Edit(idx, FieldKey, "b"))
	require.True(t, l.Edit(idx, FieldValue, "2"))
	assert.False(t, l.Edit(5, FieldKey, "nope"))
	assert.Equal(t, []Pair{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}}, l.Pairs())

	require.True(t, l.Delete(0))
	assert.False(t, l.Delete(3))
	assert.Equal(t, []Pair{{Key: "b", Value: "2"}}, l.Pairs())
}

func TestEnsureBlank(t *testing.T) {
	l := NewList(nil)
	l.EnsureBlank()
	assert.Equal(t, 1, l.Len())
	assert.Empty(t, l.Pairs())

	l.EnsureBlank()
	assert.Equal(t, 1, l.Len())
}

func TestFlattenLastWriteWins(t *testing.T) {
	pairs := []Pair{{Key: "X-Id", Value: "1"}, {Key: "Accept", Value: "*/*"}, {Key: "X-Id", Value: "2"}}
	assert.Equal(t, map[string]string{"X-Id": "2", "Accept": "*/*"}, Flatten(pairs))

	h := Header(pairs)
	assert.Equal(t, []string{"2"}, h["X-Id"])
}

func TestHeaderCollapsesNameCase(t *testing.T) {
	h := Header([]Pair{{Key: "x-a", Value: "1"}, {Key: "X-A", Value: "2"}, {Key: "content-type", Value: "text/plain"}})
	assert.Len(t, h, 2)
	assert.Equal(t, []string{"2"}, h["X-A"])
	assert.Equal(t, "text/plain", h.Get("Content-Type"))
}

func TestHasKeyIgnoresCase(t *testing.T) {
	pairs := []Pair{{Key: "content-type", Value: "text/plain"}}
	assert.True(t, HasKey(pairs, "Content-Type"))
	assert.False(t, HasKey(pairs, "Accept"))
}
