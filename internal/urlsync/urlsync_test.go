package urlsync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/restpad/internal/kv"
)

// form is a minimal stand-in for the editor: it wires row edits back into
// Recompose and URL edits into Decompose, the way the controller does.
type form struct {
	sync   *Synchronizer
	url    string
	params *kv.List

	recomposed int
	decomposed int
}

func newForm(raw string) *form {
	return &form{sync: New(), url: raw, params: kv.NewList(nil)}
}

func (f *form) editURL(raw string) {
	f.url = raw
	f.sync.Decompose(raw, func(pairs []kv.Pair) {
		f.decomposed++
		f.params.Replace(pairs)
		f.rowsChanged()
	})
}

func (f *form) rowsChanged() {
	f.sync.Recompose(f.url, f.params.Rows(), func(next string) {
		f.recomposed++
		f.url = next
		f.editURL(next)
	})
}

func TestScenarioDeleteRowRecomposes(t *testing.T) {
	f := newForm("")
	f.editURL("http://a.test/p?x=1&y=2")
	assert.Equal(t, []kv.Pair{{Key: "x", Value: "1"}, {Key: "y", Value: "2"}}, f.params.Pairs())

	require.True(t, f.params.Delete(1))
	f.rowsChanged()
	assert.Equal(t, "http://a.test/p?x=1", f.url)
}

func TestGuardDropsNestedTransforms(t *testing.T) {
	f := newForm("")
	f.editURL("http://a.test/?a=1")
	assert.Equal(t, 1, f.decomposed)
	assert.Equal(t, 0, f.recomposed, "decompose must not trigger recompose")

	f.params.Add("b", "2")
	f.rowsChanged()
	assert.Equal(t, 1, f.recomposed)
	assert.Equal(t, 1, f.decomposed, "recompose must not trigger decompose")
	assert.Equal(t, Idle, f.sync.Phase())
}

func TestPhaseVisibleDuringApply(t *testing.T) {
	s := New()
	var seen []Phase
	s.Decompose("http://h/?a=1", func([]kv.Pair) { seen = append(seen, s.Phase()) })
	s.Recompose("http://h/", nil, func(string) { seen = append(seen, s.Phase()) })
	s.Hold(func() { seen = append(seen, s.Phase()) })
	assert.Equal(t, []Phase{Decomposing, Recomposing, Decomposing}, seen)
	assert.Equal(t, Idle, s.Phase())
}

func TestHoldBlocksBothDirections(t *testing.T) {
	s := New()
	calls := 0
	s.Hold(func() {
		assert.False(t, s.Decompose("http://h/?a=1", func([]kv.Pair) { calls++ }))
		assert.False(t, s.Recompose("http://h/", nil, func(string) { calls++ }))
	})
	assert.Zero(t, calls)
}

func TestNestedHoldStillRuns(t *testing.T) {
	s := New()
	ran := false
	s.Hold(func() {
		assert.False(t, s.Hold(func() {
			ran = true
			assert.Equal(t, Decomposing, s.Phase())
		}))
		assert.Equal(t, Decomposing, s.Phase(), "inner hold must not release the guard")
	})
	assert.True(t, ran)
	assert.Equal(t, Idle, s.Phase())
}

func TestDecomposeWithoutQueryIsNoop(t *testing.T) {
	s := New()
	called := false
	assert.False(t, s.Decompose("http://a.test/p", func([]kv.Pair) { called = true }))
	assert.False(t, called)
}

func TestDecomposeIsFullReplace(t *testing.T) {
	f := newForm("")
	f.params.Add("stale", "1")
	f.editURL("http://h/?fresh=2")
	assert.Equal(t, []kv.Pair{{Key: "fresh", Value: "2"}}, f.params.Pairs())
}

func TestParseQueryDecodes(t *testing.T) {
	got := ParseQuery("q=hello+world&name=%E2%9C%93&flag&&empty=&bad=%zz")
	assert.Equal(t, []kv.Pair{
		{Key: "q", Value: "hello world"},
		{Key: "name", Value: "✓"},
		{Key: "flag", Value: ""},
		{Key: "empty", Value: ""},
		{Key: "bad", Value: "%zz"},
	}, got)
}

func TestComposeWithoutPairsLeavesBase(t *testing.T) {
	assert.Equal(t, "http://h/p", Compose(" http://h/p?old=1 ", nil))
	assert.Equal(t, "http://h/p?a=1", Compose("http://h/p", []kv.Pair{{Key: "a", Value: "1"}}))
}

func TestEncodeComponentsIndependently(t *testing.T) {
	got := EncodeQuery([]kv.Pair{{Key: "a b", Value: "x&y=z"}, {Key: "c", Value: ""}})
	assert.Equal(t, "a%20b=x%26y%3Dz&c=", got)
}

func TestRoundTrip(t *testing.T) {
	cases := [][]kv.Pair{
		{{Key: "a", Value: "1"}},
		{{Key: "q", Value: "two words"}, {Key: "q", Value: "dup"}},
		{{Key: "sym", Value: "&=?#+/%"}, {Key: "ünï", Value: "ç☃"}},
		{{Key: "empty", Value: ""}},
	}
	for _, pairs := range cases {
		url := Compose("http://h/p", pairs)
		_, query, ok := SplitQuery(url)
		require.True(t, ok)
		assert.Equal(t, pairs, ParseQuery(query))
	}
}

// The query is rebuilt from scratch, so non-canonical encodings do not survive
// a decompose/recompose cycle.
func TestRecomposeNormalizesEncoding(t *testing.T) {
	f := newForm("")
	f.editURL("http://h/?q=a+b&x=%41")
	f.rowsChanged()
	assert.Equal(t, "http://h/?q=a%20b&x=A", f.url)
}
