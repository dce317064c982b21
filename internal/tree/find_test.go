package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindCaseInsensitive(t *testing.T) {
	for _, doc := range []string{
		`{"ID": "p-1"}`,
		`{"Id": "p-1"}`,
		`{"id": "p-1"}`,
	} {
		t.Run(doc, func(t *testing.T) {
			got, ok := Find(mustParse(t, doc), "id")
			assert.True(t, ok)
			assert.Equal(t, String("p-1"), got)
		})
	}
}

func TestFindTargetNameIsFoldedToo(t *testing.T) {
	v := mustParse(t, `{"wrapper": {"nlpspeeches": [1]}}`)

	got, ok := Find(v, "NLPSpeeches")
	assert.True(t, ok)
	assert.Equal(t, Array{Number("1")}, got)
}

func TestFindNotFound(t *testing.T) {
	v := mustParse(t, `{"a": {"b": [{"c": 1}]}}`)

	_, ok := Find(v, "missing")
	assert.False(t, ok)

	_, ok = Find(String("id"), "id")
	assert.False(t, ok)

	_, ok = Find(nil, "id")
	assert.False(t, ok)
}

// The first field's subtree is searched completely before the second
// field's name is checked, so the deeper match wins here.
func TestFindDepthFirstBeatsLaterShallowField(t *testing.T) {
	v := mustParse(t, `{
		"protocol": {"number": "deep"},
		"number": "shallow"
	}`)

	got, ok := Find(v, "number")
	assert.True(t, ok)
	assert.Equal(t, String("deep"), got)
}

// A field's own name is checked before its value is searched.
func TestFindParentBeforeChild(t *testing.T) {
	v := mustParse(t, `{
		"number": {"number": "inner"}
	}`)

	got, ok := Find(v, "number")
	assert.True(t, ok)
	assert.Equal(t, Object{{Key: "number", Value: String("inner")}}, got)
}

func TestFindShallowFieldBeforeLaterSubtree(t *testing.T) {
	v := mustParse(t, `{
		"number": "shallow",
		"protocol": {"number": "deep"}
	}`)

	got, ok := Find(v, "number")
	assert.True(t, ok)
	assert.Equal(t, String("shallow"), got)
}

func TestFindArraysInOrder(t *testing.T) {
	v := mustParse(t, `{"items": [
		{"other": 1},
		{"nested": {"order": "second-element"}},
		{"order": "third-element"}
	]}`)

	got, ok := Find(v, "order")
	assert.True(t, ok)
	assert.Equal(t, String("second-element"), got)
}

func TestFindSkipsNullMatches(t *testing.T) {
	v := mustParse(t, `{
		"legislatureperiod": null,
		"protocol": {"legislatureperiod": 20}
	}`)

	got, ok := Find(v, "legislatureperiod")
	assert.True(t, ok)
	assert.Equal(t, Number("20"), got)
}

func TestFindReturnsFalsyValues(t *testing.T) {
	v := mustParse(t, `{"a": {"number": 0}, "number": 7}`)

	got, ok := Find(v, "number")
	assert.True(t, ok)
	assert.Equal(t, Number("0"), got)
}

func TestFindFoldsNonASCIIKeys(t *testing.T) {
	v := mustParse(t, `{"meta": {"ÄNDERUNG": "x"}}`)

	got, ok := Find(v, "änderung")
	assert.True(t, ok)
	assert.Equal(t, String("x"), got)
}
