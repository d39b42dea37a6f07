package briefing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedCatalog(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4, c.MaxLayer())

	first, ok := c.Layer(1)
	require.True(t, ok)
	assert.Equal(t, "goal", first.Key)
	assert.Equal(t, "objective", first.Fields[0].Key)

	n, ok := c.FieldLayer("deadline")
	require.True(t, ok)
	assert.Equal(t, 4, n)

	_, ok = c.Layer(5)
	assert.False(t, ok)
}

func TestNextWalksInOrder(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	layer, field, ok := c.Next(map[string]string{})
	require.True(t, ok)
	assert.Equal(t, 1, layer.Number)
	assert.Equal(t, "objective", field.Key)

	layer, field, ok = c.Next(map[string]string{"objective": "sales", "audience": "gen z", "platform": "  "})
	require.True(t, ok)
	assert.Equal(t, 1, layer.Number)
	assert.Equal(t, "platform", field.Key)

	all := map[string]string{}
	for _, l := range c.Layers() {
		for _, f := range l.Fields {
			all[f.Key] = "x"
		}
	}
	_, _, ok = c.Next(all)
	assert.False(t, ok)
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "layers: {}"},
		{"gap in numbering", "layers:\n  a:\n    number: 2\n    fields:\n      x:\n        question: q\n"},
		{"duplicate field", "layers:\n  a:\n    number: 1\n    fields:\n      x:\n        question: q\n  b:\n    number: 2\n    fields:\n      x:\n        question: q\n"},
		{"no fields", "layers:\n  a:\n    number: 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestOutlineListsChips(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	out := c.Outline()
	assert.Contains(t, out, "Layer 1: Goal")
	assert.Contains(t, out, "- platform: Where will it be published? [options: TikTok, Instagram Reels, YouTube Shorts, LinkedIn]")
}
