package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttrSetGetters(t *testing.T) {
	attrs := AttrSet{
		"method":   "lime",
		"k_value":  float64(5),
		"features": []any{"a", "b"},
		"opts":     map[string]any{"stats_type": "top_k"},
	}

	s, err := attrs.String("method")
	require.NoError(t, err)
	assert.Equal(t, "lime", s)

	n, err := attrs.Int("k_value")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	list, err := attrs.Strings("features")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, list)

	m, err := attrs.Map("opts")
	require.NoError(t, err)
	assert.Equal(t, "top_k", m["stats_type"])
}

func TestAttrSetDefaults(t *testing.T) {
	attrs := AttrSet{}

	s, err := attrs.StringOr("method", "permutation")
	require.NoError(t, err)
	assert.Equal(t, "permutation", s)

	n, err := attrs.IntOr("k_value", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	m, err := attrs.Map("error_analysis")
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestAttrSetErrors(t *testing.T) {
	attrs := AttrSet{
		"k_value": 5.5,
		"method":  7,
	}

	_, err := attrs.Any("missing")
	assert.Error(t, err)

	_, err = attrs.Int("k_value")
	assert.Error(t, err, "fractional numbers are not integers")

	_, err = attrs.String("method")
	assert.Error(t, err)

	_, err = attrs.Strings("method")
	assert.Error(t, err)
}
