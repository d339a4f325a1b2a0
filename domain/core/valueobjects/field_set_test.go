package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldSetCopy(t *testing.T) {
	original := NewFieldSetFrom(map[string]interface{}{
		"city": "Utrecht",
		"amenities": map[string]interface{}{
			"parking": true,
		},
	})

	copied := original.Copy()
	require.NoError(t, copied.Set("city", "Leiden"))

	nested, ok := copied.Get("amenities")
	require.True(t, ok)
	nested.(map[string]interface{})["parking"] = false

	// The original is unaffected by either mutation
	city, _ := original.Get("city")
	assert.Equal(t, "Utrecht", city)
	originalNested, _ := original.Get("amenities")
	assert.Equal(t, true, originalNested.(map[string]interface{})["parking"])
}

func TestFieldSetEquals(t *testing.T) {
	a := NewFieldSetFrom(map[string]interface{}{"rooms": 3, "city": "Delft"})
	b := NewFieldSetFrom(map[string]interface{}{"city": "Delft", "rooms": 3})
	c := NewFieldSetFrom(map[string]interface{}{"rooms": 4, "city": "Delft"})

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
	assert.False(t, a.Equals(NewFieldSet()))
}

func TestFieldSetSet(t *testing.T) {
	fields := NewFieldSet()

	require.NoError(t, fields.Set("key", "value"))
	value, ok := fields.Get("key")
	require.True(t, ok)
	assert.Equal(t, "value", value)

	assert.Error(t, fields.Set("", "value"))
}

func TestFieldSetMerge(t *testing.T) {
	base := NewFieldSetFrom(map[string]interface{}{"a": 1, "b": 2})
	overlay := NewFieldSetFrom(map[string]interface{}{"b": 3, "c": 4})

	merged := base.Merge(overlay)

	b, _ := merged.Get("b")
	assert.Equal(t, 3, b)
	c, _ := merged.Get("c")
	assert.Equal(t, 4, c)

	// Merge never mutates the receiver
	origB, _ := base.Get("b")
	assert.Equal(t, 2, origB)
}
