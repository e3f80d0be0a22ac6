package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScalars(t *testing.T) {
	assert.Equal(t, "x", String("x"))
	assert.Equal(t, "", String(1))
	assert.Equal(t, 3, Int(int64(3)))
	assert.Equal(t, 3, Int(3.0))
	assert.Equal(t, 0, Int("3"))
	assert.True(t, Bool(true))
	assert.False(t, Bool("true"))
}

func TestStringSlice(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, StringSlice([]any{"a", 1, "b"}))
	assert.Equal(t, []string{"a"}, StringSlice([]string{"a"}))
	assert.Nil(t, StringSlice("a"))
}

func TestStringMap_MergesNestedAndFlattened(t *testing.T) {
	data := map[string]any{
		"field_mapping":             map[string]any{"name": "label"},
		"field_mapping.website_url": "website",
		"field_mappingx":            "ignored",
		"index_endpoint":            "https://x/index",
	}

	assert.Equal(t, map[string]string{"name": "label", "website_url": "website"},
		StringMap(data, "field_mapping"))
	assert.Empty(t, StringMap(data, "missing"))
}

func TestDropTable(t *testing.T) {
	data := map[string]any{
		"field_mapping":      map[string]any{"a": "b"},
		"field_mapping.name": "label",
		"field_exclude":      []string{"contact"},
	}

	DropTable(data, "field_mapping")

	assert.Equal(t, map[string]any{"field_exclude": []string{"contact"}}, data)
}

func TestFlattenNest(t *testing.T) {
	nested := map[string]any{
		"index_endpoint": "https://x/index",
		"remote":         map[string]any{"timeout": "10s"},
		"field_mapping":  map[string]any{"name": "label"},
	}

	flat := Flatten(nested, "")
	assert.Equal(t, "10s", flat["remote.timeout"])
	assert.Equal(t, "label", flat["field_mapping.name"])

	assert.Equal(t, nested, Nest(flat))
}

func TestNest_MergesMapValueIntoTable(t *testing.T) {
	flat := map[string]any{
		"field_mapping.name": "label",
		"field_mapping":      map[string]any{"website_url": "website"},
	}

	nested := Nest(flat)

	assert.Equal(t, map[string]any{"name": "label", "website_url": "website"}, nested["field_mapping"])
}
