package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, doc string) *Document {
	t.Helper()
	d, err := Parse("test.json", []byte(doc), FormatJSON)
	require.NoError(t, err)
	return d
}

func TestNewDocument(t *testing.T) {
	tests := []struct {
		name    string
		root    any
		wantErr error
	}{
		{"margo object", map[string]any{"margo": map[string]any{}}, nil},
		{"margo null", map[string]any{"margo": nil}, nil},
		{"missing margo", map[string]any{"providers": []any{}}, ErrMissingRoot},
		{"list root", []any{}, ErrMalformed},
		{"empty", nil, ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDocument(tt.root)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, d)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, d)
		})
	}
}

func TestMissingRootIsMalformed(t *testing.T) {
	assert.ErrorIs(t, ErrMissingRoot, ErrMalformed)
}

func TestDocumentQuery(t *testing.T) {
	d := mustParse(t, `{
		"margo": {"argobots": {"pools": [{"name": "p1"}], "xstreams": {"oops": true}}},
		"providers": {"name": "prov1", "pool": 0},
		"clients": null
	}`)

	t.Run("list section", func(t *testing.T) {
		pools := d.List(PoolsSelector)
		require.Len(t, pools, 1)
		name, ok := StringField(pools[0], "name")
		assert.True(t, ok)
		assert.Equal(t, "p1", name)
	})

	t.Run("non-list section reads as empty", func(t *testing.T) {
		assert.Nil(t, d.List(StreamsSelector))
	})

	t.Run("relative query", func(t *testing.T) {
		entry := map[string]any{"scheduler": map[string]any{"pools": []any{"p1"}}}
		v, ok := d.QueryIn(entry, SchedulerPoolsSelector)
		require.True(t, ok)
		assert.Equal(t, []any{"p1"}, v)

		_, ok = d.QueryIn(map[string]any{}, SchedulerPoolsSelector)
		assert.False(t, ok)
	})

	t.Run("sections", func(t *testing.T) {
		v, ok := d.Section("providers")
		require.True(t, ok)
		obj, ok := AsObject(v)
		require.True(t, ok)
		assert.Equal(t, "prov1", obj["name"])

		_, ok = d.Section("clients")
		assert.False(t, ok, "null section is absent")
		_, ok = d.Section("ssg")
		assert.False(t, ok)
	})
}

func TestStringField(t *testing.T) {
	s, ok := StringField(map[string]any{"name": "x"}, "name")
	assert.True(t, ok)
	assert.Equal(t, "x", s)

	_, ok = StringField(map[string]any{"name": int64(3)}, "name")
	assert.False(t, ok)

	_, ok = StringField("name", "name")
	assert.False(t, ok)
}
