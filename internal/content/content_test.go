package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	r, err := Parse([]byte(`
categories:
  unit: [Dragoon, Musketman, Cannon]
  building: [Stockade]
`))
	require.NoError(t, err)

	assert.Equal(t, []Category{Building, Unit}, r.Categories())
	assert.Equal(t, 3, r.Len(Unit))
	assert.Equal(t, 0, r.Len(Terrain))

	i, ok := r.Index(Unit, "Musketman")
	require.True(t, ok)
	assert.Equal(t, 1, i)

	i, ok = r.Index(Unit, "Frigate")
	assert.False(t, ok)
	assert.Equal(t, NoEntity, i)

	i, ok = r.Index(Terrain, "Grassland")
	assert.False(t, ok)
	assert.Equal(t, NoEntity, i)

	assert.Equal(t, []string{"Dragoon", "Musketman", "Cannon"}, r.Identifiers(Unit))
	assert.Nil(t, r.Identifiers(Terrain))
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		yaml string
		err  error
	}{
		{"UnknownCategory", "categories:\n  spaceship: [A]\n", ErrUnknownCategory},
		{"Duplicate", "categories:\n  unit: [A, B, A]\n", ErrDuplicateIdentifier},
		{"Empty", "categories:\n  unit: [A, '']\n", ErrEmptyIdentifier},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tc.yaml))
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestLoadAndMarshal(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Set(Unit, "Musketman", "Dragoon"))
	require.NoError(t, r.Set(Yield, "Food"))
	require.ErrorIs(t, r.Set(Unit, "Cannon"), ErrDuplicateCategory)

	data, err := Marshal(r)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "content.yaml")
	require.NoError(t, os.WriteFile(path, data, 0644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, r.Categories(), loaded.Categories())

	want, _ := r.Table(Unit)
	got, _ := loaded.Table(Unit)
	assert.Equal(t, want.Identifiers(), got.Identifiers())
	assert.Equal(t, want.Fingerprint(), got.Fingerprint())
}

func TestFingerprintOrderSensitive(t *testing.T) {
	t.Parallel()

	a := Fingerprint([]string{"Musketman", "Dragoon"})
	b := Fingerprint([]string{"Dragoon", "Musketman"})
	c := Fingerprint([]string{"MusketmanDragoon"})
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, Fingerprint([]string{"Musketman", "Dragoon"}))

	table, err := NewTable(Unit, []string{"Musketman", "Dragoon"})
	require.NoError(t, err)
	assert.Equal(t, a, table.Fingerprint())
	table.Identifiers()[0] = "Cannon"
	assert.Equal(t, a, table.Fingerprint(), "identifiers are copied out")
}

func TestCategoryNames(t *testing.T) {
	t.Parallel()

	for c := Category(0); c < NumCategories; c++ {
		parsed, err := ParseCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	assert.Equal(t, "end", CategoryEnd.String())
	assert.False(t, CategoryEnd.Valid())
}
