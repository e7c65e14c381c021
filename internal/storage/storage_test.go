package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveStore(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte("SAVF plot plot plot "), 200)

	testCases := []struct {
		name     string
		compress bool
	}{
		{name: "Raw", compress: false},
		{name: "Compressed", compress: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			opts := DefaultOptions()
			opts.Compress = tc.compress
			store, err := NewSaveStore(dir, opts)
			require.NoError(t, err)
			defer store.Close()

			require.NoError(t, store.WriteSave("game1", payload))

			// a second store has an empty cache and must read from disk
			fresh, err := NewSaveStore(dir, DefaultOptions())
			require.NoError(t, err)
			defer fresh.Close()

			got, err := fresh.ReadSave("game1")
			require.NoError(t, err)
			assert.Equal(t, payload, got)

			info, err := os.Stat(store.Path("game1"))
			require.NoError(t, err)
			if tc.compress {
				assert.Less(t, info.Size(), int64(len(payload)))
			} else {
				assert.Equal(t, int64(1+len(payload)+footerSize), info.Size())
			}
		})
	}
}

func TestSaveStoreCorruption(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewSaveStore(dir, DefaultOptions())
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.WriteSave("game", []byte("some save bytes")))

	path := store.Path("game")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[3] ^= 0xFF
	require.NoError(t, os.WriteFile(path, raw, 0644))

	fresh, err := NewSaveStore(dir, DefaultOptions())
	require.NoError(t, err)
	defer fresh.Close()

	_, err = fresh.ReadSave("game")
	require.ErrorIs(t, err, ErrCorruptSave)

	require.NoError(t, os.WriteFile(path, []byte{0, 1}, 0644))
	_, err = fresh.ReadSave("game")
	require.ErrorIs(t, err, ErrCorruptSave)
}

func TestSaveStoreNames(t *testing.T) {
	t.Parallel()

	store, err := NewSaveStore(t.TempDir(), DefaultOptions())
	require.NoError(t, err)
	defer store.Close()

	for _, name := range []string{"", ".", "..", "a/b", `a\b`} {
		assert.ErrorIs(t, store.WriteSave(name, nil), ErrInvalidName, "name %q", name)
	}

	_, err = store.ReadSave("missing")
	require.ErrorIs(t, err, ErrSaveNotFound)
	require.ErrorIs(t, store.DeleteSave("missing"), ErrSaveNotFound)
}

func TestSaveStoreListAndDelete(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewSaveStore(dir, DefaultOptions())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.WriteSave("b", []byte("2")))
	require.NoError(t, store.WriteSave("a", []byte("1")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	saves, err := store.ListSaves()
	require.NoError(t, err)
	require.Len(t, saves, 2)
	assert.Equal(t, "a", saves[0].Name)
	assert.Equal(t, "b", saves[1].Name)
	assert.Equal(t, int64(1+1+footerSize), saves[0].Size)

	require.NoError(t, store.DeleteSave("a"))
	_, err = store.ReadSave("a")
	require.ErrorIs(t, err, ErrSaveNotFound, "deleted saves must not be served from cache")

	saves, err = store.ListSaves()
	require.NoError(t, err)
	assert.Len(t, saves, 1)
}

func TestSaveStoreCache(t *testing.T) {
	t.Parallel()

	store, err := NewSaveStore(t.TempDir(), DefaultOptions())
	require.NoError(t, err)
	defer store.Close()

	store.SetCacheSize(2)
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, store.WriteSave(name, []byte(name)))
	}
	assert.Len(t, store.saveCache, 2)
	assert.Equal(t, []string{"b", "c"}, store.cacheKeys)

	_, err = store.ReadSave("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, store.cacheKeys)

	store.SetCacheSize(0)
	assert.Empty(t, store.saveCache)
	require.NoError(t, store.WriteSave("d", []byte("d")))
	assert.Empty(t, store.saveCache)
}

func TestSaveStoreCacheOwnsData(t *testing.T) {
	t.Parallel()

	store, err := NewSaveStore(t.TempDir(), DefaultOptions())
	require.NoError(t, err)
	defer store.Close()

	buf := []byte("first save")
	require.NoError(t, store.WriteSave("slot", buf))
	copy(buf, "XXXXX")

	got, err := store.ReadSave("slot")
	require.NoError(t, err)
	assert.Equal(t, []byte("first save"), got)
}

func TestSaveStoreAutosave(t *testing.T) {
	t.Parallel()

	store, err := NewSaveStore(t.TempDir(), DefaultOptions())
	require.NoError(t, err)
	defer store.Close()
	store.SetRotationPolicy(RotationPolicy{MaxAutosaves: 2})
	assert.Equal(t, 2, store.RotationPolicy().MaxAutosaves)

	require.NoError(t, store.WriteSave("manual", []byte("keep me")))

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var names []string
	for i := 0; i < 4; i++ {
		name, deleted, err := store.CreateAutosave("auto", []byte{byte(i)}, start.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		names = append(names, name)
		if i >= 2 {
			assert.Equal(t, []string{names[i-2]}, deleted)
		} else {
			assert.Empty(t, deleted)
		}
	}

	store.SetRotationPolicy(RotationPolicy{MaxAutosaves: 1})
	planned, err := store.PlanRotation(start.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{names[2]}, planned, "planning deletes nothing")

	saves, err := store.ListSaves()
	require.NoError(t, err)
	var got []string
	for _, s := range saves {
		got = append(got, s.Name)
	}
	assert.Equal(t, []string{names[2], names[3], "manual"}, got)
}
