package storage

import (
	"os"
	"testing"
	"time"

	"github.com/TFMV/savefmt/internal/content"
	"github.com/TFMV/savefmt/internal/hash"
	"github.com/TFMV/savefmt/internal/savegame"
	"github.com/TFMV/savefmt/internal/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tagUnitType savegame.VarType = 1

type unitRecord struct {
	Type int
}

func (u *unitRecord) WriteSave(w savegame.Writer) {
	w.BeginRecord(savegame.ClassUnit)
	w.WriteEnum(tagUnitType, content.Unit, u.Type, savegame.NoEntity)
	w.EndRecord()
}

func (u *unitRecord) ReadSave(r savegame.Reader) error {
	u.Type = savegame.NoEntity
	if err := r.BeginRecord(savegame.ClassUnit); err != nil {
		return err
	}
	return r.Fields(func(tag savegame.VarType) (err error) {
		if tag == tagUnitType {
			u.Type, err = r.ReadEnum(content.Unit)
		}
		return err
	})
}

func testRegistry(t *testing.T, units ...string) *content.Registry {
	t.Helper()
	reg := content.NewRegistry()
	require.NoError(t, reg.Set(content.Unit, units...))
	return reg
}

func encode(t *testing.T, reg *content.Registry, records ...savegame.RecordWriter) []byte {
	t.Helper()
	out := stream.NewMemStream(nil)
	require.NoError(t, savegame.Save(out, reg, savegame.DefaultWriterOptions(), records...))
	return out.Bytes()
}

func TestStorePutGet(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	reg := testRegistry(t, "Musketman", "Dragoon")
	store, err := NewStore(dir, reg, DefaultStoreOptions())
	require.NoError(t, err)
	defer store.Close()

	data := encode(t, reg, &unitRecord{Type: 1})
	entry, err := store.Put("game", data)
	require.NoError(t, err)

	assert.Equal(t, "game", entry.Name)
	assert.Equal(t, int64(len(data)), entry.Size)
	assert.Equal(t, savegame.FormatVersion, entry.Version)
	assert.Equal(t, "BLAKE3", entry.Algorithm)
	assert.Equal(t, hash.Bytes(data, hash.BLAKE3).Hash, entry.Digest)
	assert.False(t, entry.Autosave)
	require.Len(t, entry.Categories, 1)
	assert.Equal(t, CategoryInfo{
		Name:        "unit",
		Count:       2,
		Fingerprint: content.Fingerprint([]string{"Musketman", "Dragoon"}),
	}, entry.Categories[0])

	got, err := store.Get("game")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	// the catalog survives reopening
	reopened, err := NewStore(dir, reg, DefaultStoreOptions())
	require.NoError(t, err)
	defer reopened.Close()
	e, ok := reopened.Entry("game")
	require.True(t, ok)
	assert.Equal(t, entry.ID, e.ID)
	assert.True(t, entry.Created.Equal(e.Created))
}

func TestStoreLoadAcrossContentChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	old := testRegistry(t, "Musketman", "Dragoon")
	store, err := NewStore(dir, old, DefaultStoreOptions())
	require.NoError(t, err)
	_, err = store.Save("game", savegame.DefaultWriterOptions(), &unitRecord{Type: 0}, &unitRecord{Type: 1})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	cur := testRegistry(t, "Dragoon", "Cannon", "Musketman")
	store, err = NewStore(dir, cur, DefaultStoreOptions())
	require.NoError(t, err)
	defer store.Close()

	var a, b unitRecord
	base, err := store.Load("game", savegame.DefaultReaderOptions(), &a, &b)
	require.NoError(t, err)
	assert.True(t, base.AtEnd())
	assert.Equal(t, 2, a.Type)
	assert.Equal(t, 0, b.Type)
}

func TestStoreDigestMismatch(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t, "Musketman")
	store, err := NewStore(t.TempDir(), reg, DefaultStoreOptions())
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Put("game", encode(t, reg, &unitRecord{Type: 0}))
	require.NoError(t, err)

	// replaced behind the catalog's back
	require.NoError(t, store.Saves().WriteSave("game", encode(t, reg, &unitRecord{Type: savegame.NoEntity})))
	_, err = store.Get("game")
	require.ErrorIs(t, err, ErrDigestMismatch)
}

func TestStoreRejectsInvalidSave(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir(), testRegistry(t, "A"), DefaultStoreOptions())
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Put("junk", []byte("not a save"))
	require.ErrorIs(t, err, savegame.ErrBadMagic)
	assert.Empty(t, store.Entries())
}

func TestStoreVerify(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t, "Musketman", "Dragoon")
	store, err := NewStore(t.TempDir(), reg, DefaultStoreOptions())
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Save("game", savegame.DefaultWriterOptions(), &unitRecord{Type: 1}, &unitRecord{Type: savegame.NoEntity})
	require.NoError(t, err)

	nodes, err := store.Verify("game")
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "unit", nodes[0].Class)
	assert.Len(t, nodes[0].Children, 1)
	assert.Empty(t, nodes[1].Children)

	// a body cut short passes the file checksum but not the walk
	data := encode(t, reg, &unitRecord{Type: 1})
	require.NoError(t, store.Saves().WriteSave("short", data[:len(data)-1]))
	_, err = store.Verify("short")
	require.ErrorIs(t, err, savegame.ErrTruncated)
}

func TestStoreDeleteAndSync(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	reg := testRegistry(t, "Musketman")
	store, err := NewStore(dir, reg, DefaultStoreOptions())
	require.NoError(t, err)
	defer store.Close()

	data := encode(t, reg, &unitRecord{Type: 0})
	_, err = store.Put("a", data)
	require.NoError(t, err)
	_, err = store.Put("b", data)
	require.NoError(t, err)

	require.NoError(t, store.Delete("a"))
	_, ok := store.Entry("a")
	assert.False(t, ok)
	require.ErrorIs(t, store.Delete("a"), ErrSaveNotFound)

	// one file added without the catalog, one file removed behind its back
	require.NoError(t, store.Saves().WriteSave("c", data))
	require.NoError(t, os.Remove(store.Saves().Path("b")))

	added, removed, err := store.Sync()
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, removed)

	entries := store.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "c", entries[0].Name)
}

func TestStoreAutosave(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t, "Musketman")
	opts := DefaultStoreOptions()
	opts.Save.Rotation = RotationPolicy{MaxAutosaves: 1}
	opts.Save.Compress = true
	store, err := NewStore(t.TempDir(), reg, opts)
	require.NoError(t, err)
	defer store.Close()

	data := encode(t, reg, &unitRecord{Type: 0})
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	first, deleted, err := store.Autosave("auto", data, now)
	require.NoError(t, err)
	assert.Empty(t, deleted)
	assert.True(t, first.Autosave)

	second, deleted, err := store.Autosave("auto", data, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, []string{first.Name}, deleted)

	entries := store.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, second.Name, entries[0].Name)

	got, err := store.Get(second.Name)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}
