package world

import (
	"testing"

	"github.com/TFMV/savefmt/internal/content"
	"github.com/TFMV/savefmt/internal/savegame"
	"github.com/TFMV/savefmt/internal/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type writeFunc func(w savegame.Writer)

func (f writeFunc) WriteSave(w savegame.Writer) { f(w) }

func save(t *testing.T, reg *content.Registry, records ...savegame.RecordWriter) []byte {
	t.Helper()
	out := stream.NewMemStream(nil)
	require.NoError(t, savegame.Save(out, reg, savegame.DefaultWriterOptions(), records...))
	return out.Bytes()
}

func load(t *testing.T, reg *content.Registry, data []byte, records ...savegame.RecordReader) error {
	t.Helper()
	_, err := savegame.Load(stream.NewMemStream(data), reg, savegame.DefaultReaderOptions(), records...)
	return err
}

func TestDemoRoundTrip(t *testing.T) {
	t.Parallel()

	reg := DefaultContent()
	m := Demo(reg)
	data := save(t, reg, m)

	got := NewMap(reg, 0, 0)
	require.NoError(t, load(t, reg, data, got))
	assert.Equal(t, m, got)

	p := got.Plot(4, 2)
	require.NotNil(t, p)
	assert.Equal(t, DirectionSouth, p.River)
	assert.Equal(t, int32(25), p.Culture.Get(0))
	assert.Nil(t, got.Plot(8, 0))

	scout := got.Unit(savegame.IDInfo{Owner: 0, ID: 3})
	require.NotNil(t, scout)
	assert.Equal(t, got.Unit(scout.Transport), got.Units[0])
	assert.Equal(t, "Santa María", got.Units[0].Name)
}

func TestEmptyEntitiesAreSmall(t *testing.T) {
	t.Parallel()

	reg := DefaultContent()
	base := save(t, reg)
	data := save(t, reg, NewPlot(reg, 0, 0), NewUnit(reg, NoPlayer, -1), NewArea(reg, -1))
	// each record is a class byte and an end tag
	assert.Equal(t, len(base)+3*3, len(data))
}

func TestLoadAfterContentChange(t *testing.T) {
	t.Parallel()

	saved := DefaultContent()
	m := Demo(saved)
	data := save(t, saved, m)

	// a content update reordered units, dropped a promotion and a terrain
	cur := content.NewRegistry()
	for _, c := range saved.Categories() {
		ids := saved.Identifiers(c)
		switch c {
		case content.Unit:
			ids = []string{"Cannon", "Dragoon", "Caravel", "Scout", "Colonist", "Musketman"}
		case content.Promotion:
			ids = []string{"Combat1", "Combat2", "Amphibious"}
		case content.Terrain:
			ids = []string{"Ocean", "Grassland", "Plains", "Tundra", "Coast"}
		}
		require.NoError(t, cur.Set(c, ids...))
	}

	got := NewMap(cur, 0, 0)
	require.NoError(t, load(t, cur, data, got))

	unitName := func(i int) string {
		if i == savegame.NoEntity {
			return ""
		}
		return cur.Identifiers(content.Unit)[i]
	}
	assert.Equal(t, "Caravel", unitName(got.Units[0].Type))
	assert.Equal(t, "Dragoon", unitName(got.Units[1].Type))
	assert.Equal(t, "Scout", unitName(got.Units[2].Type))
	assert.Equal(t, 0, got.Units[1].Promotions.Count(), "Woodsman no longer exists")

	dragoon, _ := cur.Index(content.Unit, "Dragoon")
	assert.Equal(t, int32(1), got.Areas[0].UnitsByType.Get(dragoon))

	prairie := 0
	for _, p := range got.Plots {
		if p.AreaID == 1 && p.Terrain == savegame.NoEntity {
			prairie++
		}
	}
	assert.Positive(t, prairie, "removed terrain reads as no entity")
	assert.Equal(t, 0, got.Plot(0, 0).Terrain, "ocean moved to index 0")
}

func TestUnitFlags(t *testing.T) {
	t.Parallel()

	var f UnitFlags
	f = f.With(FlagSentry, true).With(FlagBarbarian, true)
	assert.True(t, f.Has(FlagSentry))
	assert.False(t, f.Has(FlagFortified))
	f = f.With(FlagSentry, false)
	assert.Equal(t, FlagBarbarian, f)

	reg := DefaultContent()
	u := NewUnit(reg, 1, 9)
	u.Flags = FlagSentry | 1<<20
	data := save(t, reg, u)

	got := NewUnit(reg, NoPlayer, -1)
	require.NoError(t, load(t, reg, data, got))
	assert.Equal(t, FlagSentry, got.Flags, "unknown bits are dropped")
	assert.Nil(t, got.AI)
}

func TestPlotSkipsUnknownFields(t *testing.T) {
	t.Parallel()

	reg := DefaultContent()
	data := save(t, reg, writeFunc(func(w savegame.Writer) {
		w.BeginRecord(savegame.ClassPlot)
		w.WriteInt32(plotX, 3, 0)
		w.WriteString(900, "from a newer version", "")
		w.WriteRecord(901, NewUnitAI())
		w.WriteInt32(plotY, 4, 0)
		w.EndRecord()
	}))

	p := NewPlot(reg, 0, 0)
	require.NoError(t, load(t, reg, data, p))
	assert.Equal(t, int32(3), p.X)
	assert.Equal(t, int32(4), p.Y)
	assert.Equal(t, savegame.NoEntity, p.Terrain)
}

func TestMapPlotCountMismatch(t *testing.T) {
	t.Parallel()

	reg := DefaultContent()
	m := NewMap(reg, 2, 2)
	m.Plots = m.Plots[:3]
	data := save(t, reg, m)

	err := load(t, reg, data, NewMap(reg, 0, 0))
	require.ErrorIs(t, err, savegame.ErrCorrupt)
}

func TestNestedUnitAI(t *testing.T) {
	t.Parallel()

	reg := DefaultContent()
	u := NewUnit(reg, 2, 5)
	u.AI = NewUnitAI()
	u.AI.Target = savegame.IDInfo{Owner: 1, ID: 77}
	u.AI.Birthmark = 12345
	u.Moves = 3
	data := save(t, reg, u)

	got := NewUnit(reg, NoPlayer, -1)
	require.NoError(t, load(t, reg, data, got))
	assert.Equal(t, u, got)
	assert.Equal(t, savegame.IDInfo{Owner: 2, ID: 5}, got.Ref())
}
