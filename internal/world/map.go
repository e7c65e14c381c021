package world

import (
	"fmt"

	"github.com/TFMV/savefmt/internal/content"
	"github.com/TFMV/savefmt/internal/savegame"
)

const (
	mapName savegame.VarType = iota + 1
	mapWidth
	mapHeight
	mapWrapX
	mapWrapY
	mapSeed
	mapWorldSize
	mapPlots
	mapAreas
	mapUnits
)

// Map is the root entity of a save. Plots are stored row by row.
type Map struct {
	content *content.Registry

	Name      string
	Width     int32
	Height    int32
	WrapX     bool
	WrapY     bool
	Seed      uint64
	WorldSize int
	Plots     []*Plot
	Areas     []*Area
	Units     []*Unit
}

// NewMap returns a map of empty plots. reg sizes the content-indexed arrays
// of every entity on the map.
func NewMap(reg *content.Registry, width, height int32) *Map {
	m := &Map{content: reg}
	m.reset()
	m.Width, m.Height = width, height
	m.Plots = make([]*Plot, 0, int(width)*int(height))
	for y := int32(0); y < height; y++ {
		for x := int32(0); x < width; x++ {
			m.Plots = append(m.Plots, NewPlot(reg, x, y))
		}
	}
	return m
}

func (m *Map) reset() {
	m.Name = ""
	m.Width, m.Height = 0, 0
	m.WrapX, m.WrapY = false, false
	m.Seed = 0
	m.WorldSize = savegame.NoEntity
	m.Plots = nil
	m.Areas = nil
	m.Units = nil
}

// Plot returns the plot at (x, y), or nil when outside the map
func (m *Map) Plot(x, y int32) *Plot {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return nil
	}
	return m.Plots[int(y)*int(m.Width)+int(x)]
}

// Unit finds a unit by reference
func (m *Map) Unit(ref savegame.IDInfo) *Unit {
	for _, u := range m.Units {
		if u.Owner == ref.Owner && u.ID == ref.ID {
			return u
		}
	}
	return nil
}

func (m *Map) WriteSave(w savegame.Writer) {
	w.BeginRecord(savegame.ClassMap)
	w.WriteString(mapName, m.Name, "")
	w.WriteInt32(mapWidth, m.Width, 0)
	w.WriteInt32(mapHeight, m.Height, 0)
	w.WriteBool(mapWrapX, m.WrapX, false)
	w.WriteBool(mapWrapY, m.WrapY, false)
	w.WriteUint64(mapSeed, m.Seed, 0)
	w.WriteEnum(mapWorldSize, content.WorldSize, m.WorldSize, savegame.NoEntity)
	w.WriteRecordList(mapPlots, len(m.Plots), func(i int, w savegame.Writer) {
		m.Plots[i].WriteSave(w)
	})
	w.WriteRecordList(mapAreas, len(m.Areas), func(i int, w savegame.Writer) {
		m.Areas[i].WriteSave(w)
	})
	w.WriteRecordList(mapUnits, len(m.Units), func(i int, w savegame.Writer) {
		m.Units[i].WriteSave(w)
	})
	w.EndRecord()
}

// ReadSave replaces m with the saved map. m must come from NewMap, which
// supplies the content tables.
func (m *Map) ReadSave(r savegame.Reader) error {
	m.reset()
	if err := r.BeginRecord(savegame.ClassMap); err != nil {
		return err
	}
	err := r.Fields(func(tag savegame.VarType) (err error) {
		switch tag {
		case mapName:
			m.Name, err = r.ReadString()
		case mapWidth:
			m.Width, err = r.ReadInt32()
		case mapHeight:
			m.Height, err = r.ReadInt32()
		case mapWrapX:
			m.WrapX, err = r.ReadBool()
		case mapWrapY:
			m.WrapY, err = r.ReadBool()
		case mapSeed:
			m.Seed, err = r.ReadUint64()
		case mapWorldSize:
			m.WorldSize, err = r.ReadEnum(content.WorldSize)
		case mapPlots:
			err = r.ReadRecordList(func(i, n int, r savegame.Reader) error {
				if m.Plots == nil {
					m.Plots = make([]*Plot, 0, n)
				}
				p := NewPlot(m.content, 0, 0)
				m.Plots = append(m.Plots, p)
				return p.ReadSave(r)
			})
		case mapAreas:
			err = r.ReadRecordList(func(i, n int, r savegame.Reader) error {
				a := NewArea(m.content, -1)
				m.Areas = append(m.Areas, a)
				return a.ReadSave(r)
			})
		case mapUnits:
			err = r.ReadRecordList(func(i, n int, r savegame.Reader) error {
				u := NewUnit(m.content, NoPlayer, -1)
				m.Units = append(m.Units, u)
				return u.ReadSave(r)
			})
		}
		return err
	})
	if err != nil {
		return err
	}
	if got, want := len(m.Plots), int(m.Width)*int(m.Height); got != want {
		return fmt.Errorf("%w: %d plots for a %dx%d map", savegame.ErrCorrupt, got, m.Width, m.Height)
	}
	return nil
}
