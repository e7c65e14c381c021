package world

import (
	"github.com/TFMV/savefmt/internal/container"
	"github.com/TFMV/savefmt/internal/content"
	"github.com/TFMV/savefmt/internal/savegame"
)

const (
	areaID savegame.VarType = iota + 1
	areaWater
	areaTiles
	areaCities
	areaExplored
	areaUnits
)

// Area is a connected landmass or body of water
type Area struct {
	ID        int32
	Water     bool
	NumTiles  int32
	NumCities int32
	// Explored holds the players that have seen the area
	Explored *container.PlayerBoolArray
	// UnitsByType counts units in the area per unit type
	UnitsByType *container.JITArray[int32]
}

func NewArea(reg *content.Registry, id int32) *Area {
	a := &Area{
		Explored:    container.NewPlayerBoolArray(),
		UnitsByType: container.NewCategoryArray[int32](reg, content.Unit, 0),
	}
	a.reset()
	a.ID = id
	return a
}

func (a *Area) reset() {
	a.ID = -1
	a.Water = false
	a.NumTiles = 0
	a.NumCities = 0
	a.Explored.Reset()
	a.UnitsByType.Reset()
}

func (a *Area) WriteSave(w savegame.Writer) {
	w.BeginRecord(savegame.ClassArea)
	w.WriteInt32(areaID, a.ID, -1)
	w.WriteBool(areaWater, a.Water, false)
	w.WriteInt32(areaTiles, a.NumTiles, 0)
	w.WriteInt32(areaCities, a.NumCities, 0)
	w.WriteArray(areaExplored, a.Explored)
	w.WriteArray(areaUnits, a.UnitsByType)
	w.EndRecord()
}

func (a *Area) ReadSave(r savegame.Reader) error {
	a.reset()
	if err := r.BeginRecord(savegame.ClassArea); err != nil {
		return err
	}
	return r.Fields(func(tag savegame.VarType) (err error) {
		switch tag {
		case areaID:
			a.ID, err = r.ReadInt32()
		case areaWater:
			a.Water, err = r.ReadBool()
		case areaTiles:
			a.NumTiles, err = r.ReadInt32()
		case areaCities:
			a.NumCities, err = r.ReadInt32()
		case areaExplored:
			err = r.ReadArray(a.Explored)
		case areaUnits:
			err = r.ReadArray(a.UnitsByType)
		}
		return err
	})
}
