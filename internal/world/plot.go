package world

import (
	"github.com/TFMV/savefmt/internal/container"
	"github.com/TFMV/savefmt/internal/content"
	"github.com/TFMV/savefmt/internal/savegame"
)

// Direction is an engine enum and is never translated
type Direction int

const (
	DirectionNone Direction = iota - 1
	DirectionNorth
	DirectionEast
	DirectionSouth
	DirectionWest
)

// NoPlayer marks an unowned plot or unit
const NoPlayer int32 = -1

const (
	plotX savegame.VarType = iota + 1
	plotY
	plotTerrain
	plotFeature
	plotBonus
	plotImprovement
	plotRoute
	plotOwner
	plotArea
	plotRiver
	plotRevealed
	plotCulture
	plotYields
)

// Plot is one map tile
type Plot struct {
	X, Y        int32
	Terrain     int
	Feature     int
	Bonus       int
	Improvement int
	Route       int
	Owner       int32
	AreaID      int32
	River       Direction
	Revealed    *container.PlayerBoolArray
	Culture     *container.JITArray[int32]
	Yields      *container.JITArray[int16]
}

// NewPlot returns an empty plot at (x, y)
func NewPlot(reg *content.Registry, x, y int32) *Plot {
	p := &Plot{
		Revealed: container.NewPlayerBoolArray(),
		Culture:  container.NewJITArray[int32](container.MaxPlayers, 0),
		Yields:   container.NewCategoryArray[int16](reg, content.Yield, 0),
	}
	p.reset()
	p.X, p.Y = x, y
	return p
}

func (p *Plot) reset() {
	p.X, p.Y = 0, 0
	p.Terrain = savegame.NoEntity
	p.Feature = savegame.NoEntity
	p.Bonus = savegame.NoEntity
	p.Improvement = savegame.NoEntity
	p.Route = savegame.NoEntity
	p.Owner = NoPlayer
	p.AreaID = -1
	p.River = DirectionNone
	p.Revealed.Reset()
	p.Culture.Reset()
	p.Yields.Reset()
}

func (p *Plot) WriteSave(w savegame.Writer) {
	w.BeginRecord(savegame.ClassPlot)
	w.WriteInt32(plotX, p.X, 0)
	w.WriteInt32(plotY, p.Y, 0)
	w.WriteEnum(plotTerrain, content.Terrain, p.Terrain, savegame.NoEntity)
	w.WriteEnum(plotFeature, content.Feature, p.Feature, savegame.NoEntity)
	w.WriteEnum(plotBonus, content.Bonus, p.Bonus, savegame.NoEntity)
	w.WriteEnum(plotImprovement, content.Improvement, p.Improvement, savegame.NoEntity)
	w.WriteEnum(plotRoute, content.Route, p.Route, savegame.NoEntity)
	w.WriteInt32(plotOwner, p.Owner, NoPlayer)
	w.WriteInt32(plotArea, p.AreaID, -1)
	w.WriteIntEnum(plotRiver, int(p.River), int(DirectionNone))
	w.WriteArray(plotRevealed, p.Revealed)
	w.WriteArray(plotCulture, p.Culture)
	w.WriteArray(plotYields, p.Yields)
	w.EndRecord()
}

func (p *Plot) ReadSave(r savegame.Reader) error {
	p.reset()
	if err := r.BeginRecord(savegame.ClassPlot); err != nil {
		return err
	}
	return r.Fields(func(tag savegame.VarType) (err error) {
		switch tag {
		case plotX:
			p.X, err = r.ReadInt32()
		case plotY:
			p.Y, err = r.ReadInt32()
		case plotTerrain:
			p.Terrain, err = r.ReadEnum(content.Terrain)
		case plotFeature:
			p.Feature, err = r.ReadEnum(content.Feature)
		case plotBonus:
			p.Bonus, err = r.ReadEnum(content.Bonus)
		case plotImprovement:
			p.Improvement, err = r.ReadEnum(content.Improvement)
		case plotRoute:
			p.Route, err = r.ReadEnum(content.Route)
		case plotOwner:
			p.Owner, err = r.ReadInt32()
		case plotArea:
			p.AreaID, err = r.ReadInt32()
		case plotRiver:
			var v int
			v, err = r.ReadIntEnum()
			p.River = Direction(v)
		case plotRevealed:
			err = r.ReadArray(p.Revealed)
		case plotCulture:
			err = r.ReadArray(p.Culture)
		case plotYields:
			err = r.ReadArray(p.Yields)
		}
		return err
	})
}
