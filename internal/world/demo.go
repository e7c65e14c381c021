package world

import (
	"github.com/TFMV/savefmt/internal/content"
	"github.com/TFMV/savefmt/internal/savegame"
)

// DefaultContent returns the content tables used by the sample map when no
// content file is given
func DefaultContent() *content.Registry {
	reg := content.NewRegistry()
	for c, ids := range map[content.Category][]string{
		content.Terrain:     {"Grassland", "Plains", "Prairie", "Tundra", "Ocean", "Coast"},
		content.Feature:     {"Forest", "Jungle", "Hills"},
		content.Bonus:       {"Fish", "Furs", "Silver", "Tobacco"},
		content.Improvement: {"Farm", "Mine", "Plantation"},
		content.Route:       {"Road", "Plastered Road"},
		content.Unit:        {"Colonist", "Scout", "Musketman", "Dragoon", "Cannon", "Caravel"},
		content.UnitAI:      {"Settle", "Worker", "Scout", "Defensive", "Offensive", "Transport"},
		content.Profession:  {"Farmer", "Fisherman", "Soldier", "Pioneer", "Scout"},
		content.Promotion:   {"Combat1", "Combat2", "Woodsman", "Amphibious"},
		content.Yield:       {"Food", "Lumber", "Silver", "Furs", "Tobacco", "Cross", "Bell"},
		content.WorldSize:   {"Tiny", "Small", "Standard", "Large"},
	} {
		if err := reg.Set(c, ids...); err != nil {
			panic(err)
		}
	}
	return reg
}

func index(reg *content.Registry, c content.Category, id string) int {
	i, _ := reg.Index(c, id)
	return i
}

// Demo builds a small populated map against reg. Content missing from reg
// is left unset.
func Demo(reg *content.Registry) *Map {
	const width, height = 8, 6

	m := NewMap(reg, width, height)
	m.Name = "New World"
	m.WrapX = true
	m.Seed = 0x5eed
	m.WorldSize = index(reg, content.WorldSize, "Tiny")

	land := NewArea(reg, 1)
	sea := NewArea(reg, 2)
	sea.Water = true
	m.Areas = []*Area{land, sea}

	for _, p := range m.Plots {
		if p.X < 2 {
			p.Terrain = index(reg, content.Terrain, "Ocean")
			p.AreaID = sea.ID
			sea.NumTiles++
			continue
		}
		p.AreaID = land.ID
		land.NumTiles++
		switch (p.X + p.Y) % 3 {
		case 0:
			p.Terrain = index(reg, content.Terrain, "Grassland")
		case 1:
			p.Terrain = index(reg, content.Terrain, "Plains")
			p.Feature = index(reg, content.Feature, "Forest")
		default:
			p.Terrain = index(reg, content.Terrain, "Prairie")
		}
		if p.X == 4 && p.Y == 2 {
			p.Bonus = index(reg, content.Bonus, "Tobacco")
			p.Improvement = index(reg, content.Improvement, "Plantation")
			p.Route = index(reg, content.Route, "Road")
			p.Owner = 0
			p.River = DirectionSouth
			p.Culture.Set(0, 25)
			p.Culture.Set(3, 4)
			if i := index(reg, content.Yield, "Tobacco"); i != savegame.NoEntity {
				p.Yields.Set(i, 3)
			}
		}
		if p.X <= 4 {
			p.Revealed.Set(0, true)
		}
	}
	land.NumCities = 1
	land.Explored.Set(0, true)
	sea.Explored.Set(0, true)
	sea.Explored.Set(1, true)

	ship := NewUnit(reg, 0, 1)
	ship.Type = index(reg, content.Unit, "Caravel")
	ship.X, ship.Y = 1, 2
	ship.Moves = 4
	ship.Name = "Santa María"
	ship.AI = NewUnitAI()
	ship.AI.Type = index(reg, content.UnitAI, "Transport")
	ship.AI.Mission = MissionExplore

	soldier := NewUnit(reg, 0, 2)
	soldier.Type = index(reg, content.Unit, "Dragoon")
	soldier.Profession = index(reg, content.Profession, "Soldier")
	soldier.X, soldier.Y = 4, 2
	soldier.Damage = 15
	soldier.Experience = 7
	soldier.Flags = FlagFortified | FlagPromotionReady
	if i := index(reg, content.Promotion, "Woodsman"); i != savegame.NoEntity {
		soldier.Promotions.Set(i, true)
	}
	soldier.AI = NewUnitAI()
	soldier.AI.Type = index(reg, content.UnitAI, "Defensive")
	soldier.AI.Mission = MissionFortify
	soldier.AI.WaitTurns = 2

	scout := NewUnit(reg, 0, 3)
	scout.Type = index(reg, content.Unit, "Scout")
	scout.Profession = index(reg, content.Profession, "Scout")
	scout.X, scout.Y = 1, 2
	scout.Transport = ship.Ref()
	scout.Flags = FlagSentry

	m.Units = []*Unit{ship, soldier, scout}
	for _, u := range m.Units {
		if u.Type != savegame.NoEntity && u.X >= 2 {
			land.UnitsByType.Set(u.Type, land.UnitsByType.Get(u.Type)+1)
		}
	}
	return m
}
