package content

import "fmt"

// Category identifies an externally defined content table that enum values
// index into. Values are written into save files: append new categories at
// the end, never reorder.
type Category uint16

const (
	ArtStyle Category = iota
	Bonus
	Build
	Building
	BuildingClass
	SpecialBuilding
	CivEffect
	Civic
	CivicOption
	Civilization
	Climate
	Color
	CultureLevel
	Diplomacy
	Emphasize
	Era
	Europe
	Event
	EventTrigger
	Father
	FatherPoint
	Feature
	GameOption
	GameSpeed
	Goody
	Handicap
	Hurry
	Improvement
	LeaderHead
	Memory
	PlayerColor
	PlayerOption
	Profession
	Promotion
	Route
	SeaLevel
	Terrain
	Trait
	Unit
	UnitAI
	UnitClass
	UnitCombat
	SpecialUnit
	Victory
	Yield
	WorldSize

	NumCategories
)

// CategoryEnd terminates the list of categories in a translation section
const CategoryEnd Category = 0xFFFF

var categoryNames = [NumCategories]string{
	ArtStyle:        "art_style",
	Bonus:           "bonus",
	Build:           "build",
	Building:        "building",
	BuildingClass:   "building_class",
	SpecialBuilding: "special_building",
	CivEffect:       "civ_effect",
	Civic:           "civic",
	CivicOption:     "civic_option",
	Civilization:    "civilization",
	Climate:         "climate",
	Color:           "color",
	CultureLevel:    "culture_level",
	Diplomacy:       "diplomacy",
	Emphasize:       "emphasize",
	Era:             "era",
	Europe:          "europe",
	Event:           "event",
	EventTrigger:    "event_trigger",
	Father:          "father",
	FatherPoint:     "father_point",
	Feature:         "feature",
	GameOption:      "game_option",
	GameSpeed:       "game_speed",
	Goody:           "goody",
	Handicap:        "handicap",
	Hurry:           "hurry",
	Improvement:     "improvement",
	LeaderHead:      "leader_head",
	Memory:          "memory",
	PlayerColor:     "player_color",
	PlayerOption:    "player_option",
	Profession:      "profession",
	Promotion:       "promotion",
	Route:           "route",
	SeaLevel:        "sea_level",
	Terrain:         "terrain",
	Trait:           "trait",
	Unit:            "unit",
	UnitAI:          "unit_ai",
	UnitClass:       "unit_class",
	UnitCombat:      "unit_combat",
	SpecialUnit:     "special_unit",
	Victory:         "victory",
	Yield:           "yield",
	WorldSize:       "world_size",
}

// String returns the stable name used in content files
func (c Category) String() string {
	if c < NumCategories {
		return categoryNames[c]
	}
	if c == CategoryEnd {
		return "end"
	}
	return fmt.Sprintf("category(%d)", uint16(c))
}

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	return c < NumCategories
}

// ParseCategory maps a content file name back to its Category
func ParseCategory(name string) (Category, error) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}
