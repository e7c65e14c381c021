package world

import (
	"github.com/TFMV/savefmt/internal/container"
	"github.com/TFMV/savefmt/internal/content"
	"github.com/TFMV/savefmt/internal/savegame"
)

// UnitFlags packs the boolean state of a unit. It is saved as one integer.
type UnitFlags uint32

const (
	FlagFortified UnitFlags = 1 << iota
	FlagSentry
	FlagPromotionReady
	FlagMadeAttack
	FlagBarbarian

	knownFlags = FlagFortified | FlagSentry | FlagPromotionReady | FlagMadeAttack | FlagBarbarian
)

func (f UnitFlags) Has(flag UnitFlags) bool {
	return f&flag == flag
}

// With returns f with flag set or cleared
func (f UnitFlags) With(flag UnitFlags, on bool) UnitFlags {
	if on {
		return f | flag
	}
	return f &^ flag
}

// unitFlagsFromBits rebuilds flags from a saved integer; bits this version
// does not know are dropped
func unitFlagsFromBits(v uint32) UnitFlags {
	return UnitFlags(v) & knownFlags
}

// Mission is an engine enum and is never translated
type Mission int

const (
	MissionNone Mission = iota - 1
	MissionMove
	MissionExplore
	MissionFortify
	MissionTrade
)

const (
	unitID savegame.VarType = iota + 1
	unitOwner
	unitType
	unitProfession
	unitX
	unitY
	unitDamage
	unitMoves
	unitName
	unitFlags
	unitTransport
	unitAI
	unitPromotions
	unitExperience
)

// Unit is a unit on the map
type Unit struct {
	ID         int32
	Owner      int32
	Type       int
	Profession int
	X, Y       int32
	Damage     int32
	Moves      int32
	Experience uint16
	Name       string
	Flags      UnitFlags
	Transport  savegame.IDInfo
	// AI is nil for units without AI state
	AI         *UnitAI
	Promotions *container.BoolArray
}

func NewUnit(reg *content.Registry, owner, id int32) *Unit {
	u := &Unit{Promotions: container.NewCategoryBoolArray(reg, content.Promotion)}
	u.reset()
	u.Owner, u.ID = owner, id
	return u
}

// Ref returns the reference other entities store to this unit
func (u *Unit) Ref() savegame.IDInfo {
	return savegame.IDInfo{Owner: u.Owner, ID: u.ID}
}

func (u *Unit) reset() {
	u.ID = -1
	u.Owner = NoPlayer
	u.Type = savegame.NoEntity
	u.Profession = savegame.NoEntity
	u.X, u.Y = -1, -1
	u.Damage = 0
	u.Moves = 0
	u.Experience = 0
	u.Name = ""
	u.Flags = 0
	u.Transport = savegame.NoIDInfo
	u.AI = nil
	u.Promotions.Reset()
}

func (u *Unit) WriteSave(w savegame.Writer) {
	w.BeginRecord(savegame.ClassUnit)
	w.WriteInt32(unitID, u.ID, -1)
	w.WriteInt32(unitOwner, u.Owner, NoPlayer)
	w.WriteEnum(unitType, content.Unit, u.Type, savegame.NoEntity)
	w.WriteEnum(unitProfession, content.Profession, u.Profession, savegame.NoEntity)
	w.WriteInt32(unitX, u.X, -1)
	w.WriteInt32(unitY, u.Y, -1)
	w.WriteInt32(unitDamage, u.Damage, 0)
	w.WriteInt32(unitMoves, u.Moves, 0)
	w.WriteUint16(unitExperience, u.Experience, 0)
	w.WriteWString(unitName, u.Name, "")
	w.WriteUint32(unitFlags, uint32(u.Flags), 0)
	w.WriteIDInfo(unitTransport, u.Transport, savegame.NoIDInfo)
	if u.AI != nil {
		w.WriteRecord(unitAI, u.AI)
	}
	w.WriteArray(unitPromotions, u.Promotions)
	w.EndRecord()
}

func (u *Unit) ReadSave(r savegame.Reader) error {
	u.reset()
	if err := r.BeginRecord(savegame.ClassUnit); err != nil {
		return err
	}
	return r.Fields(func(tag savegame.VarType) (err error) {
		switch tag {
		case unitID:
			u.ID, err = r.ReadInt32()
		case unitOwner:
			u.Owner, err = r.ReadInt32()
		case unitType:
			u.Type, err = r.ReadEnum(content.Unit)
		case unitProfession:
			u.Profession, err = r.ReadEnum(content.Profession)
		case unitX:
			u.X, err = r.ReadInt32()
		case unitY:
			u.Y, err = r.ReadInt32()
		case unitDamage:
			u.Damage, err = r.ReadInt32()
		case unitMoves:
			u.Moves, err = r.ReadInt32()
		case unitExperience:
			u.Experience, err = r.ReadUint16()
		case unitName:
			u.Name, err = r.ReadWString()
		case unitFlags:
			var bits uint32
			bits, err = r.ReadUint32()
			u.Flags = unitFlagsFromBits(bits)
		case unitTransport:
			u.Transport, err = r.ReadIDInfo()
		case unitAI:
			u.AI = NewUnitAI()
			err = r.ReadRecord(u.AI)
		case unitPromotions:
			err = r.ReadArray(u.Promotions)
		}
		return err
	})
}

const (
	aiType savegame.VarType = iota + 1
	aiMission
	aiTarget
	aiWaitTurns
	aiBirthmark
)

// UnitAI is the AI state of a unit, saved as a record nested in the unit
type UnitAI struct {
	Type      int
	Mission   Mission
	Target    savegame.IDInfo
	WaitTurns int16
	Birthmark int32
}

func NewUnitAI() *UnitAI {
	ai := &UnitAI{}
	ai.reset()
	return ai
}

func (ai *UnitAI) reset() {
	*ai = UnitAI{
		Type:    savegame.NoEntity,
		Mission: MissionNone,
		Target:  savegame.NoIDInfo,
	}
}

func (ai *UnitAI) WriteSave(w savegame.Writer) {
	w.BeginRecord(savegame.ClassUnitAI)
	w.WriteEnum(aiType, content.UnitAI, ai.Type, savegame.NoEntity)
	w.WriteIntEnum(aiMission, int(ai.Mission), int(MissionNone))
	w.WriteIDInfo(aiTarget, ai.Target, savegame.NoIDInfo)
	w.WriteInt16(aiWaitTurns, ai.WaitTurns, 0)
	w.WriteInt32(aiBirthmark, ai.Birthmark, 0)
	w.EndRecord()
}

func (ai *UnitAI) ReadSave(r savegame.Reader) error {
	ai.reset()
	if err := r.BeginRecord(savegame.ClassUnitAI); err != nil {
		return err
	}
	return r.Fields(func(tag savegame.VarType) (err error) {
		switch tag {
		case aiType:
			ai.Type, err = r.ReadEnum(content.UnitAI)
		case aiMission:
			var v int
			v, err = r.ReadIntEnum()
			ai.Mission = Mission(v)
		case aiTarget:
			ai.Target, err = r.ReadIDInfo()
		case aiWaitTurns:
			ai.WaitTurns, err = r.ReadInt16()
		case aiBirthmark:
			ai.Birthmark, err = r.ReadInt32()
		}
		return err
	})
}
