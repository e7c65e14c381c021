package savegame

import (
	"fmt"

	"github.com/TFMV/savefmt/internal/content"
)

const (
	// Magic identifies a save blob
	Magic = "SAVF"
	// FormatVersion is the version written by this package
	FormatVersion uint32 = 1
)

// NoEntity is returned for enum values that do not resolve to any entry of
// the current content tables
const NoEntity = content.NoEntity

// ClassType identifies which logical record a session is serializing.
// Values are written into save files: append only.
type ClassType uint8

const (
	ClassArea ClassType = iota
	ClassMap
	ClassPlot
	ClassUnit
	ClassUnitAI

	NumClassTypes
)

// ClassNone is the class of a session that has not been assigned one
const ClassNone ClassType = 0xFF

var classNames = [NumClassTypes]string{
	ClassArea:   "area",
	ClassMap:    "map",
	ClassPlot:   "plot",
	ClassUnit:   "unit",
	ClassUnitAI: "unit_ai",
}

func (c ClassType) String() string {
	if c < NumClassTypes {
		return classNames[c]
	}
	if c == ClassNone {
		return "none"
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// VarType is a field tag within the active record. Tags are scoped by
// convention per ClassType.
type VarType uint16

// VarEnd terminates a record
const VarEnd VarType = 0

// Kind is written after every field tag so that any value can be skipped
// without being understood.
type Kind uint8

const (
	kindNone Kind = iota
	KindInt8
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindBool
	KindString
	KindWString
	KindEnum
	KindIDInfo
	KindBlob
	KindRecord
	KindList

	numKinds
)

var kindNames = [numKinds]string{
	kindNone:    "none",
	KindInt8:    "int8",
	KindUint8:   "uint8",
	KindInt16:   "int16",
	KindUint16:  "uint16",
	KindInt32:   "int32",
	KindUint32:  "uint32",
	KindInt64:   "int64",
	KindUint64:  "uint64",
	KindBool:    "bool",
	KindString:  "string",
	KindWString: "wstring",
	KindEnum:    "enum",
	KindIDInfo:  "idinfo",
	KindBlob:    "blob",
	KindRecord:  "record",
	KindList:    "list",
}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// fixedSize returns the payload size of fixed-width kinds, or -1
func (k Kind) fixedSize() int {
	switch k {
	case KindInt8, KindUint8, KindBool:
		return 1
	case KindInt16, KindUint16:
		return 2
	case KindInt32, KindUint32:
		return 4
	case KindInt64, KindUint64, KindIDInfo:
		return 8
	case KindEnum:
		return 6
	default:
		return -1
	}
}

// IDInfo references an entity owned by another player without owning it.
// No remapping is applied to either half.
type IDInfo struct {
	Owner int32 `json:"owner"`
	ID    int32 `json:"id"`
}

// NoIDInfo is the reference to nothing
var NoIDInfo = IDInfo{Owner: -1, ID: -1}

// IsNone reports whether the reference points at nothing
func (i IDInfo) IsNone() bool {
	return i.Owner < 0 || i.ID < 0
}

func (i IDInfo) String() string {
	return fmt.Sprintf("%d:%d", i.Owner, i.ID)
}
