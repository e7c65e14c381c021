package savegame

import (
	"errors"

	"github.com/TFMV/savefmt/internal/stream"
)

var (
	// ErrTruncated is returned when a value needs more bytes than remain
	ErrTruncated = stream.ErrTruncated
	// ErrBadMagic is returned when a blob does not start with Magic
	ErrBadMagic = errors.New("not a save file")
	// ErrUnsupportedVersion is returned for blobs newer than FormatVersion
	ErrUnsupportedVersion = errors.New("unsupported save format version")
	// ErrMalformedTable is returned when the translation section is ambiguous or incomplete
	ErrMalformedTable = errors.New("malformed translation table")
	// ErrKindMismatch is returned when a typed read meets a value of another kind
	ErrKindMismatch = errors.New("value kind mismatch")
	// ErrClassMismatch is returned when a record starts with an unexpected class
	ErrClassMismatch = errors.New("record class mismatch")
	// ErrCorrupt is returned for structurally invalid data
	ErrCorrupt = errors.New("corrupt save")
	// ErrFinished is returned when a writer is finished twice
	ErrFinished = errors.New("save already finished")
)
