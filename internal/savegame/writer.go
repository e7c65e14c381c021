package savegame

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/TFMV/savefmt/internal/content"
	"github.com/TFMV/savefmt/internal/stream"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// WriterOptions configures a save
type WriterOptions struct {
	// Version is written to the header
	Version uint32
	// BufferSize is the initial capacity of the body buffer
	BufferSize int
	Logger     log.Logger
}

// DefaultWriterOptions returns the options used when none are given
func DefaultWriterOptions() WriterOptions {
	return WriterOptions{
		Version:    FormatVersion,
		BufferSize: stream.DefaultBufferSize,
	}
}

// WriterBase owns the state of one save operation. Create exactly one per
// save and hand out Writer sessions from it.
type WriterBase struct {
	out      stream.Stream
	content  *content.Registry
	body     *stream.Buffer
	used     map[content.Category]struct{}
	version  uint32
	logger   log.Logger
	finished bool
}

// NewWriterBase prepares a save to out. Enum values are validated against reg.
func NewWriterBase(out stream.Stream, reg *content.Registry, opts WriterOptions) *WriterBase {
	if opts.Logger == nil {
		opts.Logger = log.NewNopLogger()
	}
	if opts.Version == 0 {
		opts.Version = FormatVersion
	}
	return &WriterBase{
		out:     out,
		content: reg,
		body:    stream.NewBuffer(opts.BufferSize),
		used:    make(map[content.Category]struct{}),
		version: opts.Version,
		logger:  opts.Logger,
	}
}

// Writer returns a root session
func (b *WriterBase) Writer() Writer {
	return Writer{class: ClassNone, base: b}
}

// Finish writes header, translation table and body to the stream in a
// single write.
func (b *WriterBase) Finish() error {
	if b.finished {
		return ErrFinished
	}
	b.finished = true

	out := stream.NewBuffer(b.body.Len() + 1024)
	out.Append([]byte(Magic))
	out.AppendUint32(b.version)
	writeTranslationTable(out, b.content, b.used)
	tableSize := out.Len()
	out.Append(b.body.Bytes())

	if err := out.FlushTo(b.out); err != nil {
		return err
	}
	level.Debug(b.logger).Log("msg", "save written", "categories", len(b.used), "table_bytes", tableSize, "body_bytes", b.body.Len())
	return nil
}

func (b *WriterBase) markUsed(class ClassType, c content.Category, v int) {
	if v == content.NoEntity {
		if _, ok := b.content.Table(c); ok {
			b.used[c] = struct{}{}
		}
		return
	}
	n := b.content.Len(c)
	if v < 0 || v >= n {
		panic(fmt.Sprintf("savegame: %s: %s index %d outside content table of %d", class, c, v, n))
	}
	b.used[c] = struct{}{}
}

// Marshaler is implemented by containers that are written as one field
type Marshaler interface {
	// HasContent reports whether any element differs from its default
	HasContent() bool
	MarshalSave(w Writer)
}

// RecordWriter is implemented by entities written as nested records
type RecordWriter interface {
	WriteSave(w Writer)
}

// Writer is a per-call session over a WriterBase. Copies share the buffer
// but each carries its own class, so a nested entity can assign its class
// without affecting the caller.
type Writer struct {
	class ClassType
	base  *WriterBase
}

// NewWriter returns a root session over b
func NewWriter(b *WriterBase) Writer {
	return b.Writer()
}

// AssignClassType sets the class used in diagnostics
func (w *Writer) AssignClassType(c ClassType) {
	w.class = c
}

func (w Writer) ClassType() ClassType {
	return w.class
}

// BeginRecord assigns the class and writes the record marker
func (w *Writer) BeginRecord(c ClassType) {
	if c >= NumClassTypes {
		panic(fmt.Sprintf("savegame: begin record with invalid class %s", c))
	}
	w.class = c
	w.base.body.AppendByte(byte(c))
}

// EndRecord writes the terminal sentinel
func (w Writer) EndRecord() {
	w.base.body.AppendUint16(uint16(VarEnd))
}

func (w Writer) field(tag VarType, k Kind) {
	if tag == VarEnd {
		panic(fmt.Sprintf("savegame: %s: field written with the end tag", w.class))
	}
	w.base.body.AppendUint16(uint16(tag))
	w.base.body.AppendByte(byte(k))
}

func (w Writer) WriteInt8(tag VarType, v, def int8) {
	if v != def {
		w.field(tag, KindInt8)
		w.base.body.AppendByte(byte(v))
	}
}

func (w Writer) WriteUint8(tag VarType, v, def uint8) {
	if v != def {
		w.field(tag, KindUint8)
		w.base.body.AppendByte(v)
	}
}

func (w Writer) WriteInt16(tag VarType, v, def int16) {
	if v != def {
		w.field(tag, KindInt16)
		w.base.body.AppendUint16(uint16(v))
	}
}

func (w Writer) WriteUint16(tag VarType, v, def uint16) {
	if v != def {
		w.field(tag, KindUint16)
		w.base.body.AppendUint16(v)
	}
}

func (w Writer) WriteInt32(tag VarType, v, def int32) {
	if v != def {
		w.field(tag, KindInt32)
		w.base.body.AppendUint32(uint32(v))
	}
}

func (w Writer) WriteUint32(tag VarType, v, def uint32) {
	if v != def {
		w.field(tag, KindUint32)
		w.base.body.AppendUint32(v)
	}
}

func (w Writer) WriteInt64(tag VarType, v, def int64) {
	if v != def {
		w.field(tag, KindInt64)
		w.base.body.AppendUint64(uint64(v))
	}
}

func (w Writer) WriteUint64(tag VarType, v, def uint64) {
	if v != def {
		w.field(tag, KindUint64)
		w.base.body.AppendUint64(v)
	}
}

func (w Writer) WriteBool(tag VarType, v, def bool) {
	if v != def {
		w.field(tag, KindBool)
		var b byte
		if v {
			b = 1
		}
		w.base.body.AppendByte(b)
	}
}

// WriteString writes a narrow string as length-prefixed bytes
func (w Writer) WriteString(tag VarType, v, def string) {
	if v != def {
		w.field(tag, KindString)
		w.base.body.AppendUvarint(uint64(len(v)))
		w.base.body.Append([]byte(v))
	}
}

// WriteWString writes a wide string as length-prefixed UTF-16 code units.
// v must be valid UTF-8.
func (w Writer) WriteWString(tag VarType, v, def string) {
	if v != def {
		if !utf8.ValidString(v) {
			panic(fmt.Sprintf("savegame: %s: wide string %q is not valid UTF-8", w.class, v))
		}
		w.field(tag, KindWString)
		units := utf16.Encode([]rune(v))
		w.base.body.AppendUvarint(uint64(len(units)))
		for _, u := range units {
			w.base.body.AppendUint16(u)
		}
	}
}

// WriteIntEnum writes an engine enum whose values never depend on content
// tables. It is stored as its raw integer.
func (w Writer) WriteIntEnum(tag VarType, v, def int) {
	w.WriteInt32(tag, int32(v), int32(def))
}

// WriteEnum writes a content-backed enum index of category c. The index is
// translated on load. Writing an index outside the current content table
// is a programming error and panics.
func (w Writer) WriteEnum(tag VarType, c content.Category, v, def int) {
	if v == def {
		return
	}
	w.base.markUsed(w.class, c, v)
	w.field(tag, KindEnum)
	w.base.body.AppendUint16(uint16(c))
	w.base.body.AppendUint32(uint32(int32(v)))
}

func (w Writer) WriteIDInfo(tag VarType, v, def IDInfo) {
	if v != def {
		w.field(tag, KindIDInfo)
		w.base.body.AppendUint32(uint32(v.Owner))
		w.base.body.AppendUint32(uint32(v.ID))
	}
}

// WriteArray writes a container as a length-prefixed blob. Containers
// without content are omitted.
func (w Writer) WriteArray(tag VarType, m Marshaler) {
	if !m.HasContent() {
		return
	}
	w.field(tag, KindBlob)
	off := w.base.body.ReserveUint32()
	m.MarshalSave(w)
	w.base.body.PatchUint32(off, uint32(w.base.body.Len()-off-4))
}

// WriteRecord writes a nested entity. rec must begin and end its own record.
func (w Writer) WriteRecord(tag VarType, rec RecordWriter) {
	w.field(tag, KindRecord)
	rec.WriteSave(w)
}

// WriteRecordList writes n nested records. fn must write exactly one
// record per call. An empty list is omitted.
func (w Writer) WriteRecordList(tag VarType, n int, fn func(i int, w Writer)) {
	if n == 0 {
		return
	}
	w.field(tag, KindList)
	w.base.body.AppendUvarint(uint64(n))
	for i := 0; i < n; i++ {
		fn(i, w)
	}
}

// PutUvarint writes an untagged varint inside a container payload
func (w Writer) PutUvarint(v uint64) {
	w.base.body.AppendUvarint(v)
}

// PutIndex writes an untagged content index of category c. Like WriteEnum,
// it is translated on load.
func (w Writer) PutIndex(c content.Category, v int) {
	w.base.markUsed(w.class, c, v)
	w.base.body.AppendUint32(uint32(int32(v)))
}

// UseCategory marks c as used without writing an index, for containers
// that encode content indices positionally
func (w Writer) UseCategory(c content.Category) {
	if _, ok := w.base.content.Table(c); !ok {
		panic(fmt.Sprintf("savegame: %s: category %s has no content table", w.class, c))
	}
	w.base.used[c] = struct{}{}
}

// PutBytes writes raw bytes inside a container payload
func (w Writer) PutBytes(p []byte) {
	w.base.body.Append(p)
}
