package savegame

import (
	"fmt"
	"unicode/utf16"

	"github.com/TFMV/savefmt/internal/content"
	"github.com/TFMV/savefmt/internal/stream"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// ReaderOptions configures a load
type ReaderOptions struct {
	// MaxVersion is the newest header version accepted
	MaxVersion uint32
	Logger     log.Logger
}

// DefaultReaderOptions returns the options used when none are given
func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{MaxVersion: FormatVersion}
}

// ReaderBase owns the state of one load operation: an in-memory copy of the
// stream, the read cursor and the translation tables.
type ReaderBase struct {
	cur     *stream.Cursor
	content *content.Registry
	version uint32
	tables  map[content.Category]*Translation
	logger  log.Logger

	// kind of the field whose tag has been read but whose value has not
	pending    Kind
	pendingTag VarType

	err    error
	warned map[string]struct{}
}

// NewReaderBase loads the stream into memory, checks the header and reads
// the translation section. Field reads may start once it returns.
func NewReaderBase(in stream.Stream, reg *content.Registry, opts ReaderOptions) (*ReaderBase, error) {
	if opts.Logger == nil {
		opts.Logger = log.NewNopLogger()
	}
	if opts.MaxVersion == 0 {
		opts.MaxVersion = FormatVersion
	}

	cur, err := stream.Load(in)
	if err != nil {
		return nil, err
	}

	magic, err := cur.Next(len(Magic))
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if string(magic) != Magic {
		return nil, fmt.Errorf("%w: magic %q", ErrBadMagic, magic)
	}
	version, err := cur.Uint32()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if version == 0 || version > opts.MaxVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	tables, err := readTranslationTable(cur, reg)
	if err != nil {
		return nil, err
	}

	return &ReaderBase{
		cur:     cur,
		content: reg,
		version: version,
		tables:  tables,
		logger:  opts.Logger,
		warned:  make(map[string]struct{}),
	}, nil
}

// Reader returns a root session
func (b *ReaderBase) Reader() Reader {
	return Reader{class: ClassNone, base: b}
}

// Version returns the header version of the save
func (b *ReaderBase) Version() uint32 {
	return b.version
}

// AtEnd reports whether the whole body has been consumed
func (b *ReaderBase) AtEnd() bool {
	return b.cur.AtEnd()
}

// Err returns the first fatal error met by any session
func (b *ReaderBase) Err() error {
	return b.err
}

// Translation returns the translation for category c, if the save has one
func (b *ReaderBase) Translation(c content.Category) (*Translation, bool) {
	t, ok := b.tables[c]
	return t, ok
}

// Categories returns the categories present in the translation section
func (b *ReaderBase) Categories() []content.Category {
	out := make([]content.Category, 0, len(b.tables))
	for c := range b.tables {
		out = append(out, c)
	}
	sortCategories(out)
	return out
}

// ConvertIndex maps a saved index of category c to the current index
func (b *ReaderBase) ConvertIndex(c content.Category, old int) (int, error) {
	if old == content.NoEntity {
		return content.NoEntity, nil
	}
	t, ok := b.tables[c]
	if !ok {
		return content.NoEntity, b.fail(fmt.Errorf("%w: no table for category %s", ErrMalformedTable, c))
	}
	cur := t.Convert(old)
	if cur == content.NoEntity {
		b.warnUnresolved(t, old)
	}
	return cur, nil
}

func (b *ReaderBase) warnUnresolved(t *Translation, old int) {
	key := fmt.Sprintf("%d/%d", t.Category, old)
	if _, ok := b.warned[key]; ok {
		return
	}
	b.warned[key] = struct{}{}
	id := "<out of range>"
	if old >= 0 && old < len(t.Saved) {
		id = t.Saved[old]
	}
	level.Warn(b.logger).Log("msg", "identifier not in current content", "category", t.Category, "index", old, "id", id)
}

// fail records the first fatal error; every later read returns it
func (b *ReaderBase) fail(err error) error {
	if b.err == nil {
		b.err = err
	}
	return b.err
}

// take consumes the pending field if it has kind k
func (b *ReaderBase) take(k Kind) error {
	if b.err != nil {
		return b.err
	}
	if b.pending == kindNone {
		return b.fail(fmt.Errorf("%w: read of %s with no field pending", ErrCorrupt, k))
	}
	if b.pending != k {
		return b.fail(fmt.Errorf("%w: field %d is %s, read as %s", ErrKindMismatch, b.pendingTag, b.pending, k))
	}
	b.pending = kindNone
	return nil
}

func (b *ReaderBase) next(n int) ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	p, err := b.cur.Next(n)
	if err != nil {
		return nil, b.fail(err)
	}
	return p, nil
}

func (b *ReaderBase) uvarint() (uint64, error) {
	if b.err != nil {
		return 0, b.err
	}
	v, err := b.cur.Uvarint()
	if err != nil {
		return 0, b.fail(err)
	}
	return v, nil
}

// RecordReader is implemented by entities read as nested records
type RecordReader interface {
	ReadSave(r Reader) error
}

// Unmarshaler is implemented by containers read from one field
type Unmarshaler interface {
	UnmarshalSave(r Reader) error
}

// Reader is a per-call session over a ReaderBase. Copies share the cursor
// but each carries its own class.
type Reader struct {
	class ClassType
	base  *ReaderBase
}

// NewReader returns a root session over b
func NewReader(b *ReaderBase) Reader {
	return b.Reader()
}

// AssignClassType sets the class used in diagnostics
func (r *Reader) AssignClassType(c ClassType) {
	r.class = c
}

func (r Reader) ClassType() ClassType {
	return r.class
}

// Version returns the header version of the save being read
func (r Reader) Version() uint32 {
	return r.base.version
}

// BeginRecord assigns the class and checks the record marker
func (r *Reader) BeginRecord(c ClassType) error {
	r.class = c
	p, err := r.base.next(1)
	if err != nil {
		return fmt.Errorf("%s: %w", c, err)
	}
	if got := ClassType(p[0]); got != c {
		return r.base.fail(fmt.Errorf("%w: expected %s, found %s", ErrClassMismatch, c, got))
	}
	return nil
}

// Fields reads (tag, value) pairs until the end tag. fn is called once per
// tag and reads the value with the matching typed read. Values fn does not
// read, such as fields removed from the record, are skipped.
func (r Reader) Fields(fn func(tag VarType) error) error {
	b := r.base
	for {
		p, err := b.next(2)
		if err != nil {
			return fmt.Errorf("%s: %w", r.class, err)
		}
		tag := VarType(order.Uint16(p))
		if tag == VarEnd {
			return nil
		}
		p, err = b.next(1)
		if err != nil {
			return fmt.Errorf("%s field %d: %w", r.class, tag, err)
		}
		b.pending, b.pendingTag = Kind(p[0]), tag

		if err := fn(tag); err != nil {
			b.fail(err)
			return fmt.Errorf("%s field %d: %w", r.class, tag, err)
		}
		if b.pending != kindNone {
			kind := b.pending
			b.pending = kindNone
			level.Debug(b.logger).Log("msg", "skipping unread field", "class", r.class, "tag", tag, "kind", kind)
			if err := b.skipValue(kind, 0); err != nil {
				return fmt.Errorf("%s field %d: %w", r.class, tag, b.fail(err))
			}
		}
	}
}

func (r Reader) fixed(k Kind) ([]byte, error) {
	if err := r.base.take(k); err != nil {
		return nil, err
	}
	return r.base.next(k.fixedSize())
}

func (r Reader) ReadInt8() (int8, error) {
	p, err := r.fixed(KindInt8)
	if err != nil {
		return 0, err
	}
	return int8(p[0]), nil
}

func (r Reader) ReadUint8() (uint8, error) {
	p, err := r.fixed(KindUint8)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

func (r Reader) ReadInt16() (int16, error) {
	p, err := r.fixed(KindInt16)
	if err != nil {
		return 0, err
	}
	return int16(order.Uint16(p)), nil
}

func (r Reader) ReadUint16() (uint16, error) {
	p, err := r.fixed(KindUint16)
	if err != nil {
		return 0, err
	}
	return order.Uint16(p), nil
}

func (r Reader) ReadInt32() (int32, error) {
	p, err := r.fixed(KindInt32)
	if err != nil {
		return 0, err
	}
	return int32(order.Uint32(p)), nil
}

func (r Reader) ReadUint32() (uint32, error) {
	p, err := r.fixed(KindUint32)
	if err != nil {
		return 0, err
	}
	return order.Uint32(p), nil
}

func (r Reader) ReadInt64() (int64, error) {
	p, err := r.fixed(KindInt64)
	if err != nil {
		return 0, err
	}
	return int64(order.Uint64(p)), nil
}

func (r Reader) ReadUint64() (uint64, error) {
	p, err := r.fixed(KindUint64)
	if err != nil {
		return 0, err
	}
	return order.Uint64(p), nil
}

func (r Reader) ReadBool() (bool, error) {
	p, err := r.fixed(KindBool)
	if err != nil {
		return false, err
	}
	return p[0] != 0, nil
}

func (r Reader) ReadString() (string, error) {
	if err := r.base.take(KindString); err != nil {
		return "", err
	}
	n, err := r.base.uvarint()
	if err != nil {
		return "", err
	}
	if n > uint64(r.base.cur.Remaining()) {
		return "", r.base.fail(fmt.Errorf("string of %d bytes: %w", n, ErrTruncated))
	}
	p, err := r.base.next(int(n))
	if err != nil {
		return "", err
	}
	return string(p), nil
}

func (r Reader) ReadWString() (string, error) {
	if err := r.base.take(KindWString); err != nil {
		return "", err
	}
	n, err := r.base.uvarint()
	if err != nil {
		return "", err
	}
	if n > uint64(r.base.cur.Remaining()/2) {
		return "", r.base.fail(fmt.Errorf("wide string of %d units: %w", n, ErrTruncated))
	}
	p, err := r.base.next(int(n) * 2)
	if err != nil {
		return "", err
	}
	units := make([]uint16, n)
	for i := range units {
		units[i] = order.Uint16(p[2*i:])
	}
	return string(utf16.Decode(units)), nil
}

// ReadIntEnum reads an engine enum written with WriteIntEnum
func (r Reader) ReadIntEnum() (int, error) {
	v, err := r.ReadInt32()
	return int(v), err
}

// ReadEnum reads a content-backed enum of category c and translates it to
// the current content order. Identifiers that no longer exist yield
// NoEntity without an error.
func (r Reader) ReadEnum(c content.Category) (int, error) {
	p, err := r.fixed(KindEnum)
	if err != nil {
		return content.NoEntity, err
	}
	saved := content.Category(order.Uint16(p))
	if saved != c {
		return content.NoEntity, r.base.fail(fmt.Errorf("%w: enum of %s read as %s", ErrKindMismatch, saved, c))
	}
	return r.base.ConvertIndex(c, int(int32(order.Uint32(p[2:]))))
}

func (r Reader) ReadIDInfo() (IDInfo, error) {
	p, err := r.fixed(KindIDInfo)
	if err != nil {
		return NoIDInfo, err
	}
	return IDInfo{
		Owner: int32(order.Uint32(p)),
		ID:    int32(order.Uint32(p[4:])),
	}, nil
}

// ReadArray reads a container written with WriteArray. Payload bytes the
// container does not consume are skipped.
func (r Reader) ReadArray(u Unmarshaler) error {
	b := r.base
	if err := b.take(KindBlob); err != nil {
		return err
	}
	p, err := b.next(4)
	if err != nil {
		return err
	}
	n := int(order.Uint32(p))
	if n > b.cur.Remaining() {
		return b.fail(fmt.Errorf("array of %d bytes: %w", n, ErrTruncated))
	}
	end := b.cur.Pos() + n
	if err := u.UnmarshalSave(r); err != nil {
		return b.fail(err)
	}
	switch pos := b.cur.Pos(); {
	case pos > end:
		return b.fail(fmt.Errorf("%w: array read %d bytes past its end", ErrCorrupt, pos-end))
	case pos < end:
		if _, err := b.next(end - pos); err != nil {
			return err
		}
	}
	return nil
}

// ReadRecord reads a nested entity written with WriteRecord
func (r Reader) ReadRecord(rec RecordReader) error {
	if err := r.base.take(KindRecord); err != nil {
		return err
	}
	return rec.ReadSave(r)
}

// ReadRecordList reads a list written with WriteRecordList. fn is called
// once per record with the record's position and the list length, and
// must read exactly one record.
func (r Reader) ReadRecordList(fn func(i, n int, r Reader) error) error {
	b := r.base
	if err := b.take(KindList); err != nil {
		return err
	}
	n, err := b.uvarint()
	if err != nil {
		return err
	}
	// every record takes at least a class byte and an end tag
	if n > uint64(b.cur.Remaining()/3) {
		return b.fail(fmt.Errorf("%w: list of %d records in %d bytes", ErrCorrupt, n, b.cur.Remaining()))
	}
	for i := 0; i < int(n); i++ {
		if err := fn(i, int(n), r); err != nil {
			return b.fail(err)
		}
	}
	return nil
}

// GetUvarint reads an untagged varint inside a container payload
func (r Reader) GetUvarint() (uint64, error) {
	return r.base.uvarint()
}

// GetIndex reads an untagged content index written with PutIndex and
// translates it to the current content order
func (r Reader) GetIndex(c content.Category) (int, error) {
	p, err := r.base.next(4)
	if err != nil {
		return content.NoEntity, err
	}
	return r.base.ConvertIndex(c, int(int32(order.Uint32(p))))
}

// ConvertIndex maps a positional index of category c to the current
// content order
func (r Reader) ConvertIndex(c content.Category, old int) (int, error) {
	if r.base.err != nil {
		return content.NoEntity, r.base.err
	}
	return r.base.ConvertIndex(c, old)
}

// GetBytes reads n raw bytes inside a container payload. The slice must
// not be modified.
func (r Reader) GetBytes(n int) ([]byte, error) {
	return r.base.next(n)
}
