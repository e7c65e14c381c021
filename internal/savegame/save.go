package savegame

import (
	"fmt"

	"github.com/TFMV/savefmt/internal/content"
	"github.com/TFMV/savefmt/internal/stream"
)

// Save writes records in order to out as one complete save
func Save(out stream.Stream, reg *content.Registry, opts WriterOptions, records ...RecordWriter) error {
	base := NewWriterBase(out, reg, opts)
	for _, rec := range records {
		rec.WriteSave(base.Writer())
	}
	return base.Finish()
}

// Marshal encodes records as one complete save and returns the bytes
func Marshal(reg *content.Registry, opts WriterOptions, records ...RecordWriter) ([]byte, error) {
	out := stream.NewMemStream(nil)
	if err := Save(out, reg, opts, records...); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Load reads records in the order they were saved. Any failure aborts the
// whole load; records must not be used after an error. Trailing records
// unknown to the caller are ignored.
func Load(in stream.Stream, reg *content.Registry, opts ReaderOptions, records ...RecordReader) (*ReaderBase, error) {
	base, err := NewReaderBase(in, reg, opts)
	if err != nil {
		return nil, err
	}
	for i, rec := range records {
		if err := rec.ReadSave(base.Reader()); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return base, nil
}
