/*
Package savegame implements the versioned, self-describing binary format used
for persistent simulation state.

A save survives two kinds of change between releases: records gaining or
losing optional fields, and content tables (unit types, building types, ...)
being reordered when content definitions change.

# Layout

	header       "SAVF" u32(version)
	translation  per category: u16(category) {uvarint(len) id}* uvarint(0)
	             terminated by u16(0xFFFF)
	body         records: u8(class) {u16(tag) u8(kind) value}* u16(0)

Every field carries a kind byte, so a reader can skip fields it does not
know. Fields equal to their declared default are not written at all, and a
reader treats a field that never appears as its default.

# Sessions

One WriterBase or ReaderBase exists per save or load. Entity code receives a
Writer or Reader by value, assigns its own class, and passes the session on
to nested entities. Because sessions are copied, a nested entity assigning
its class never changes the class seen by its caller:

	func (p *Plot) WriteSave(w savegame.Writer) {
	    w.BeginRecord(savegame.ClassPlot)
	    w.WriteInt32(plotX, p.X, 0)
	    w.WriteEnum(plotTerrain, content.Terrain, p.Terrain, savegame.NoEntity)
	    w.EndRecord()
	}

	func (p *Plot) ReadSave(r savegame.Reader) error {
	    if err := r.BeginRecord(savegame.ClassPlot); err != nil {
	        return err
	    }
	    return r.Fields(func(tag savegame.VarType) (err error) {
	        switch tag {
	        case plotX:
	            p.X, err = r.ReadInt32()
	        case plotTerrain:
	            p.Terrain, err = r.ReadEnum(content.Terrain)
	        }
	        return err
	    })
	}

# Enum translation

Content-backed enums are written as the index they have while saving. Each
category used in the body gets a translation table listing the identifiers
in that order. On load the table is resolved against the current content,
and ReadEnum returns the current index. Identifiers that no longer exist
read as NoEntity.

Engine enums that do not come from content (directions, turn timers) are
written with WriteIntEnum and never translated.

# Errors

Truncation, malformed translation tables and kind mismatches are fatal: the
first one is recorded on the ReaderBase and every later read returns it.
Unknown fields and unresolved identifiers are not errors.
*/
package savegame
