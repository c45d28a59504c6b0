package dxf

import "strings"

const (
	modelSpaceBlock = "*Model_Space"
	paperSpaceBlock = "*Paper_Space"
)

// setupModern fills a fresh R13+ drawing with the symbol tables, the model
// and paper space blocks and the root dictionary. The LAYER table is left
// empty for EnsureLayer.
func (d *Document) setupModern() {
	d.sections = []*Section{
		d.Section("HEADER"),
		{Name: "CLASSES"},
		d.Section("TABLES"),
		{Name: "BLOCKS"},
		d.Section("ENTITIES"),
		{Name: "OBJECTS"},
	}
	tables := d.Section("TABLES")

	d.appendTable(tables, "VPORT", func(owner string) *Record {
		return d.symbolRecord("VPORT", "AcDbViewportTableRecord", "*Active", owner,
			Tag{Code: 10, Value: "0.0"}, Tag{Code: 20, Value: "0.0"},
			Tag{Code: 11, Value: "1.0"}, Tag{Code: 21, Value: "1.0"},
			Tag{Code: 12, Value: "0.0"}, Tag{Code: 22, Value: "0.0"},
			Tag{Code: 40, Value: "100.0"}, Tag{Code: 41, Value: "1.0"},
		)
	})
	d.appendTable(tables, "LTYPE",
		func(owner string) *Record { return d.linetypeRecord("ByBlock", "", owner) },
		func(owner string) *Record { return d.linetypeRecord("ByLayer", "", owner) },
		func(owner string) *Record { return d.linetypeRecord("Continuous", "Solid line", owner) },
	)
	d.appendTable(tables, "LAYER")
	d.appendTable(tables, "STYLE", func(owner string) *Record {
		return d.symbolRecord("STYLE", "AcDbTextStyleTableRecord", "Standard", owner,
			Tag{Code: 40, Value: "0.0"}, Tag{Code: 41, Value: "1.0"}, Tag{Code: 50, Value: "0.0"},
			Tag{Code: 71, Value: "0"}, Tag{Code: 42, Value: "2.5"},
			Tag{Code: 3, Value: "txt"}, Tag{Code: 4, Value: ""},
		)
	})
	d.appendTable(tables, "VIEW")
	d.appendTable(tables, "UCS")
	d.appendTable(tables, "APPID", func(owner string) *Record {
		return d.symbolRecord("APPID", "AcDbRegAppTableRecord", "ACAD", owner)
	})
	dimstyles := d.appendTable(tables, "DIMSTYLE", func(owner string) *Record {
		return d.symbolRecord("DIMSTYLE", "AcDbDimStyleTableRecord", "Standard", owner)
	})
	dimstyles.add(100, "AcDbDimStyleTable")

	var model, paper string
	d.appendTable(tables, "BLOCK_RECORD",
		func(owner string) *Record {
			rec := d.symbolRecord("BLOCK_RECORD", "AcDbBlockTableRecord", modelSpaceBlock, owner)
			model = rec.Handle()
			return rec
		},
		func(owner string) *Record {
			rec := d.symbolRecord("BLOCK_RECORD", "AcDbBlockTableRecord", paperSpaceBlock, owner)
			paper = rec.Handle()
			return rec
		},
	)

	blocks := d.Section("BLOCKS")
	blocks.Records = append(blocks.Records, d.blockDefinition(modelSpaceBlock, model, false)...)
	blocks.Records = append(blocks.Records, d.blockDefinition(paperSpaceBlock, paper, true)...)

	objects := d.Section("OBJECTS")
	objects.Records = append(objects.Records, d.rootDictionary()...)
}

// symbolRecord builds a table record with its handle, owner, subclass
// markers, name and flags, followed by extra.
func (d *Document) symbolRecord(recordType, subclass, name, owner string, extra ...Tag) *Record {
	rec := &Record{Type: recordType}
	handleCode := 5
	if recordType == "DIMSTYLE" {
		handleCode = 105
	}
	rec.add(handleCode, d.allocHandle())
	rec.add(330, owner)
	rec.add(100, "AcDbSymbolTableRecord")
	rec.add(100, subclass)
	rec.add(2, name)
	rec.add(70, "0")
	rec.Tags = append(rec.Tags, extra...)
	return rec
}

// blockDefinition returns the BLOCK and ENDBLK records of a layout block
// owned by the block record with handle owner.
func (d *Document) blockDefinition(name, owner string, paper bool) []*Record {
	begin := &Record{Type: "BLOCK"}
	begin.add(5, d.allocHandle())
	begin.add(330, owner)
	begin.add(100, "AcDbEntity")
	if paper {
		begin.add(67, "1")
	}
	begin.add(8, "0")
	begin.add(100, "AcDbBlockBegin")
	begin.add(2, name)
	begin.add(70, "0")
	begin.add(10, "0.0")
	begin.add(20, "0.0")
	begin.add(30, "0.0")
	begin.add(3, name)
	begin.add(1, "")

	end := &Record{Type: "ENDBLK"}
	end.add(5, d.allocHandle())
	end.add(330, owner)
	end.add(100, "AcDbEntity")
	if paper {
		end.add(67, "1")
	}
	end.add(8, "0")
	end.add(100, "AcDbBlockEnd")

	return []*Record{begin, end}
}

// rootDictionary returns the named object dictionary and its ACAD_GROUP
// entry.
func (d *Document) rootDictionary() []*Record {
	root, group := d.allocHandle(), d.allocHandle()

	dict := &Record{Type: "DICTIONARY"}
	dict.add(5, root)
	dict.add(330, "0")
	dict.add(100, "AcDbDictionary")
	dict.add(281, "1")
	dict.add(3, "ACAD_GROUP")
	dict.add(350, group)

	groups := &Record{Type: "DICTIONARY"}
	groups.add(5, group)
	groups.add(330, root)
	groups.add(100, "AcDbDictionary")
	groups.add(281, "1")
	groups.addReactor(root)

	return []*Record{dict, groups}
}

// modelSpaceOwner returns the handle of the *Model_Space block record, or ""
// when the drawing has none.
func (d *Document) modelSpaceOwner() string {
	tables := d.Section("TABLES")
	if tables == nil {
		return ""
	}
	start, end, ok := tableBounds(tables.Records, "BLOCK_RECORD")
	if !ok {
		return ""
	}
	for _, rec := range tables.Records[start+1 : end] {
		if name, _ := rec.Value(2); rec.Type == "BLOCK_RECORD" && strings.EqualFold(name, modelSpaceBlock) {
			return rec.Handle()
		}
	}
	return ""
}
