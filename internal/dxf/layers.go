package dxf

import (
	"strconv"
	"strings"
)

// Layers returns the layer names in table order.
func (d *Document) Layers() []string {
	tables := d.Section("TABLES")
	if tables == nil {
		return nil
	}
	start, end, ok := tableBounds(tables.Records, "LAYER")
	if !ok {
		return nil
	}
	var names []string
	for _, rec := range tables.Records[start+1 : end] {
		if rec.Type == "LAYER" {
			name, _ := rec.Value(2)
			names = append(names, name)
		}
	}
	return names
}

// HasLayer reports whether a layer exists. Layer names are case-insensitive.
func (d *Document) HasLayer(name string) bool {
	for _, l := range d.Layers() {
		if strings.EqualFold(l, name) {
			return true
		}
	}
	return false
}

// EnsureLayer creates the layer unless it already exists. The TABLES section
// and the LAYER table are created when missing.
func (d *Document) EnsureLayer(name string) error {
	name, err := layerName(name)
	if err != nil {
		return err
	}
	if d.HasLayer(name) {
		return nil
	}

	tables := d.ensureSection("TABLES")
	start, end, ok := tableBounds(tables.Records, "LAYER")
	if !ok {
		start, end = d.addTable(tables, "LAYER")
	}
	tables.Records = insertRecord(tables.Records, end, d.layerRecord(name, tableOwner(tables.Records[start])))
	countEntries(tables.Records, start, "LAYER")
	return nil
}

// tableBounds locates the TABLE marker of the named table and its ENDTAB.
// A table left open at the end of the section ends there.
func tableBounds(recs []*Record, name string) (start, end int, ok bool) {
	start = -1
	for i, rec := range recs {
		switch rec.Type {
		case "TABLE":
			if start >= 0 {
				return start, i, true
			}
			if v, _ := rec.Value(2); strings.EqualFold(v, name) {
				start = i
			}
		case "ENDTAB":
			if start >= 0 {
				return start, i, true
			}
		}
	}
	if start >= 0 {
		return start, len(recs), true
	}
	return 0, 0, false
}

// addTable appends an empty table to the TABLES section and returns the
// positions of its TABLE and ENDTAB records.
func (d *Document) addTable(tables *Section, name string) (start, end int) {
	table := &Record{Type: "TABLE"}
	table.add(2, name)
	if h := d.allocHandle(); h != "" {
		table.add(5, h)
		table.add(330, "0")
		table.add(100, "AcDbSymbolTable")
	}
	table.add(70, "0")

	tables.Records = append(tables.Records, table, &Record{Type: "ENDTAB"})
	return len(tables.Records) - 2, len(tables.Records) - 1
}

func (d *Document) layerRecord(name, owner string) *Record {
	rec := &Record{Type: "LAYER"}
	if h := d.allocHandle(); h != "" {
		rec.add(5, h)
		if owner != "" {
			rec.add(330, owner)
		}
		rec.add(100, "AcDbSymbolTableRecord")
		rec.add(100, "AcDbLayerTableRecord")
	}
	rec.add(2, name)
	rec.add(70, "0")
	rec.add(62, "7")
	rec.add(6, "Continuous")
	return rec
}

func (d *Document) linetypeRecord(name, description, owner string) *Record {
	rec := &Record{Type: "LTYPE"}
	if h := d.allocHandle(); h != "" {
		rec.add(5, h)
		if owner != "" {
			rec.add(330, owner)
		}
		rec.add(100, "AcDbSymbolTableRecord")
		rec.add(100, "AcDbLinetypeTableRecord")
	}
	rec.add(2, name)
	rec.add(70, "0")
	rec.add(3, description)
	rec.add(72, "65")
	rec.add(73, "0")
	rec.add(40, "0.0")
	return rec
}

// appendTable adds a table holding one record per builder. Each builder
// receives the table handle as owner.
func (d *Document) appendTable(tables *Section, name string, records ...func(owner string) *Record) *Record {
	start, end := d.addTable(tables, name)
	table := tables.Records[start]
	for _, build := range records {
		tables.Records = insertRecord(tables.Records, end, build(tableOwner(table)))
		end++
	}
	countEntries(tables.Records, start, name)
	return table
}

func tableOwner(table *Record) string {
	h, _ := table.Value(5)
	return h
}

// countEntries refreshes the entry count (group 70) of the TABLE at start.
func countEntries(recs []*Record, start int, recordType string) {
	n := 0
	for _, rec := range recs[start+1:] {
		if rec.Type == "ENDTAB" || rec.Type == "TABLE" {
			break
		}
		if rec.Type == recordType {
			n++
		}
	}
	recs[start].set(70, strconv.Itoa(n))
}
