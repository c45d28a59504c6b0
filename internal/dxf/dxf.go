// Package dxf reads and writes the ASCII DXF subset needed to place circles
// and associative pattern hatches in a drawing.
//
// A Document is kept at the group-code level: sections, tables and entities
// that the package does not model are carried through a Read/WriteTo round
// trip unchanged.
package dxf

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnsupportedVersion = errors.New("unsupported DXF version")
	ErrBinary             = errors.New("binary DXF is not supported")
	ErrEmpty              = errors.New("empty file")
	ErrUnknownPattern     = errors.New("unknown hatch pattern")
	ErrInvalidLayerName   = errors.New("invalid layer name")
	ErrInvalidGeometry    = errors.New("invalid geometry")
	ErrInvalidValue       = errors.New("invalid group value")
)

const (
	defaultVersion = "AC1009"
	// HATCH and subclass markers appeared with R13.
	minModernVersion = "AC1012"
)

// releases maps release names to their $ACADVER codes.
var releases = map[string]string{
	"R12":   "AC1009",
	"R2000": "AC1015",
	"R2004": "AC1018",
	"R2007": "AC1021",
	"R2010": "AC1024",
	"R2013": "AC1027",
	"R2018": "AC1032",
}

// ResolveVersion maps a release name (R2018) or an $ACADVER code (AC1032) to
// the $ACADVER code.
func ResolveVersion(v string) (string, error) {
	key := strings.ToUpper(strings.TrimSpace(v))
	if code, ok := releases[key]; ok {
		return code, nil
	}
	for _, code := range releases {
		if code == key {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedVersion, v)
}

// Tag is a single group code / value pair.
type Tag struct {
	Code  int
	Value string
}

// Text returns the value without surrounding blanks.
func (t Tag) Text() string { return strings.TrimSpace(t.Value) }

func (t Tag) Float() (float64, error) { return strconv.ParseFloat(t.Text(), 64) }

func (t Tag) Int() (int, error) { return strconv.Atoi(t.Text()) }

// Record is one object started by a 0 group: an entity, a table record or a
// TABLE/ENDTAB marker. Tags excludes the leading 0 group.
type Record struct {
	Type string
	Tags []Tag
}

// Value returns the first value stored under code.
func (r *Record) Value(code int) (string, bool) {
	for _, t := range r.Tags {
		if t.Code == code {
			return t.Text(), true
		}
	}
	return "", false
}

// Float returns the first value stored under code as a float.
func (r *Record) Float(code int) (float64, error) {
	for _, t := range r.Tags {
		if t.Code == code {
			f, err := t.Float()
			if err != nil {
				return 0, fmt.Errorf("group code %d: %w", code, err)
			}
			return f, nil
		}
	}
	return 0, fmt.Errorf("missing group code %d", code)
}

// Handle returns the entity handle, or "" for handle-less records.
func (r *Record) Handle() string {
	if h, ok := r.Value(5); ok {
		return h
	}
	// DIMSTYLE keeps its handle under 105.
	h, _ := r.Value(105)
	return h
}

// Layer returns the layer name, defaulting to "0".
func (r *Record) Layer() string {
	if l, ok := r.Value(8); ok && l != "" {
		return l
	}
	return "0"
}

// owner returns the soft-pointer owner handle, skipping 330 pointers that
// belong to 102 application groups such as {ACAD_REACTORS.
func (r *Record) owner() string {
	inGroup := false
	for _, t := range r.Tags {
		switch {
		case t.Code == 102:
			inGroup = strings.HasPrefix(t.Text(), "{")
		case t.Code == 330 && !inGroup:
			return t.Text()
		}
	}
	return ""
}

func (r *Record) add(code int, value string) {
	r.Tags = append(r.Tags, Tag{Code: code, Value: value})
}

func (r *Record) insert(at int, tags ...Tag) {
	r.Tags = append(r.Tags[:at], append(tags, r.Tags[at:]...)...)
}

// set replaces the first value under code, or appends it.
func (r *Record) set(code int, value string) {
	for i := range r.Tags {
		if r.Tags[i].Code == code {
			r.Tags[i].Value = value
			return
		}
	}
	r.add(code, value)
}

// addReactor registers handle in the record's {ACAD_REACTORS group,
// creating the group right after the entity handle when needed.
func (r *Record) addReactor(handle string) {
	for i, t := range r.Tags {
		if t.Code != 102 || t.Text() != "{ACAD_REACTORS" {
			continue
		}
		for j := i + 1; j < len(r.Tags); j++ {
			if r.Tags[j].Code == 102 {
				r.insert(j, Tag{Code: 330, Value: handle})
				return
			}
		}
		return
	}
	at := 0
	for i, t := range r.Tags {
		if t.Code == 5 {
			at = i + 1
			break
		}
	}
	r.insert(at,
		Tag{Code: 102, Value: "{ACAD_REACTORS"},
		Tag{Code: 330, Value: handle},
		Tag{Code: 102, Value: "}"},
	)
}

// Variable is a HEADER variable such as $INSUNITS.
type Variable struct {
	Name string
	Tags []Tag
}

// Section is a DXF section. HEADER carries Variables, every other section
// carries Records.
type Section struct {
	Name      string
	Variables []*Variable
	Records   []*Record
}

// sectionOrder is the canonical order used when a missing section is created.
var sectionOrder = map[string]int{
	"HEADER":         0,
	"CLASSES":        1,
	"TABLES":         2,
	"BLOCKS":         3,
	"ENTITIES":       4,
	"OBJECTS":        5,
	"THUMBNAILIMAGE": 6,
	"ACDSDATA":       7,
}

// Document is an in-memory DXF drawing.
type Document struct {
	sections []*Section

	seeded     bool
	nextHandle uint64
}

// New returns an empty drawing in millimetres for the given release name or
// $ACADVER code. R13 and later drawings get the tables, blocks and root
// dictionary CAD programs require before they open a file.
func New(version string) (*Document, error) {
	code, err := ResolveVersion(version)
	if err != nil {
		return nil, err
	}

	d := &Document{
		sections: []*Section{
			{Name: "HEADER"},
			{Name: "TABLES"},
			{Name: "ENTITIES"},
		},
		seeded:     true,
		nextHandle: 1,
	}

	d.SetHeader("$ACADVER", Tag{Code: 1, Value: code})
	if code < "AC1021" {
		d.SetHeader("$DWGCODEPAGE", Tag{Code: 3, Value: "ANSI_1252"})
	}
	d.SetHeader("$INSUNITS", Tag{Code: 70, Value: "4"})
	d.SetHeader("$MEASUREMENT", Tag{Code: 70, Value: "1"})

	if d.modern() {
		d.setupModern()
	} else {
		tables := d.Section("TABLES")
		d.appendTable(tables, "LTYPE", func(owner string) *Record {
			return d.linetypeRecord("Continuous", "Solid line", owner)
		})
	}

	if err := d.EnsureLayer("0"); err != nil {
		return nil, err
	}
	return d, nil
}

// Section returns the named section or nil.
func (d *Document) Section(name string) *Section {
	for _, s := range d.sections {
		if strings.EqualFold(s.Name, name) {
			return s
		}
	}
	return nil
}

// Sections returns the section names in file order.
func (d *Document) Sections() []string {
	names := make([]string, 0, len(d.sections))
	for _, s := range d.sections {
		names = append(names, s.Name)
	}
	return names
}

// ensureSection returns the named section, inserting it at its canonical
// position when it does not exist yet.
func (d *Document) ensureSection(name string) *Section {
	if s := d.Section(name); s != nil {
		return s
	}
	s := &Section{Name: name}
	rank, known := sectionOrder[name]
	at := len(d.sections)
	if known {
		for i, existing := range d.sections {
			if r, ok := sectionOrder[strings.ToUpper(existing.Name)]; ok && r > rank {
				at = i
				break
			}
		}
	}
	d.sections = append(d.sections[:at], append([]*Section{s}, d.sections[at:]...)...)
	return s
}

// HeaderValue returns the first value of a HEADER variable.
func (d *Document) HeaderValue(name string) (string, bool) {
	h := d.Section("HEADER")
	if h == nil {
		return "", false
	}
	for _, v := range h.Variables {
		if strings.EqualFold(v.Name, name) && len(v.Tags) > 0 {
			return v.Tags[0].Text(), true
		}
	}
	return "", false
}

// SetHeader replaces or appends a HEADER variable.
func (d *Document) SetHeader(name string, tags ...Tag) {
	h := d.ensureSection("HEADER")
	for _, v := range h.Variables {
		if strings.EqualFold(v.Name, name) {
			v.Tags = tags
			return
		}
	}
	h.Variables = append(h.Variables, &Variable{Name: name, Tags: tags})
}

// Version returns the $ACADVER code. Files without one are treated as R12.
func (d *Document) Version() string {
	if v, ok := d.HeaderValue("$ACADVER"); ok && v != "" {
		return strings.ToUpper(v)
	}
	return defaultVersion
}

// Metric reports whether $MEASUREMENT selects the metric pattern and
// linetype definitions. Drawings without the variable count as metric.
func (d *Document) Metric() bool {
	v, ok := d.HeaderValue("$MEASUREMENT")
	return !ok || v != "0"
}

// Units returns the $INSUNITS value (4 = millimetres).
func (d *Document) Units() (int, bool) {
	v, ok := d.HeaderValue("$INSUNITS")
	if !ok {
		return 0, false
	}
	u, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return u, true
}

func (d *Document) modern() bool {
	return d.Version() >= minModernVersion
}

// allocHandle returns the next free handle, or "" for R12 drawings.
func (d *Document) allocHandle() string {
	if !d.modern() {
		return ""
	}
	d.seedHandles()
	h := formatHandle(d.nextHandle)
	d.nextHandle++
	return h
}

// seedHandles places the handle counter above $HANDSEED and above every
// handle present in the drawing.
func (d *Document) seedHandles() {
	if d.seeded {
		return
	}
	d.seeded = true

	next := uint64(1)
	if v, ok := d.HeaderValue("$HANDSEED"); ok {
		if n, err := strconv.ParseUint(v, 16, 64); err == nil && n > next {
			next = n
		}
	}
	for _, s := range d.sections {
		for _, rec := range s.Records {
			for _, t := range rec.Tags {
				if t.Code != 5 && t.Code != 105 {
					continue
				}
				if n, err := strconv.ParseUint(t.Text(), 16, 64); err == nil && n+1 > next {
					next = n + 1
				}
			}
		}
	}
	d.nextHandle = next
}

func (d *Document) recordByHandle(handle string) *Record {
	for _, s := range d.sections {
		for _, rec := range s.Records {
			if strings.EqualFold(rec.Handle(), handle) {
				return rec
			}
		}
	}
	return nil
}

func formatHandle(n uint64) string {
	return strings.ToUpper(strconv.FormatUint(n, 16))
}

// formatFloat writes the shortest representation that round-trips, always
// with a decimal point.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// layerName trims name and rejects names that cannot be stored on a single
// DXF line.
func layerName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || strings.ContainsAny(trimmed, "\r\n") {
		return "", fmt.Errorf("%w: %q", ErrInvalidLayerName, name)
	}
	return trimmed, nil
}

func insertRecord(recs []*Record, at int, rec *Record) []*Record {
	return append(recs[:at], append([]*Record{rec}, recs[at:]...)...)
}
