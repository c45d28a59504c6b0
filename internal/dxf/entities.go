package dxf

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Point is a WCS coordinate.
type Point struct {
	X, Y, Z float64
}

// Circle is a CIRCLE entity.
type Circle struct {
	Handle string
	Owner  string
	Layer  string
	Center Point
	Radius float64
}

// Pattern is a predefined hatch pattern placed at Angle degrees and scaled
// by Scale.
type Pattern struct {
	Name  string
	Angle float64
	Scale float64
}

// Hatch is a pattern-filled HATCH bounded by circular edges.
type Hatch struct {
	Handle      string
	Owner       string
	Layer       string
	Pattern     Pattern
	Associative bool
	// Boundary holds one circular edge per boundary path.
	Boundary []Circle
	// SourceHandles links boundary paths to the entities they follow,
	// in boundary order.
	SourceHandles []string
}

type patternLine struct {
	angle  float64
	base   Point
	offset Point
	dashes []float64
}

// patternDef holds a predefined pattern in its inch (acad.pat) and
// millimetre (acadiso.pat) form. Each line is the line angle, base point and
// offset in the line's own frame.
type patternDef struct {
	imperial []patternLine
	metric   []patternLine
}

var predefinedPatterns = map[string]patternDef{
	"ANSI31": {
		imperial: []patternLine{{angle: 45, offset: Point{Y: 0.125}}},
		metric:   []patternLine{{angle: 45, offset: Point{Y: 3.175}}},
	},
}

// ModelSpace returns the entities of the ENTITIES section in stored order,
// leaving out paper-space entities.
func (d *Document) ModelSpace() []*Record {
	sec := d.Section("ENTITIES")
	if sec == nil {
		return nil
	}
	out := make([]*Record, 0, len(sec.Records))
	for _, rec := range sec.Records {
		if v, _ := rec.Value(67); v == "1" {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Circles returns the model-space circles in stored order.
func (d *Document) Circles() []Circle {
	var out []Circle
	for _, rec := range d.ModelSpace() {
		if rec.Type != "CIRCLE" {
			continue
		}
		if c, err := circleFrom(rec); err == nil {
			out = append(out, c)
		}
	}
	return out
}

// FirstCircle returns the first model-space circle in stored order.
func (d *Document) FirstCircle() (Circle, bool) {
	for _, rec := range d.ModelSpace() {
		if rec.Type != "CIRCLE" {
			continue
		}
		if c, err := circleFrom(rec); err == nil {
			return c, true
		}
	}
	return Circle{}, false
}

// Hatches returns the model-space hatches in stored order.
func (d *Document) Hatches() []Hatch {
	var out []Hatch
	for _, rec := range d.ModelSpace() {
		if rec.Type == "HATCH" {
			out = append(out, hatchFrom(rec))
		}
	}
	return out
}

// AddCircle appends a CIRCLE to model space and returns it with its handle.
// Without an explicit owner the circle belongs to the *Model_Space block
// record.
func (d *Document) AddCircle(c Circle) (Circle, error) {
	if !(c.Radius > 0) || math.IsInf(c.Radius, 0) {
		return Circle{}, fmt.Errorf("%w: circle radius %v", ErrInvalidGeometry, c.Radius)
	}
	if c.Layer == "" {
		c.Layer = "0"
	}
	layer, err := layerName(c.Layer)
	if err != nil {
		return Circle{}, err
	}
	c.Layer = layer

	modern := d.modern()
	if modern && c.Owner == "" {
		c.Owner = d.modelSpaceOwner()
	}
	c.Handle = d.allocHandle()

	rec := &Record{Type: "CIRCLE"}
	if c.Handle != "" {
		rec.add(5, c.Handle)
	}
	if c.Owner != "" {
		rec.add(330, c.Owner)
	}
	if modern {
		rec.add(100, "AcDbEntity")
	}
	rec.add(8, c.Layer)
	if modern {
		rec.add(100, "AcDbCircle")
	}
	rec.add(10, formatFloat(c.Center.X))
	rec.add(20, formatFloat(c.Center.Y))
	rec.add(30, formatFloat(c.Center.Z))
	rec.add(40, formatFloat(c.Radius))

	sec := d.ensureSection("ENTITIES")
	sec.Records = append(sec.Records, rec)
	return c, nil
}

// CircleHatch describes an associative hatch filling c.
func CircleHatch(c Circle, layer string, p Pattern) Hatch {
	h := Hatch{
		Owner:       c.Owner,
		Layer:       layer,
		Pattern:     p,
		Associative: true,
		Boundary:    []Circle{{Center: c.Center, Radius: c.Radius}},
	}
	if c.Handle != "" {
		h.SourceHandles = []string{c.Handle}
	}
	return h
}

// AddHatch appends a HATCH to model space and returns it with its handle.
// Associative hatches are registered as reactors on their source entities.
func (d *Document) AddHatch(h Hatch) (Hatch, error) {
	if v := d.Version(); v < minModernVersion {
		return Hatch{}, fmt.Errorf("%w: HATCH requires R13 or later, drawing is %s", ErrUnsupportedVersion, v)
	}
	if len(h.Boundary) == 0 {
		return Hatch{}, fmt.Errorf("%w: hatch without boundary", ErrInvalidGeometry)
	}
	for _, b := range h.Boundary {
		if !(b.Radius > 0) || math.IsInf(b.Radius, 0) {
			return Hatch{}, fmt.Errorf("%w: boundary radius %v", ErrInvalidGeometry, b.Radius)
		}
	}
	h.Pattern.Name = strings.ToUpper(h.Pattern.Name)
	def, ok := predefinedPatterns[h.Pattern.Name]
	if !ok {
		return Hatch{}, fmt.Errorf("%w: %q", ErrUnknownPattern, h.Pattern.Name)
	}
	lines := def.imperial
	if d.Metric() {
		lines = def.metric
	}
	if !(h.Pattern.Scale > 0) {
		return Hatch{}, fmt.Errorf("%w: pattern scale %v", ErrInvalidGeometry, h.Pattern.Scale)
	}
	if h.Layer == "" {
		h.Layer = "0"
	}
	layer, err := layerName(h.Layer)
	if err != nil {
		return Hatch{}, err
	}
	h.Layer = layer
	if h.Owner == "" {
		h.Owner = d.modelSpaceOwner()
	}
	h.Handle = d.allocHandle()

	rec := &Record{Type: "HATCH"}
	rec.add(5, h.Handle)
	if h.Owner != "" {
		rec.add(330, h.Owner)
	}
	rec.add(100, "AcDbEntity")
	rec.add(8, h.Layer)
	rec.add(100, "AcDbHatch")
	rec.add(10, "0.0")
	rec.add(20, "0.0")
	rec.add(30, formatFloat(h.Boundary[0].Center.Z))
	rec.add(210, "0.0")
	rec.add(220, "0.0")
	rec.add(230, "1.0")
	rec.add(2, h.Pattern.Name)
	rec.add(70, "0")
	rec.add(71, flag(h.Associative))
	rec.add(91, strconv.Itoa(len(h.Boundary)))
	for i, b := range h.Boundary {
		rec.add(92, "1")
		rec.add(93, "1")
		rec.add(72, "2")
		rec.add(10, formatFloat(b.Center.X))
		rec.add(20, formatFloat(b.Center.Y))
		rec.add(40, formatFloat(b.Radius))
		rec.add(50, "0.0")
		rec.add(51, "360.0")
		rec.add(73, "1")
		if h.Associative && i < len(h.SourceHandles) {
			rec.add(97, "1")
			rec.add(330, h.SourceHandles[i])
		} else {
			rec.add(97, "0")
		}
	}
	rec.add(75, "1")
	rec.add(76, "1")
	rec.add(52, formatFloat(h.Pattern.Angle))
	rec.add(41, formatFloat(h.Pattern.Scale))
	rec.add(77, "0")
	rec.add(78, strconv.Itoa(len(lines)))
	for _, l := range lines {
		writePatternLine(rec, l, h.Pattern)
	}
	rec.add(98, "1")
	rec.add(10, formatFloat(h.Boundary[0].Center.X))
	rec.add(20, formatFloat(h.Boundary[0].Center.Y))

	sec := d.ensureSection("ENTITIES")
	sec.Records = append(sec.Records, rec)

	if h.Associative {
		for _, src := range h.SourceHandles {
			if target := d.recordByHandle(src); target != nil {
				target.addReactor(h.Handle)
			}
		}
	}
	return h, nil
}

// writePatternLine emits one pattern definition line rotated by the pattern
// angle and scaled by the pattern scale. Offsets are stored in WCS.
func writePatternLine(rec *Record, l patternLine, p Pattern) {
	angle := math.Mod(l.angle+p.Angle, 360)
	if angle < 0 {
		angle += 360
	}
	base := rotate(scale(l.base, p.Scale), p.Angle)
	offset := rotate(scale(l.offset, p.Scale), angle)

	rec.add(53, formatFloat(angle))
	rec.add(43, formatFloat(base.X))
	rec.add(44, formatFloat(base.Y))
	rec.add(45, formatFloat(offset.X))
	rec.add(46, formatFloat(offset.Y))
	rec.add(79, strconv.Itoa(len(l.dashes)))
	for _, dash := range l.dashes {
		rec.add(49, formatFloat(dash*p.Scale))
	}
}

func scale(p Point, s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

func rotate(p Point, deg float64) Point {
	sin, cos := math.Sincos(deg * math.Pi / 180)
	return Point{X: p.X*cos - p.Y*sin, Y: p.X*sin + p.Y*cos}
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func circleFrom(rec *Record) (Circle, error) {
	c := Circle{
		Handle: rec.Handle(),
		Owner:  rec.owner(),
		Layer:  rec.Layer(),
	}
	var err error
	if c.Center.X, err = rec.Float(10); err != nil {
		return Circle{}, err
	}
	if c.Center.Y, err = rec.Float(20); err != nil {
		return Circle{}, err
	}
	if _, ok := rec.Value(30); ok {
		if c.Center.Z, err = rec.Float(30); err != nil {
			return Circle{}, err
		}
	}
	if c.Radius, err = rec.Float(40); err != nil {
		return Circle{}, err
	}
	return c, nil
}

// hatchFrom decodes the parts of a HATCH this package writes. Polyline and
// non-circular edges are skipped.
func hatchFrom(rec *Record) Hatch {
	h := Hatch{
		Handle: rec.Handle(),
		Owner:  rec.owner(),
		Layer:  rec.Layer(),
	}
	h.Pattern.Name, _ = rec.Value(2)

	var (
		pathFlags int
		edge      *Circle
		inPaths   bool
	)
	tags := rec.Tags
	for i := 0; i < len(tags); i++ {
		t := tags[i]
		switch t.Code {
		case 71:
			h.Associative = t.Text() == "1"
		case 91:
			inPaths = true
		case 92:
			pathFlags, _ = t.Int()
			edge = nil
		case 72:
			if !inPaths || pathFlags&2 != 0 {
				continue
			}
			edge = nil
			if kind, _ := t.Int(); kind == 2 {
				h.Boundary = append(h.Boundary, Circle{})
				edge = &h.Boundary[len(h.Boundary)-1]
			}
		case 10:
			if edge != nil {
				edge.Center.X, _ = t.Float()
			}
		case 20:
			if edge != nil {
				edge.Center.Y, _ = t.Float()
			}
		case 40:
			if edge != nil {
				edge.Radius, _ = t.Float()
			}
		case 97:
			edge = nil
			n, _ := t.Int()
			for k := 0; k < n && i+1 < len(tags) && tags[i+1].Code == 330; k++ {
				i++
				h.SourceHandles = append(h.SourceHandles, tags[i].Text())
			}
		case 75:
			inPaths = false
			edge = nil
		case 52:
			h.Pattern.Angle, _ = t.Float()
		case 41:
			h.Pattern.Scale, _ = t.Float()
		}
	}
	return h
}
