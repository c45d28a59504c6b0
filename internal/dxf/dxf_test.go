package dxf

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleDXF is an R2000 drawing with a line, a paper-space circle and two
// model-space circles.
const sampleDXF = `  0
SECTION
  2
HEADER
  9
$ACADVER
  1
AC1015
  9
$HANDSEED
  5
FF
  0
ENDSEC
  0
SECTION
  2
TABLES
  0
TABLE
  2
LAYER
  5
2
330
0
100
AcDbSymbolTable
 70
1
  0
LAYER
  5
10
330
2
100
AcDbSymbolTableRecord
100
AcDbLayerTableRecord
  2
0
 70
0
 62
7
  6
CONTINUOUS
  0
ENDTAB
  0
ENDSEC
  0
SECTION
  2
ENTITIES
  0
LINE
  5
1A
330
1F
100
AcDbEntity
  8
0
100
AcDbLine
 10
0.0
 20
0.0
 30
0.0
 11
5.0
 21
5.0
 31
0.0
  0
CIRCLE
  5
1B
330
1F
100
AcDbEntity
 67
1
  8
0
100
AcDbCircle
 10
1.0
 20
1.0
 30
0.0
 40
99.0
  0
CIRCLE
  5
1A0
330
1F
100
AcDbEntity
  8
PARTS
100
AcDbCircle
 10
3.5
 20
-2.0
 30
0.0
 40
5.0
  0
CIRCLE
  5
1C
330
1F
100
AcDbEntity
  8
PARTS
100
AcDbCircle
 10
10.0
 20
10.0
 30
0.0
 40
7.0
  0
ENDSEC
  0
SECTION
  2
OBJECTS
  0
DICTIONARY
  5
C
330
0
100
AcDbDictionary
  3
ACAD_GROUP
350
D
  0
ENDSEC
  0
EOF
`

func TestResolveVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "R2018", want: "AC1032"},
		{in: "r2010", want: "AC1024"},
		{in: " R2000 ", want: "AC1015"},
		{in: "AC1027", want: "AC1027"},
		{in: "R12", want: "AC1009"},
		{in: "R2099", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ResolveVersion(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedVersion)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	doc, err := New("R2018")
	require.NoError(t, err)

	assert.Equal(t, "AC1032", doc.Version())
	units, ok := doc.Units()
	require.True(t, ok)
	assert.Equal(t, 4, units)
	assert.Equal(t, []string{"0"}, doc.Layers())
	assert.Equal(t, []string{"HEADER", "CLASSES", "TABLES", "BLOCKS", "ENTITIES", "OBJECTS"}, doc.Sections())
	assert.Empty(t, doc.ModelSpace())
	assert.True(t, doc.Metric())

	_, err = New("R1999")
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestNewDrawingStructure(t *testing.T) {
	doc, err := New("R2000")
	require.NoError(t, err)

	data, err := doc.Bytes()
	require.NoError(t, err)
	back, err := ReadBytes(data)
	require.NoError(t, err)

	tables := back.Section("TABLES")
	require.NotNil(t, tables)
	for _, name := range []string{"VPORT", "LTYPE", "LAYER", "STYLE", "VIEW", "UCS", "APPID", "DIMSTYLE", "BLOCK_RECORD"} {
		_, _, ok := tableBounds(tables.Records, name)
		assert.True(t, ok, "missing %s table", name)
	}

	model := back.modelSpaceOwner()
	require.NotEmpty(t, model)

	blocks := back.Section("BLOCKS")
	require.NotNil(t, blocks)
	var names []string
	for _, rec := range blocks.Records {
		if rec.Type == "BLOCK" {
			name, _ := rec.Value(2)
			names = append(names, name)
		}
	}
	assert.Equal(t, []string{"*Model_Space", "*Paper_Space"}, names)
	assert.Equal(t, model, blocks.Records[0].owner())

	objects := back.Section("OBJECTS")
	require.NotNil(t, objects)
	require.NotEmpty(t, objects.Records)
	root := objects.Records[0]
	assert.Equal(t, "DICTIONARY", root.Type)
	assert.Equal(t, "0", root.owner())
	entry, _ := root.Value(3)
	assert.Equal(t, "ACAD_GROUP", entry)

	t.Run("should own new entities by model space", func(t *testing.T) {
		circle, err := back.AddCircle(Circle{Radius: 2})
		require.NoError(t, err)
		assert.Equal(t, model, circle.Owner)

		hatch, err := back.AddHatch(CircleHatch(circle, "0", Pattern{Name: "ANSI31", Scale: 1}))
		require.NoError(t, err)
		assert.Equal(t, model, hatch.Owner)

		for _, rec := range back.ModelSpace() {
			assert.Equal(t, model, rec.owner(), rec.Type)
		}
	})

	t.Run("should keep R12 drawings flat", func(t *testing.T) {
		old, err := New("R12")
		require.NoError(t, err)
		assert.Equal(t, []string{"HEADER", "TABLES", "ENTITIES"}, old.Sections())
		assert.Empty(t, old.modelSpaceOwner())
	})
}

func TestEnsureLayer(t *testing.T) {
	doc, err := New("R2018")
	require.NoError(t, err)

	t.Run("should create missing layers once", func(t *testing.T) {
		require.NoError(t, doc.EnsureLayer("CIRCLE"))
		require.NoError(t, doc.EnsureLayer("HATCH"))
		require.NoError(t, doc.EnsureLayer("HATCH"))
		require.NoError(t, doc.EnsureLayer("hatch"))

		assert.Equal(t, []string{"0", "CIRCLE", "HATCH"}, doc.Layers())
		assert.True(t, doc.HasLayer("circle"))
	})

	t.Run("should keep the table entry count current", func(t *testing.T) {
		tables := doc.Section("TABLES")
		start, _, ok := tableBounds(tables.Records, "LAYER")
		require.True(t, ok)
		count, _ := tables.Records[start].Value(70)
		assert.Equal(t, "3", count)
	})

	t.Run("should reject blank names", func(t *testing.T) {
		assert.ErrorIs(t, doc.EnsureLayer("  "), ErrInvalidLayerName)
	})

	t.Run("should reject names spanning several lines", func(t *testing.T) {
		assert.ErrorIs(t, doc.EnsureLayer("H\n  0\nLINE"), ErrInvalidLayerName)
		assert.ErrorIs(t, doc.EnsureLayer("H\r"), ErrInvalidLayerName)
		assert.Equal(t, []string{"0", "CIRCLE", "HATCH"}, doc.Layers())
	})

	t.Run("should create TABLES when missing", func(t *testing.T) {
		bare, err := ReadBytes([]byte("  0\nSECTION\n  2\nHEADER\n  9\n$ACADVER\n  1\nAC1015\n  0\nENDSEC\n  0\nSECTION\n  2\nENTITIES\n  0\nENDSEC\n  0\nEOF\n"))
		require.NoError(t, err)

		require.NoError(t, bare.EnsureLayer("HATCH"))
		assert.Equal(t, []string{"HEADER", "TABLES", "ENTITIES"}, bare.Sections())
		assert.Equal(t, []string{"HATCH"}, bare.Layers())
	})
}

func TestGeneratedDrawingRoundTrip(t *testing.T) {
	doc, err := New("R2018")
	require.NoError(t, err)
	require.NoError(t, doc.EnsureLayer("CIRCLE"))
	require.NoError(t, doc.EnsureLayer("HATCH"))

	circle, err := doc.AddCircle(Circle{Layer: "CIRCLE", Center: Point{X: 1, Y: 2}, Radius: 10})
	require.NoError(t, err)
	require.NotEmpty(t, circle.Handle)

	hatch, err := doc.AddHatch(CircleHatch(circle, "HATCH", Pattern{Name: "ANSI31", Angle: 45, Scale: 0.2}))
	require.NoError(t, err)
	require.NotEmpty(t, hatch.Handle)
	assert.NotEqual(t, circle.Handle, hatch.Handle)

	data, err := doc.Bytes()
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.True(t, bytes.HasSuffix(data, []byte("  0\nEOF\n")))

	back, err := ReadBytes(data)
	require.NoError(t, err)

	units, ok := back.Units()
	require.True(t, ok)
	assert.Equal(t, 4, units)
	assert.Equal(t, []string{"0", "CIRCLE", "HATCH"}, back.Layers())

	circles := back.Circles()
	require.Len(t, circles, 1)
	assert.Equal(t, circle.Handle, circles[0].Handle)
	assert.Equal(t, "CIRCLE", circles[0].Layer)
	assert.Equal(t, Point{X: 1, Y: 2}, circles[0].Center)
	assert.Equal(t, 10.0, circles[0].Radius)
	assert.Equal(t, doc.modelSpaceOwner(), circles[0].Owner)

	hatches := back.Hatches()
	require.Len(t, hatches, 1)
	got := hatches[0]
	assert.Equal(t, hatch.Handle, got.Handle)
	assert.Equal(t, "HATCH", got.Layer)
	assert.True(t, got.Associative)
	assert.Equal(t, []string{circle.Handle}, got.SourceHandles)
	assert.Equal(t, Pattern{Name: "ANSI31", Angle: 45, Scale: 0.2}, got.Pattern)
	require.Len(t, got.Boundary, 1)
	assert.Equal(t, Point{X: 1, Y: 2}, got.Boundary[0].Center)
	assert.Equal(t, 10.0, got.Boundary[0].Radius)

	seed, ok := back.HeaderValue("$HANDSEED")
	require.True(t, ok)
	assert.Equal(t, formatHandle(doc.nextHandle), seed)
}

func TestAddHatchReactors(t *testing.T) {
	doc, err := New("R2018")
	require.NoError(t, err)
	circle, err := doc.AddCircle(Circle{Radius: 3})
	require.NoError(t, err)

	first, err := doc.AddHatch(CircleHatch(circle, "0", Pattern{Name: "ansi31", Angle: 0, Scale: 1}))
	require.NoError(t, err)
	second, err := doc.AddHatch(CircleHatch(circle, "0", Pattern{Name: "ANSI31", Angle: 90, Scale: 1}))
	require.NoError(t, err)

	rec := doc.ModelSpace()[0]
	require.Equal(t, "CIRCLE", rec.Type)
	assert.Equal(t, []Tag{
		{Code: 5, Value: circle.Handle},
		{Code: 102, Value: "{ACAD_REACTORS"},
		{Code: 330, Value: first.Handle},
		{Code: 330, Value: second.Handle},
		{Code: 102, Value: "}"},
	}, rec.Tags[:5])
	assert.Equal(t, "ANSI31", first.Pattern.Name)
}

func TestAddHatchPatternLine(t *testing.T) {
	tests := []struct {
		name        string
		measurement string
		distance    float64
	}{
		{name: "metric drawing uses the ISO definition", measurement: "1", distance: 3.175 * 0.2},
		{name: "imperial drawing uses the inch definition", measurement: "0", distance: 0.125 * 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := New("R2018")
			require.NoError(t, err)
			doc.SetHeader("$MEASUREMENT", Tag{Code: 70, Value: tt.measurement})

			circle, err := doc.AddCircle(Circle{Radius: 10})
			require.NoError(t, err)
			_, err = doc.AddHatch(CircleHatch(circle, "0", Pattern{Name: "ANSI31", Angle: 45, Scale: 0.2}))
			require.NoError(t, err)

			rec := doc.ModelSpace()[1]
			angle, _ := rec.Value(53)
			assert.Equal(t, "90.0", angle)
			count, _ := rec.Value(78)
			assert.Equal(t, "1", count)

			offX, err := rec.Float(45)
			require.NoError(t, err)
			offY, err := rec.Float(46)
			require.NoError(t, err)
			assert.InDelta(t, -tt.distance, offX, 1e-12)
			assert.InDelta(t, 0, offY, 1e-12)
		})
	}
}

func TestAddHatchErrors(t *testing.T) {
	t.Run("should reject R12 drawings", func(t *testing.T) {
		doc, err := New("R12")
		require.NoError(t, err)
		circle, err := doc.AddCircle(Circle{Radius: 1})
		require.NoError(t, err)
		assert.Empty(t, circle.Handle)

		_, err = doc.AddHatch(CircleHatch(circle, "0", Pattern{Name: "ANSI31", Scale: 1}))
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
	})

	t.Run("should reject unknown patterns", func(t *testing.T) {
		doc, err := New("R2018")
		require.NoError(t, err)
		_, err = doc.AddHatch(Hatch{Pattern: Pattern{Name: "HONEY", Scale: 1}, Boundary: []Circle{{Radius: 1}}})
		assert.ErrorIs(t, err, ErrUnknownPattern)
	})

	t.Run("should reject layer names spanning several lines", func(t *testing.T) {
		doc, err := New("R2018")
		require.NoError(t, err)
		_, err = doc.AddCircle(Circle{Layer: "A\n  0\nLINE", Radius: 1})
		assert.ErrorIs(t, err, ErrInvalidLayerName)

		circle, err := doc.AddCircle(Circle{Layer: " A ", Radius: 1})
		require.NoError(t, err)
		assert.Equal(t, "A", circle.Layer)

		_, err = doc.AddHatch(CircleHatch(circle, "H\n  0\nEOF", Pattern{Name: "ANSI31", Scale: 1}))
		assert.ErrorIs(t, err, ErrInvalidLayerName)
		assert.Len(t, doc.ModelSpace(), 1)
	})

	t.Run("should refuse to write line breaks", func(t *testing.T) {
		doc, err := New("R2018")
		require.NoError(t, err)
		doc.SetHeader("$PROJECTNAME", Tag{Code: 1, Value: "a\n  0\nLINE"})

		_, err = doc.Bytes()
		assert.ErrorIs(t, err, ErrInvalidValue)
	})

	t.Run("should reject bad geometry", func(t *testing.T) {
		doc, err := New("R2018")
		require.NoError(t, err)
		_, err = doc.AddCircle(Circle{Radius: 0})
		assert.ErrorIs(t, err, ErrInvalidGeometry)
		_, err = doc.AddHatch(Hatch{Pattern: Pattern{Name: "ANSI31", Scale: 1}})
		assert.ErrorIs(t, err, ErrInvalidGeometry)
		_, err = doc.AddHatch(Hatch{Pattern: Pattern{Name: "ANSI31", Scale: 0}, Boundary: []Circle{{Radius: 1}}})
		assert.ErrorIs(t, err, ErrInvalidGeometry)
	})
}

func TestReadUpload(t *testing.T) {
	doc, err := Read(strings.NewReader(sampleDXF))
	require.NoError(t, err)

	assert.Equal(t, "AC1015", doc.Version())
	assert.Len(t, doc.ModelSpace(), 3)

	t.Run("should find the first model-space circle", func(t *testing.T) {
		c, ok := doc.FirstCircle()
		require.True(t, ok)
		assert.Equal(t, Circle{
			Handle: "1A0",
			Owner:  "1F",
			Layer:  "PARTS",
			Center: Point{X: 3.5, Y: -2},
			Radius: 5,
		}, c)
		assert.Len(t, doc.Circles(), 2)
	})

	t.Run("should allocate handles above every existing handle", func(t *testing.T) {
		c, _ := doc.FirstCircle()
		h, err := doc.AddHatch(CircleHatch(c, "PARTS", Pattern{Name: "ANSI31", Angle: 30, Scale: 0.5}))
		require.NoError(t, err)
		assert.Equal(t, "1A1", h.Handle)
		assert.Equal(t, "1F", h.Owner)
	})

	t.Run("should keep unknown content on write", func(t *testing.T) {
		require.NoError(t, doc.EnsureLayer("HATCH"))
		data, err := doc.Bytes()
		require.NoError(t, err)

		back, err := ReadBytes(data)
		require.NoError(t, err)
		assert.Equal(t, []string{"HEADER", "TABLES", "ENTITIES", "OBJECTS"}, back.Sections())
		assert.Equal(t, []string{"0", "HATCH"}, back.Layers())
		assert.Contains(t, string(data), "ACAD_GROUP")
		assert.Contains(t, string(data), "AcDbLine")

		ms := back.ModelSpace()
		require.Len(t, ms, 4)
		assert.Equal(t, []string{"LINE", "CIRCLE", "CIRCLE", "HATCH"}, []string{ms[0].Type, ms[1].Type, ms[2].Type, ms[3].Type})

		hatches := back.Hatches()
		require.Len(t, hatches, 1)
		assert.Equal(t, []string{"1A0"}, hatches[0].SourceHandles)

		seed, _ := back.HeaderValue("$HANDSEED")
		assert.Equal(t, "1A3", seed)
	})
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		wantMsg string
	}{
		{name: "empty", input: "", wantErr: ErrEmpty},
		{name: "blank lines", input: "\n\n", wantErr: ErrEmpty},
		{name: "binary", input: binarySentinel + "\r\n\x1a\x00", wantErr: ErrBinary},
		{name: "not a group code", input: "hello\nworld\n", wantMsg: `line 1: invalid group code "hello"`},
		{name: "dangling code", input: "  0\nSECTION\n  2\n", wantMsg: "line 3: missing value for group code 2"},
		{name: "tag outside section", input: "  0\nLINE\n  0\nEOF\n", wantMsg: "line 1: expected SECTION"},
		{name: "unnamed section", input: "  0\nSECTION\n  0\nENDSEC\n", wantMsg: "SECTION without a name"},
		{name: "unterminated section", input: "  0\nSECTION\n  2\nENTITIES\n", wantMsg: "section ENTITIES: missing ENDSEC"},
		{name: "orphan tag", input: "  0\nSECTION\n  2\nENTITIES\n  8\n0\n  0\nENDSEC\n", wantMsg: "outside of any record"},
		{name: "broken circle", input: "  0\nSECTION\n  2\nENTITIES\n  0\nCIRCLE\n 10\n1.0\n 20\n1.0\n  0\nENDSEC\n  0\nEOF\n", wantMsg: "missing group code 40"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestReadTolerance(t *testing.T) {
	input := "\ufeff999\nwritten by hand\r\n  0\r\nSECTION\r\n  2\r\nENTITIES\r\n  0\r\nCIRCLE\r\n  8\r\nA\r\n 10\r\n 0.5\r\n 20\r\n0\r\n 40\r\n2\r\n  0\r\nENDSEC\r\n  0\r\nEOF\r\n\r\n"
	doc, err := Read(strings.NewReader(input))
	require.NoError(t, err)

	c, ok := doc.FirstCircle()
	require.True(t, ok)
	assert.Equal(t, "A", c.Layer)
	assert.Equal(t, 0.5, c.Center.X)
	assert.Equal(t, 2.0, c.Radius)
	assert.Equal(t, "AC1009", doc.Version())
}
