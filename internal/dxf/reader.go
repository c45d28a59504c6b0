package dxf

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const binarySentinel = "AutoCAD Binary DXF"

// maxLineSize bounds a single DXF line. Long text values and embedded
// proxy data stay well below it.
const maxLineSize = 16 << 20

type lineTag struct {
	Tag
	line int
}

// Read parses an ASCII DXF drawing.
func Read(r io.Reader) (*Document, error) {
	br := bufio.NewReader(r)
	if head, _ := br.Peek(len(binarySentinel)); string(head) == binarySentinel {
		return nil, ErrBinary
	}

	tags, err := scanTags(br)
	if err != nil {
		return nil, err
	}

	d := &Document{}
	if err := d.build(tags); err != nil {
		return nil, err
	}
	for _, rec := range d.ModelSpace() {
		if rec.Type != "CIRCLE" {
			continue
		}
		if _, err := circleFrom(rec); err != nil {
			return nil, fmt.Errorf("invalid CIRCLE %s: %w", rec.Handle(), err)
		}
	}
	return d, nil
}

// scanTags reads code/value line pairs up to the EOF marker.
func scanTags(r io.Reader) ([]lineTag, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		tags []lineTag
		line int
	)
	for sc.Scan() {
		line++
		raw := sc.Text()
		if line == 1 {
			raw = strings.TrimPrefix(raw, "\ufeff")
		}
		codeText := strings.TrimSpace(raw)
		if codeText == "" {
			continue
		}
		code, err := strconv.Atoi(codeText)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid group code %q", line, codeText)
		}
		codeLine := line
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			return nil, fmt.Errorf("line %d: missing value for group code %d", codeLine, code)
		}
		line++
		t := lineTag{Tag: Tag{Code: code, Value: sc.Text()}, line: codeLine}
		if code == 0 && t.Text() == "EOF" {
			return tags, nil
		}
		tags = append(tags, t)
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("line %d: line exceeds %d bytes", line+1, maxLineSize)
		}
		return nil, fmt.Errorf("read: %w", err)
	}
	if len(tags) == 0 {
		return nil, ErrEmpty
	}
	return tags, nil
}

// build groups tags into sections, header variables and records.
func (d *Document) build(tags []lineTag) error {
	for i := 0; i < len(tags); {
		t := tags[i]
		if t.Code == 999 {
			i++
			continue
		}
		if t.Code != 0 || !strings.EqualFold(t.Text(), "SECTION") {
			return fmt.Errorf("line %d: expected SECTION, got %d %q", t.line, t.Code, t.Text())
		}
		i++
		if i >= len(tags) || tags[i].Code != 2 {
			return fmt.Errorf("line %d: SECTION without a name", t.line)
		}
		sec := &Section{Name: strings.ToUpper(tags[i].Text())}
		i++

		closed := false
		for ; i < len(tags); i++ {
			t := tags[i]
			if t.Code == 0 && strings.EqualFold(t.Text(), "ENDSEC") {
				closed = true
				i++
				break
			}
			if err := sec.append(t); err != nil {
				return err
			}
		}
		if !closed {
			return fmt.Errorf("section %s: missing ENDSEC", sec.Name)
		}
		d.sections = append(d.sections, sec)
	}
	return nil
}

func (s *Section) append(t lineTag) error {
	switch {
	case s.Name == "HEADER" && t.Code == 9:
		s.Variables = append(s.Variables, &Variable{Name: t.Text()})
	case s.Name == "HEADER":
		if len(s.Variables) == 0 {
			return fmt.Errorf("line %d: group code %d before the first header variable", t.line, t.Code)
		}
		v := s.Variables[len(s.Variables)-1]
		v.Tags = append(v.Tags, t.Tag)
	case t.Code == 0:
		s.Records = append(s.Records, &Record{Type: strings.ToUpper(t.Text())})
	case t.Code == 999:
	default:
		if len(s.Records) == 0 {
			return fmt.Errorf("line %d: group code %d outside of any record in section %s", t.line, t.Code, s.Name)
		}
		rec := s.Records[len(s.Records)-1]
		rec.Tags = append(rec.Tags, t.Tag)
	}
	return nil
}

// ReadBytes parses an in-memory drawing.
func ReadBytes(b []byte) (*Document, error) {
	return Read(bytes.NewReader(b))
}
