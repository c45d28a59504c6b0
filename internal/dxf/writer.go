package dxf

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// WriteTo serializes the drawing as ASCII DXF. $HANDSEED is refreshed first
// so that handles added by a later reader never collide with ours.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	if d.modern() {
		d.seedHandles()
		d.SetHeader("$HANDSEED", Tag{Code: 5, Value: formatHandle(d.nextHandle)})
	}

	if err := d.checkValues(); err != nil {
		return 0, err
	}

	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)
	put := func(code int, value string) {
		fmt.Fprintf(bw, "%3d\n%s\n", code, value)
	}

	for _, sec := range d.sections {
		put(0, "SECTION")
		put(2, sec.Name)
		for _, v := range sec.Variables {
			put(9, v.Name)
			for _, t := range v.Tags {
				put(t.Code, t.Value)
			}
		}
		for _, rec := range sec.Records {
			put(0, rec.Type)
			for _, t := range rec.Tags {
				put(t.Code, t.Value)
			}
		}
		put(0, "ENDSEC")
	}
	put(0, "EOF")

	if err := bw.Flush(); err != nil {
		return cw.n, fmt.Errorf("write dxf: %w", err)
	}
	return cw.n, nil
}

// checkValues rejects values that would split into extra group-code lines.
func (d *Document) checkValues() error {
	check := func(name string, tags []Tag) error {
		if strings.ContainsAny(name, "\r\n") {
			return fmt.Errorf("%w: line break in %q", ErrInvalidValue, name)
		}
		for _, t := range tags {
			if strings.ContainsAny(t.Value, "\r\n") {
				return fmt.Errorf("%w: line break in group code %d of %s", ErrInvalidValue, t.Code, name)
			}
		}
		return nil
	}
	for _, sec := range d.sections {
		if err := check(sec.Name, nil); err != nil {
			return err
		}
		for _, v := range sec.Variables {
			if err := check(v.Name, v.Tags); err != nil {
				return err
			}
		}
		for _, rec := range sec.Records {
			if err := check(rec.Type, rec.Tags); err != nil {
				return err
			}
		}
	}
	return nil
}

// Bytes serializes the drawing into memory.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
