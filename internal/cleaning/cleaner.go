package cleaning

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"data-jobs/internal/domain/job"
	"data-jobs/internal/frame"
)

// Schema names the columns the Cleaner coerces away from text.
type Schema struct {
	IDColumn        string
	BoolColumns     []string
	FloatColumns    []string
	DatetimeColumns []string
	DatetimeLayout  string
}

func DefaultSchema() Schema {
	return Schema{
		IDColumn:        job.ColJobID,
		BoolColumns:     job.BoolColumns,
		FloatColumns:    job.FloatColumns,
		DatetimeColumns: []string{job.ColJobPostedDate},
		DatetimeLayout:  job.PostedDateLayout,
	}
}

type Cleaner struct {
	schema Schema
}

func NewCleaner(schema Schema) *Cleaner {
	if schema.DatetimeLayout == "" {
		schema.DatetimeLayout = job.PostedDateLayout
	}
	if schema.IDColumn == "" {
		schema.IDColumn = job.ColJobID
	}
	return &Cleaner{schema: schema}
}

// Clean coerces f in place. Columns named by the schema but absent from f are
// skipped; the validator reports them.
func (c *Cleaner) Clean(f *frame.Frame) error {
	if f == nil {
		return fmt.Errorf("nil frame")
	}

	for _, col := range f.Columns() {
		if col.Kind == frame.KindText {
			stripText(col)
		}
	}

	for _, name := range c.schema.DatetimeColumns {
		if err := c.coerce(f, name, frame.KindDatetime, c.parseTime); err != nil {
			return err
		}
	}
	for _, name := range c.schema.BoolColumns {
		if err := c.coerce(f, name, frame.KindBool, parseBool); err != nil {
			return err
		}
	}
	for _, name := range c.schema.FloatColumns {
		if err := c.coerce(f, name, frame.KindFloat, parseFloatOrZero); err != nil {
			return err
		}
	}

	return c.ensureID(f)
}

func (c *Cleaner) coerce(f *frame.Frame, name string, kind frame.Kind, conv func(v any) any) error {
	src, ok := f.Column(name)
	if !ok || src.Kind == kind {
		return nil
	}
	if src.Kind != frame.KindText {
		return fmt.Errorf("column %q: cannot coerce %s to %s", name, src.Kind, kind)
	}
	dst := frame.NewColumn(name, kind, src.Len())
	for i, v := range src.Values {
		dst.Values[i] = conv(v)
	}
	return f.Replace(dst)
}

func (c *Cleaner) ensureID(f *frame.Frame) error {
	name := c.schema.IDColumn
	src, ok := f.Column(name)
	if !ok {
		id := frame.NewColumn(name, frame.KindInt, f.Len())
		for i := range id.Values {
			id.Values[i] = int64(i + 1)
		}
		return f.Insert(0, id)
	}
	if src.Kind == frame.KindInt {
		return nil
	}
	return c.coerce(f, name, frame.KindInt, parseInt)
}

// stripText trims every cell and turns empty strings into nulls.
func stripText(col *frame.Column) {
	for i, v := range col.Values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			col.Values[i] = nil
			continue
		}
		col.Values[i] = s
	}
}

func (c *Cleaner) parseTime(v any) any {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	t, err := time.ParseInLocation(c.schema.DatetimeLayout, s, time.UTC)
	if err != nil {
		return nil
	}
	return t.UTC()
}

func parseBool(v any) any {
	s, ok := v.(string)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y":
		return true
	default:
		return false
	}
}

func parseFloatOrZero(v any) any {
	s, ok := v.(string)
	if !ok {
		return float64(0)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return float64(0)
	}
	return f
}

func parseInt(v any) any {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil
	}
	return n
}
