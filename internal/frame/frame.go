// Package frame holds the in-memory table the ETL steps pass between each
// other: an ordered set of equally long, typed, nullable columns.
package frame

import (
	"fmt"
	"time"
)

type Kind int

const (
	KindText Kind = iota
	KindInt
	KindFloat
	KindBool
	KindDatetime
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindDatetime:
		return "datetime"
	case KindList:
		return "list"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Column cells are nil for null. Non-null cells hold string (KindText),
// int64 (KindInt), float64 (KindFloat), bool (KindBool), time.Time
// (KindDatetime) or []string (KindList).
type Column struct {
	Name   string
	Kind   Kind
	Values []any
}

func NewColumn(name string, kind Kind, n int) *Column {
	return &Column{Name: name, Kind: kind, Values: make([]any, n)}
}

func (c *Column) Len() int {
	return len(c.Values)
}

func (c *Column) IsNull(i int) bool {
	return c.Values[i] == nil
}

func (c *Column) NullCount() int {
	n := 0
	for _, v := range c.Values {
		if v == nil {
			n++
		}
	}
	return n
}

func (c *Column) Str(i int) (string, bool) {
	s, ok := c.Values[i].(string)
	return s, ok
}

func (c *Column) Int(i int) (int64, bool) {
	v, ok := c.Values[i].(int64)
	return v, ok
}

func (c *Column) Float(i int) (float64, bool) {
	v, ok := c.Values[i].(float64)
	return v, ok
}

func (c *Column) Bool(i int) (bool, bool) {
	v, ok := c.Values[i].(bool)
	return v, ok
}

func (c *Column) Time(i int) (time.Time, bool) {
	v, ok := c.Values[i].(time.Time)
	return v, ok
}

func (c *Column) List(i int) ([]string, bool) {
	v, ok := c.Values[i].([]string)
	return v, ok
}

type Frame struct {
	rows  int
	cols  []*Column
	index map[string]int
}

func New(rows int) *Frame {
	return &Frame{rows: rows, index: map[string]int{}}
}

func (f *Frame) Len() int {
	return f.rows
}

func (f *Frame) Width() int {
	return len(f.cols)
}

func (f *Frame) Columns() []*Column {
	return f.cols
}

func (f *Frame) Names() []string {
	out := make([]string, len(f.cols))
	for i, c := range f.cols {
		out[i] = c.Name
	}
	return out
}

func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

func (f *Frame) Column(name string) (*Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

// Append adds c as the last column.
func (f *Frame) Append(c *Column) error {
	return f.Insert(len(f.cols), c)
}

// Insert adds c at position pos.
func (f *Frame) Insert(pos int, c *Column) error {
	if err := f.check(c); err != nil {
		return err
	}
	if _, ok := f.index[c.Name]; ok {
		return fmt.Errorf("duplicate column %q", c.Name)
	}
	if pos < 0 || pos > len(f.cols) {
		return fmt.Errorf("column position %d out of range", pos)
	}
	f.cols = append(f.cols, nil)
	copy(f.cols[pos+1:], f.cols[pos:])
	f.cols[pos] = c
	f.reindex()
	return nil
}

// Replace swaps the column with the same name for c, keeping its position.
func (f *Frame) Replace(c *Column) error {
	if err := f.check(c); err != nil {
		return err
	}
	i, ok := f.index[c.Name]
	if !ok {
		return fmt.Errorf("unknown column %q", c.Name)
	}
	f.cols[i] = c
	return nil
}

func (f *Frame) check(c *Column) error {
	if c == nil {
		return fmt.Errorf("nil column")
	}
	if c.Name == "" {
		return fmt.Errorf("empty column name")
	}
	if c.Len() != f.rows {
		return fmt.Errorf("column %q has %d rows, frame has %d", c.Name, c.Len(), f.rows)
	}
	return nil
}

func (f *Frame) reindex() {
	f.index = make(map[string]int, len(f.cols))
	for i, c := range f.cols {
		f.index[c.Name] = i
	}
}
