package pointcloud

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Cloud holds decoded records column by column. Every value is widened to
// float64; integer fields keep their exact value.
type Cloud struct {
	Schema Schema
	cols   [][]float64
	n      int
}

func newCloud(schema Schema, n int) *Cloud {
	c := &Cloud{Schema: schema, cols: make([][]float64, len(schema)), n: n}
	for i := range c.cols {
		c.cols[i] = make([]float64, n)
	}
	return c
}

// Len is the number of points.
func (c *Cloud) Len() int {
	if c == nil {
		return 0
	}
	return c.n
}

// Column returns the values of the named field. The slice is shared with the
// cloud and must not be modified.
func (c *Cloud) Column(name string) ([]float64, bool) {
	i := c.Schema.Index(name)
	if i < 0 {
		return nil, false
	}
	return c.cols[i], true
}

// At returns field name of point i.
func (c *Cloud) At(i int, name string) (float64, bool) {
	col, ok := c.Column(name)
	if !ok || i < 0 || i >= c.n {
		return 0, false
	}
	return col[i], true
}

// Select returns a cloud restricted to the named fields, in the given order.
// Column data is shared with c.
func (c *Cloud) Select(names ...string) (*Cloud, error) {
	out := &Cloud{n: c.n}
	for _, name := range names {
		i := c.Schema.Index(name)
		if i < 0 {
			return nil, fmt.Errorf("field %q not in schema [%s]", name, c.Schema)
		}
		out.Schema = append(out.Schema, c.Schema[i])
		out.cols = append(out.cols, c.cols[i])
	}
	return out, nil
}

// Bounds returns the minimum and maximum of the named field. ok is false for
// an empty cloud or an unknown field.
func (c *Cloud) Bounds(name string) (lo, hi float64, ok bool) {
	col, found := c.Column(name)
	if !found || len(col) == 0 {
		return 0, 0, false
	}
	return floats.Min(col), floats.Max(col), true
}
