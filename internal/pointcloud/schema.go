package pointcloud

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedPointCloud is returned when a payload or header cannot be a
// point cloud of the expected layout. The file is skipped.
var ErrMalformedPointCloud = errors.New("malformed point cloud")

// Field is one named value in a point record. Type uses the PCD letters:
// F for IEEE float, I for signed and U for unsigned integers. Size is the
// width in bytes.
type Field struct {
	Name string
	Size int
	Type byte
}

// String renders the field as name:TypeSize, e.g. "x:F4".
func (f Field) String() string {
	return fmt.Sprintf("%s:%c%d", f.Name, f.Type, f.Size)
}

func (f Field) supported() bool {
	switch f.Type {
	case 'F':
		return f.Size == 4 || f.Size == 8
	case 'I', 'U':
		return f.Size == 1 || f.Size == 2 || f.Size == 4
	}
	return false
}

// Schema is the ordered field layout of one record.
type Schema []Field

// RecordSize is the byte width of one record.
func (s Schema) RecordSize() int {
	n := 0
	for _, f := range s {
		n += f.Size
	}
	return n
}

// Index returns the position of the named field, or -1.
func (s Schema) Index(name string) int {
	for i, f := range s {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Names lists the field names in record order.
func (s Schema) Names() []string {
	out := make([]string, len(s))
	for i, f := range s {
		out[i] = f.Name
	}
	return out
}

// Equal reports whether two schemas have the same fields in the same order.
func (s Schema) Equal(o Schema) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// Validate checks that the schema is non-empty, has unique names and only
// uses decodable field types.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return errors.New("schema has no fields")
	}
	seen := make(map[string]bool, len(s))
	for _, f := range s {
		if f.Name == "" {
			return errors.New("schema field has empty name")
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate schema field %q", f.Name)
		}
		seen[f.Name] = true
		if !f.supported() {
			return fmt.Errorf("unsupported type %c%d for field %q", f.Type, f.Size, f.Name)
		}
	}
	return nil
}

func (s Schema) String() string {
	parts := make([]string, len(s))
	for i, f := range s {
		parts[i] = f.String()
	}
	return strings.Join(parts, " ")
}

// LidarSchema is the flat lidar sweep layout: four float32 values per point.
var LidarSchema = Schema{
	{Name: "x", Size: 4, Type: 'F'},
	{Name: "y", Size: 4, Type: 'F'},
	{Name: "z", Size: 4, Type: 'F'},
	{Name: "intensity", Size: 4, Type: 'F'},
}

// RadarSchema is the 18-field, 43-byte radar record layout.
var RadarSchema = Schema{
	{Name: "x", Size: 4, Type: 'F'},
	{Name: "y", Size: 4, Type: 'F'},
	{Name: "z", Size: 4, Type: 'F'},
	{Name: "dyn_prop", Size: 1, Type: 'I'},
	{Name: "id", Size: 2, Type: 'I'},
	{Name: "rcs", Size: 4, Type: 'F'},
	{Name: "vx", Size: 4, Type: 'F'},
	{Name: "vy", Size: 4, Type: 'F'},
	{Name: "vx_comp", Size: 4, Type: 'F'},
	{Name: "vy_comp", Size: 4, Type: 'F'},
	{Name: "is_quality_valid", Size: 1, Type: 'I'},
	{Name: "ambig_state", Size: 1, Type: 'I'},
	{Name: "x_rms", Size: 1, Type: 'I'},
	{Name: "y_rms", Size: 1, Type: 'I'},
	{Name: "invalid_state", Size: 1, Type: 'I'},
	{Name: "pdh0", Size: 1, Type: 'I'},
	{Name: "vx_rms", Size: 1, Type: 'I'},
	{Name: "vy_rms", Size: 1, Type: 'I'},
}
