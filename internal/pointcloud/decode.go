package pointcloud

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DecodeRecords decodes ⌊len(payload)/RecordSize⌋ little-endian records.
// Trailing bytes that do not make up a whole record are discarded.
func DecodeRecords(payload []byte, schema Schema) (*Cloud, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	stride := schema.RecordSize()
	n := len(payload) / stride
	c := newCloud(schema, n)

	offsets := make([]int, len(schema))
	off := 0
	for i, f := range schema {
		offsets[i] = off
		off += f.Size
	}

	for p := 0; p < n; p++ {
		rec := payload[p*stride : (p+1)*stride]
		for i, f := range schema {
			c.cols[i][p] = decodeValue(rec[offsets[i]:offsets[i]+f.Size], f)
		}
	}
	return c, nil
}

func decodeValue(b []byte, f Field) float64 {
	le := binary.LittleEndian
	switch f.Type {
	case 'F':
		if f.Size == 8 {
			return math.Float64frombits(le.Uint64(b))
		}
		return float64(math.Float32frombits(le.Uint32(b)))
	case 'I':
		switch f.Size {
		case 1:
			return float64(int8(b[0]))
		case 2:
			return float64(int16(le.Uint16(b)))
		default:
			return float64(int32(le.Uint32(b)))
		}
	default:
		switch f.Size {
		case 1:
			return float64(b[0])
		case 2:
			return float64(le.Uint16(b))
		default:
			return float64(le.Uint32(b))
		}
	}
}

// DecodeLidar decodes a flat lidar sweep and keeps only x, y and z. The
// payload must be a whole number of 16-byte records.
func DecodeLidar(payload []byte) (*Cloud, error) {
	stride := LidarSchema.RecordSize()
	if len(payload)%stride != 0 {
		return nil, fmt.Errorf("%w: lidar payload of %d bytes is not a multiple of %d", ErrMalformedPointCloud, len(payload), stride)
	}
	c, err := DecodeRecords(payload, LidarSchema)
	if err != nil {
		return nil, err
	}
	return c.Select("x", "y", "z")
}
