package pointcloud

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/banshee-data/fusionprep/internal/monitoring"
)

// dataSentinel ends the text header of a binary PCD file.
const dataSentinel = "DATA binary"

// Header is the text preamble of a PCD file. Keys that are absent are left
// at their zero value; unknown keys are ignored.
type Header struct {
	Version   string
	Fields    []string
	Size      []int
	Type      []string
	Count     []int
	Width     int
	Height    int
	Viewpoint []float64
	Points    int
	Data      string
}

// ReadHeader consumes header lines from r up to and including the line
// containing "DATA binary". r is left positioned at the first payload byte.
// Unparseable values on other lines are logged and leave their field unset.
func ReadHeader(r *bufio.Reader) (*Header, error) {
	h := &Header{}
	for {
		line, err := r.ReadString('\n')
		if len(line) == 0 && err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("%w: no %q line in header", ErrMalformedPointCloud, dataSentinel)
			}
			return nil, err
		}
		// Only the sentinel matters for decoding; a bad value elsewhere is
		// reported and the scan continues.
		if perr := h.parseLine(line); perr != nil {
			monitoring.Warnf("radar header line ignored: %v", perr)
		}
		if strings.Contains(line, dataSentinel) {
			if h.Data != "binary" {
				return nil, fmt.Errorf("%w: unsupported DATA %q", ErrMalformedPointCloud, h.Data)
			}
			return h, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: no %q line in header", ErrMalformedPointCloud, dataSentinel)
		}
	}
}

func (h *Header) parseLine(line string) error {
	args := strings.Fields(line)
	if len(args) == 0 || strings.HasPrefix(args[0], "#") {
		return nil
	}
	key, vals := args[0], args[1:]
	var err error
	switch key {
	case "VERSION":
		if len(vals) > 0 {
			h.Version = vals[0]
		}
	case "FIELDS":
		h.Fields = vals
	case "SIZE":
		h.Size, err = atoiAll(key, vals)
	case "TYPE":
		h.Type = vals
	case "COUNT":
		h.Count, err = atoiAll(key, vals)
	case "WIDTH":
		h.Width, err = atoiOne(key, vals)
	case "HEIGHT":
		h.Height, err = atoiOne(key, vals)
	case "VIEWPOINT":
		h.Viewpoint = make([]float64, len(vals))
		for i, v := range vals {
			if h.Viewpoint[i], err = strconv.ParseFloat(v, 64); err != nil {
				return fmt.Errorf("VIEWPOINT: %w", err)
			}
		}
	case "POINTS":
		h.Points, err = atoiOne(key, vals)
	case "DATA":
		if len(vals) > 0 {
			h.Data = vals[0]
		}
	}
	return err
}

func atoiOne(key string, vals []string) (int, error) {
	if len(vals) == 0 {
		return 0, fmt.Errorf("%s has no value", key)
	}
	n, err := strconv.Atoi(vals[0])
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func atoiAll(key string, vals []string) ([]int, error) {
	out := make([]int, len(vals))
	for i, v := range vals {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out[i] = n
	}
	return out, nil
}

// Schema builds a record schema from FIELDS, SIZE and TYPE. COUNT values
// other than 1 are not supported.
func (h *Header) Schema() (Schema, error) {
	if len(h.Fields) == 0 {
		return nil, fmt.Errorf("header has no FIELDS")
	}
	if len(h.Size) != len(h.Fields) || len(h.Type) != len(h.Fields) {
		return nil, fmt.Errorf("header has %d fields, %d sizes and %d types", len(h.Fields), len(h.Size), len(h.Type))
	}
	if len(h.Count) != 0 && len(h.Count) != len(h.Fields) {
		return nil, fmt.Errorf("header has %d fields and %d counts", len(h.Fields), len(h.Count))
	}
	s := make(Schema, len(h.Fields))
	for i, name := range h.Fields {
		if len(h.Count) != 0 && h.Count[i] != 1 {
			return nil, fmt.Errorf("field %q has COUNT %d", name, h.Count[i])
		}
		if len(h.Type[i]) != 1 {
			return nil, fmt.Errorf("field %q has TYPE %q", name, h.Type[i])
		}
		s[i] = Field{Name: name, Size: h.Size[i], Type: h.Type[i][0]}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// DecodeRadar reads a binary radar PCD file. The payload is always decoded
// with RadarSchema; a header that declares a different layout is logged and
// otherwise ignored. A payload shorter than one record gives an empty cloud.
func DecodeRadar(r io.Reader) (*Cloud, *Header, error) {
	br := bufio.NewReader(r)
	h, err := ReadHeader(br)
	if err != nil {
		return nil, nil, err
	}

	if declared, serr := h.Schema(); serr != nil {
		monitoring.Warnf("radar header schema unreadable: %v", serr)
	} else if !declared.Equal(RadarSchema) {
		monitoring.Warnf("radar header declares [%s], decoding as [%s]", declared, RadarSchema)
	}

	var payload bytes.Buffer
	if _, err := payload.ReadFrom(br); err != nil {
		return nil, nil, fmt.Errorf("read radar payload: %w", err)
	}
	if n := payload.Len(); n%RadarSchema.RecordSize() != 0 {
		monitoring.Logf("radar payload has %d trailing bytes", n%RadarSchema.RecordSize())
	}

	c, err := DecodeRecords(payload.Bytes(), RadarSchema)
	if err != nil {
		return nil, nil, err
	}
	if h.Points > 0 && h.Points != c.Len() {
		monitoring.Warnf("radar header declares %d points, decoded %d", h.Points, c.Len())
	}
	return c, h, nil
}
