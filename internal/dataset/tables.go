package dataset

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/banshee-data/fusionprep/internal/fsutil"
	"github.com/banshee-data/fusionprep/internal/monitoring"
)

// Table file names inside a release directory.
const (
	SampleFile           = "sample.json"
	SampleDataFile       = "sample_data.json"
	CalibratedSensorFile = "calibrated_sensor.json"
	SensorFile           = "sensor.json"
	EgoPoseFile          = "ego_pose.json"
	AnnotationFile       = "sample_annotation.json"
	InstanceFile         = "instance.json"
	CategoryFile         = "category.json"
)

type sampleRecord struct {
	Token      string `json:"token"`
	Timestamp  int64  `json:"timestamp"`
	SceneToken string `json:"scene_token"`
}

type sensorRecord struct {
	Token    string `json:"token"`
	Channel  string `json:"channel"`
	Modality string `json:"modality"`
}

type instanceRecord struct {
	Token         string `json:"token"`
	CategoryToken string `json:"category_token"`
}

type categoryRecord struct {
	Token string `json:"token"`
	Name  string `json:"name"`
}

// Tables is an in-memory index over the JSON tables. It is read-only after
// LoadTables and safe for concurrent use.
type Tables struct {
	samples     []Sample
	sampleData  map[string]SampleData
	calibrated  map[string]CalibratedSensor
	egoPoses    map[string]EgoPose
	annotations map[string]Annotation
}

var _ Source = (*Tables)(nil)

func readTable(fsys fsutil.FileSystem, dir, name string, v interface{}) error {
	path := filepath.Join(dir, name)
	data, err := fsys.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// LoadTables reads the metadata tables from dir and builds the sample index.
// Each sample's Data holds its keyframe captures by channel and Anns its
// annotations in table order.
func LoadTables(fsys fsutil.FileSystem, dir string) (*Tables, error) {
	var (
		samples     []sampleRecord
		sampleData  []SampleData
		calibrated  []CalibratedSensor
		sensors     []sensorRecord
		egoPoses    []EgoPose
		annotations []Annotation
		instances   []instanceRecord
		categories  []categoryRecord
	)
	for _, tbl := range []struct {
		name string
		v    interface{}
	}{
		{SampleFile, &samples},
		{SampleDataFile, &sampleData},
		{CalibratedSensorFile, &calibrated},
		{SensorFile, &sensors},
		{EgoPoseFile, &egoPoses},
		{AnnotationFile, &annotations},
		{InstanceFile, &instances},
		{CategoryFile, &categories},
	} {
		if err := readTable(fsys, dir, tbl.name, tbl.v); err != nil {
			return nil, err
		}
	}

	t := &Tables{
		sampleData:  make(map[string]SampleData, len(sampleData)),
		calibrated:  make(map[string]CalibratedSensor, len(calibrated)),
		egoPoses:    make(map[string]EgoPose, len(egoPoses)),
		annotations: make(map[string]Annotation, len(annotations)),
	}

	sensorByToken := make(map[string]sensorRecord, len(sensors))
	for _, s := range sensors {
		sensorByToken[s.Token] = s
	}
	for _, c := range calibrated {
		t.calibrated[c.Token] = c
	}
	for _, e := range egoPoses {
		t.egoPoses[e.Token] = e
	}

	categoryName := make(map[string]string, len(categories))
	for _, c := range categories {
		categoryName[c.Token] = c.Name
	}
	instanceCategory := make(map[string]string, len(instances))
	for _, in := range instances {
		instanceCategory[in.Token] = categoryName[in.CategoryToken]
	}

	index := make(map[string]*Sample, len(samples))
	t.samples = make([]Sample, len(samples))
	for i, s := range samples {
		t.samples[i] = Sample{Token: s.Token, Timestamp: s.Timestamp, SceneToken: s.SceneToken, Data: map[string]string{}}
	}
	sort.SliceStable(t.samples, func(i, j int) bool { return t.samples[i].Timestamp < t.samples[j].Timestamp })
	for i := range t.samples {
		index[t.samples[i].Token] = &t.samples[i]
	}

	for _, sd := range sampleData {
		if cs, ok := t.calibrated[sd.CalibratedSensorToken]; ok {
			if sensor, ok := sensorByToken[cs.SensorToken]; ok {
				sd.Channel = sensor.Channel
				sd.Modality = sensor.Modality
			}
		}
		t.sampleData[sd.Token] = sd
		if !sd.IsKeyFrame || sd.Channel == "" {
			continue
		}
		if s, ok := index[sd.SampleToken]; ok {
			s.Data[sd.Channel] = sd.Token
		}
	}

	unresolved := 0
	for _, a := range annotations {
		a.CategoryName = instanceCategory[a.InstanceToken]
		if a.CategoryName == "" {
			unresolved++
		}
		t.annotations[a.Token] = a
		if s, ok := index[a.SampleToken]; ok {
			s.Anns = append(s.Anns, a.Token)
		}
	}
	if unresolved > 0 {
		monitoring.Warnf("%d annotations have no resolvable category", unresolved)
	}

	monitoring.Infof("loaded %d samples, %d sample_data, %d annotations from %s",
		len(t.samples), len(t.sampleData), len(t.annotations), dir)
	return t, nil
}

// Samples returns every sample ordered by timestamp. The slice is shared.
func (t *Tables) Samples() []Sample {
	return t.samples
}

// SampleData looks up a sample_data record.
func (t *Tables) SampleData(token string) (SampleData, error) {
	sd, ok := t.sampleData[token]
	if !ok {
		return SampleData{}, fmt.Errorf("sample_data %q: %w", token, ErrNotFound)
	}
	return sd, nil
}

// CalibratedSensor looks up a calibrated_sensor record.
func (t *Tables) CalibratedSensor(token string) (CalibratedSensor, error) {
	c, ok := t.calibrated[token]
	if !ok {
		return CalibratedSensor{}, fmt.Errorf("calibrated_sensor %q: %w", token, ErrNotFound)
	}
	return c, nil
}

// EgoPose looks up an ego_pose record.
func (t *Tables) EgoPose(token string) (EgoPose, error) {
	e, ok := t.egoPoses[token]
	if !ok {
		return EgoPose{}, fmt.Errorf("ego_pose %q: %w", token, ErrNotFound)
	}
	return e, nil
}

// Annotation looks up a sample_annotation record.
func (t *Tables) Annotation(token string) (Annotation, error) {
	a, ok := t.annotations[token]
	if !ok {
		return Annotation{}, fmt.Errorf("sample_annotation %q: %w", token, ErrNotFound)
	}
	return a, nil
}
