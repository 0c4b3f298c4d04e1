// Package dataset reads the nuScenes metadata tables the preprocessing
// pipeline needs: samples, sample data, calibrated sensors, ego poses and
// annotations with their resolved category names.
//
// Source is the interface the pipeline consumes. Tables is the JSON-backed
// implementation, loaded from a release directory such as v1.0-mini/.
package dataset
