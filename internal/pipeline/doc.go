// Package pipeline drives the three preprocessing stages over a dataset:
// camera annotations to YOLO label files, lidar sweeps to BEV occupancy
// images and radar detections to scatter and heatmap images.
//
// Each stage works one frame or file at a time. A bad frame or file is
// logged, counted in Stats and recorded in the run ledger, and the stage
// moves on; only failures writing outputs abort a run.
package pipeline
