// Package projection turns a 3D oriented box expressed in a camera frame into
// a normalized YOLO bounding box: corner generation, pinhole projection
// through the intrinsic matrix, axis-aligned reduction and the validity
// filter that drops degenerate or off-image boxes.
//
// Category strings map to class ids through a fixed table shared by every
// label file (see ClassID).
package projection
