// Package pointcloud decodes fixed-layout binary point records: flat lidar
// sweeps of float32 x, y, z, intensity and PCD radar files with a text header
// followed by packed little-endian records.
package pointcloud
