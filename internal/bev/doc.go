// Package bev rasterizes point clouds into bird's-eye-view occupancy images.
//
// A Window bounds the metric x/y region of interest. Points strictly inside it
// are binned at a fixed resolution; any bin holding at least one point is set
// to 255. The grid is then flipped vertically so that image row 0 holds the
// largest y values, matching the usual top-down view with +y pointing up.
package bev
