// Package radarviz renders decoded radar detections as fixed-size images:
// a scatter plot and a binned density heatmap, both PNG, plus an optional
// interactive HTML scatter for inspection.
package radarviz
