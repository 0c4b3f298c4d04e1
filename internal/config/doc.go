// Package config loads the JSON parameters of a conversion run: camera image
// geometry and depth policy, the BEV window and resolution, radar image
// settings, the sensor channel lists and the worker count.
package config
