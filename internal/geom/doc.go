// Package geom holds the small value types the transform chain is built on:
// unit quaternions, rigid poses and box sizes over r3.Vector.
//
// Quaternion convention: scalar-first (W, X, Y, Z), Hamilton product,
// right-handed axes. This matches the rotation records in nuScenes
// calibrated_sensor, ego_pose and sample_annotation tables. A vector v is
// rotated by q as q ⊗ (0, v) ⊗ q⁻¹. Nothing here renormalizes; inputs are
// calibration data and are expected to be unit length already.
package geom
