// Package vision turns camera frames into a steering-ready trajectory.
//
// The pipeline has two halves. A Masker selects candidate line pixels and
// cleans the result with a morphological open/close, producing a binary
// Mask. ExtractTrajectory then scans the mask top to bottom and emits the
// mean column of the line pixels in every row that has any.
//
// This package holds the backend-independent types and a pure-Go masker
// used for offline images and tests. The OpenCV backend used on the vehicle
// lives in package cv.
package vision
