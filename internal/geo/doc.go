// Package geo provides coordinates, bounding boxes and great-circle distances.
//
// Distances use the haversine formula with the mean Earth radius, so results
// match the reference haversine implementation to floating-point precision.
// An R-tree backed Index is available for clipping large point sets to a box.
package geo
