// Package geo parses GPS coordinates into a canonical absolute-value plus
// hemisphere-reference form and provides the distance and spatial-bucketing
// primitives the resolver and cluster engine share.
package geo
