// Package cluster derives relationship partitions over resolved media files:
// temporal clusters for capture times within a threshold, location clusters
// for geotags within a great-circle distance, and event clusters for pairs
// satisfying both at once. Each relation is the transitive closure of its
// pairwise test, computed on an independent union-find structure.
package cluster
