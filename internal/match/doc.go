// Package match pairs media files with their JSON sidecars across six
// cascading passes: suffix canonicalization, edited/effects variant
// propagation, exact pairing, parenthetical-index pairing, truncated-name
// matching, and a directory-completeness filter for junk.
package match
