// Package timestamp standardizes capture times from every metadata source
// into one canonical comparable layout.
//
// Raw values arrive as EXIF datetimes, RFC3339 variants, localized Takeout
// strings, bare epoch numbers, and fragments recovered from file names. All
// of them funnel through the same sanitize-then-parse pipeline so the
// resolver can compare candidates from different sources directly.
package timestamp
