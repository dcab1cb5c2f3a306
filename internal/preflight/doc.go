// Package preflight provides readiness checks for the external tool and
// filesystem paths that Shoebox depends on.
//
// These checks run in two contexts:
//   - The workflow manager calls RunAll before queue processing starts.
//     If any check fails, the run halts before touching media files.
//   - The CLI status and preflight commands use individual check functions
//     (CheckExiftool, CheckDirectoryAccess) to display readiness.
package preflight
