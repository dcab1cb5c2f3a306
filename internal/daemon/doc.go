// Package daemon coordinates the long-running Shoebox process.
//
// It wires configuration, queue storage, and the workflow manager into a
// single lifecycle with flock-based locking so two processes never work the
// same queue. Start runs the manager in the background until Stop; RunUntilIdle
// drains the queue once under the same lock for one-shot CLI runs.
//
// Keep orchestration logic here: individual pipeline stages live in their own
// packages while the daemon focuses on startup, shutdown, and exclusion.
package daemon
