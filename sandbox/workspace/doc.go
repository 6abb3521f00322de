// Package workspace manages the isolated temporary directory owned by
// one execution attempt.
//
// Each attempt gets a uniquely-named directory created through the
// platform's secure temporary-directory facility, holding the
// materialized source file and any build artifacts. The handle's
// Release method is idempotent and is called on every exit path, so
// workspace directories never outlive their attempt.
package workspace
