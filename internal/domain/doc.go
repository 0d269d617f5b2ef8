// Package domain defines the core entities of the review engine: cards and
// their content-addressed fingerprints, per-card performance state, grades,
// and review records. Entities here are plain values with no I/O; identity
// is always the content fingerprint, never a surrogate key.
package domain
