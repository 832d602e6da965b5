// Package reco implements multi-stage direct-walk trajectory reconstruction
// for events recorded by a sparse 3-D sensor array.
//
// Responsibilities: causally-consistent track-element construction from
// sensor pairs, wavefront-model hit association with a scalar quality score,
// greedy clustering of track candidates into direction-consensus jets,
// iterative jet merging, and emission of ranked tracks.
// Key types: Event, TrackElement, Jet, Track, Engine.
//
// The engine runs once per event over up to four detector partitions, each
// with its own tuning set. It never blocks, never panics on sparse input,
// and reports "no tracks" as an empty result rather than an error.
//
// Dependency rule: reco may depend on internal/monitoring only.
// No SQL/database code is allowed in this package.
package reco
