// Package pool loads content-pool catalogs authored as CUE files.
//
// A catalog directory holds .cue files in `package pools`, each declaring
// items under a bracket key:
//
//	pool: "7-10": items: [
//		{ref: "counting-stars", title: "Counting Stars", kind: "story"},
//		{ref: "river-walk", title: "A River Walk", kind: "poem"},
//	]
//
// Item order in the file IS the rotation order; the engine's modulo
// arithmetic assumes it never changes for the lifetime of a rotation.
// Compilation enforces the invariants the engine depends on: known bracket
// keys, at least one item per declared pool, and non-empty, unique refs.
// Refs are NFC-normalized so the byte-level comparison in the blocklist is
// stable regardless of how the authoring editor composed accented
// characters.
package pool
