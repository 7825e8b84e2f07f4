// Package harness runs rotation scenarios defined in YAML files and
// compares the produced schedules against golden files.
//
// A scenario pins a user profile, a set of content pools, and a run of
// calendar days, then walks the full "get today's item" flow once per day
// against an in-memory store. The resulting schedule of which item every
// day resolved to is serialized and checked byte-for-byte against
// testdata/golden/<name>.golden.
//
// To regenerate golden files after an intentional change:
//
//	go test ./internal/harness -update
package harness
