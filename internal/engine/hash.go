package engine

// StableHash computes a DJB2 rolling hash of s: h = h*33 + byte, seeded
// with 5381, wrapping in uint32.
//
// Every client substrate must agree on the value for the same input, because
// the hash picks the fixed starting offset of a user's rotation. DJB2 over
// raw bytes has no locale- or platform-sensitive behavior, which is the
// whole reason it is used here. It is not a cryptographic hash and provides
// only a uniformly distributed, reproducible offset.
func StableHash(s string) uint32 {
	var h uint32 = 5381
	for i := 0; i < len(s); i++ {
		h = h*33 + uint32(s[i])
	}
	return h
}

// rotationSeed is the string hashed to pick a rotation's start offset.
// Fixed format: userID + ":" + groupKey. Changing this format would
// re-seed every existing rotation, so it never changes.
func rotationSeed(userID string, group GroupKey) string {
	return userID + ":" + string(group)
}
