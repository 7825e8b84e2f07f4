package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func poolOfRefs(refs ...string) []Item {
	items := make([]Item, len(refs))
	for i, r := range refs {
		items[i] = Item{Ref: r}
	}
	return items
}

func TestApplyBlocklist_PassThrough(t *testing.T) {
	items := poolOfRefs("r0", "r1", "r2")

	assert.Equal(t, 1, ApplyBlocklist(1, items, nil))
	assert.Equal(t, 1, ApplyBlocklist(1, items, []string{}))
	assert.Equal(t, 5, ApplyBlocklist(5, nil, []string{"r0"}))
	// Out-of-range index is returned unchanged, not clamped.
	assert.Equal(t, 9, ApplyBlocklist(9, items, []string{"r0"}))
	assert.Equal(t, -1, ApplyBlocklist(-1, items, []string{"r0"}))
}

func TestApplyBlocklist_SkipsForward(t *testing.T) {
	items := poolOfRefs("r0", "r1", "r2", "r3")

	assert.Equal(t, 2, ApplyBlocklist(1, items, []string{"r1"}))
	assert.Equal(t, 3, ApplyBlocklist(1, items, []string{"r1", "r2"}))
	assert.Equal(t, 1, ApplyBlocklist(1, items, []string{"r0", "r3"}))
}

func TestApplyBlocklist_CircularWrap(t *testing.T) {
	// Blocking the last item wraps the scan to index 0.
	items := poolOfRefs("r0", "r1", "r2", "r3", "r4", "r5", "r6")
	assert.Equal(t, 0, ApplyBlocklist(6, items, []string{"r6"}))
	// Wrap continues past a blocked index 0.
	assert.Equal(t, 1, ApplyBlocklist(6, items, []string{"r6", "r0"}))
}

func TestApplyBlocklist_AllBlockedFailsOpen(t *testing.T) {
	items := poolOfRefs("r0", "r1", "r2")
	// Everything blocked: return the original index, not 0 and not an error.
	assert.Equal(t, 2, ApplyBlocklist(2, items, []string{"r0", "r1", "r2"}))
}

func TestApplyBlocklist_DuplicatesHarmless(t *testing.T) {
	items := poolOfRefs("r0", "r1", "r2")
	assert.Equal(t, 1, ApplyBlocklist(0, items, []string{"r0", "r0", "r0"}))
}
