package engine

// ApplyBlocklist resolves the nearest non-blocked index by forward
// circular search from index.
//
// Pass-through cases return index unchanged: empty blocklist, empty pool,
// or index outside [0, len(items)). The scan visits at most len(items)
// positions; if every item is blocked it fails open and returns the
// original index; serving a blocked item once beats serving nothing.
//
// Pure function of its inputs: no hidden state, no recursion.
func ApplyBlocklist(index int, items []Item, blockedRefs []string) int {
	if len(blockedRefs) == 0 || len(items) == 0 || index < 0 || index >= len(items) {
		return index
	}

	blocked := make(map[string]struct{}, len(blockedRefs))
	for _, ref := range blockedRefs {
		blocked[ref] = struct{}{}
	}

	current := index
	for attempts := 0; attempts < len(items); attempts++ {
		if _, hit := blocked[items[current].Ref]; !hit {
			return current
		}
		current = (current + 1) % len(items)
	}
	return index
}
