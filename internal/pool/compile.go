package pool

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"
	"golang.org/x/text/unicode/norm"

	"github.com/Uvecodes/daypool/internal/engine"
)

// CompileError reports a schema violation in a pool definition.
type CompileError struct {
	Group   string // bracket key being compiled, "" if the key itself is bad
	Field   string // offending field
	Message string
	Pos     token.Pos
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Group != "" {
		return fmt.Sprintf("pool %q: %s: %s", e.Group, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NormalizeRef returns the canonical byte form of a content ref. Blocklist
// matching compares refs byte-for-byte, so every ref entering the system
// (catalog compile, block/unblock input) goes through this.
func NormalizeRef(ref string) string {
	return norm.NFC.String(ref)
}

// CompilePool parses one bracket's pool from a CUE value. The value is the
// struct under pool."<group>", e.g.:
//
//	v := catalogValue.LookupPath(cue.ParsePath(`pool."7-10"`))
//	items, err := CompilePool("7-10", v)
//
// Item declaration order is preserved: it is the rotation order.
func CompilePool(group string, v cue.Value) ([]engine.Item, error) {
	if err := v.Err(); err != nil {
		return nil, &CompileError{Group: group, Field: "pool", Message: err.Error(), Pos: v.Pos()}
	}
	if !engine.ValidGroupKey(group) {
		return nil, &CompileError{
			Field:   "pool",
			Message: fmt.Sprintf("unknown bracket key %q (want one of %v)", group, engine.AllGroups),
			Pos:     v.Pos(),
		}
	}

	itemsVal := v.LookupPath(cue.ParsePath("items"))
	if !itemsVal.Exists() {
		return nil, &CompileError{Group: group, Field: "items", Message: "items is required", Pos: v.Pos()}
	}

	iter, err := itemsVal.List()
	if err != nil {
		return nil, &CompileError{Group: group, Field: "items", Message: "items must be a list", Pos: itemsVal.Pos()}
	}

	var items []engine.Item
	seen := make(map[string]bool)
	for i := 0; iter.Next(); i++ {
		item, err := compileItem(group, i, iter.Value())
		if err != nil {
			return nil, err
		}
		if seen[item.Ref] {
			return nil, &CompileError{
				Group:   group,
				Field:   fmt.Sprintf("items[%d].ref", i),
				Message: fmt.Sprintf("duplicate ref %q", item.Ref),
				Pos:     iter.Value().Pos(),
			}
		}
		seen[item.Ref] = true
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, &CompileError{Group: group, Field: "items", Message: "at least one item is required", Pos: itemsVal.Pos()}
	}
	return items, nil
}

func compileItem(group string, index int, v cue.Value) (engine.Item, error) {
	field := func(name string) string { return fmt.Sprintf("items[%d].%s", index, name) }

	refVal := v.LookupPath(cue.ParsePath("ref"))
	if !refVal.Exists() {
		return engine.Item{}, &CompileError{Group: group, Field: field("ref"), Message: "ref is required", Pos: v.Pos()}
	}
	ref, err := refVal.String()
	if err != nil {
		return engine.Item{}, &CompileError{Group: group, Field: field("ref"), Message: "ref must be a string", Pos: refVal.Pos()}
	}
	ref = NormalizeRef(ref)
	if ref == "" {
		return engine.Item{}, &CompileError{Group: group, Field: field("ref"), Message: "ref must not be empty", Pos: refVal.Pos()}
	}

	item := engine.Item{Ref: ref}

	// Display fields are optional and opaque to the engine.
	for name, dst := range map[string]*string{
		"title":   &item.Title,
		"kind":    &item.Kind,
		"summary": &item.Summary,
	} {
		fv := v.LookupPath(cue.ParsePath(name))
		if !fv.Exists() {
			continue
		}
		s, err := fv.String()
		if err != nil {
			return engine.Item{}, &CompileError{Group: group, Field: field(name), Message: name + " must be a string", Pos: fv.Pos()}
		}
		*dst = s
	}
	return item, nil
}
