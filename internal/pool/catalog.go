package pool

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/Uvecodes/daypool/internal/engine"
)

// Catalog is a compiled set of content pools, one per bracket key. It is
// immutable once loaded and safe for concurrent reads, which is what lets
// it back every request in a process. Implements engine.PoolSource.
type Catalog struct {
	pools map[engine.GroupKey][]engine.Item
}

// LoadDir compiles every .cue file in dir into a Catalog. Files must share
// `package pools`. On schema violations it returns every error found, not
// just the first, so a catalog author can fix a batch at once.
func LoadDir(dir string) (*Catalog, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{fmt.Errorf("catalog directory not found: %s", dir)}
	}
	if err != nil {
		return nil, []error{fmt.Errorf("error accessing catalog directory: %w", err)}
	}
	if !info.IsDir() {
		return nil, []error{fmt.Errorf("not a directory: %s", dir)}
	}

	cueFiles, err := findCUEFiles(dir)
	if err != nil {
		return nil, []error{fmt.Errorf("error scanning catalog directory: %w", err)}
	}
	if len(cueFiles) == 0 {
		return nil, []error{fmt.Errorf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{fmt.Errorf("no CUE instances loaded from %s", dir)}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{fmt.Errorf("loading CUE files: %w", inst.Err)}
	}
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{fmt.Errorf("building CUE value: %w", err)}
	}

	return Compile(value)
}

// Compile builds a Catalog from an already-built CUE value holding a
// top-level `pool` struct. Exposed separately from LoadDir so tests can
// compile inline CUE sources.
func Compile(value cue.Value) (*Catalog, []error) {
	poolsVal := value.LookupPath(cue.ParsePath("pool"))
	if !poolsVal.Exists() {
		return nil, []error{fmt.Errorf("no top-level pool struct found")}
	}

	iter, err := poolsVal.Fields()
	if err != nil {
		return nil, []error{fmt.Errorf("iterating pools: %w", err)}
	}

	var errs []error
	catalog := &Catalog{pools: make(map[engine.GroupKey][]engine.Item)}
	for iter.Next() {
		group := iter.Label()
		items, err := CompilePool(group, iter.Value())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		catalog.pools[engine.GroupKey(group)] = items
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return catalog, nil
}

// LoadPool returns the ordered items for a bracket. An unknown or
// undeclared bracket is an error: the engine maps it to its empty-pool
// taxonomy, a provisioning defect rather than a retryable failure.
func (c *Catalog) LoadPool(group engine.GroupKey) ([]engine.Item, error) {
	items, ok := c.pools[group]
	if !ok {
		return nil, fmt.Errorf("no pool declared for bracket %q", group)
	}
	return items, nil
}

// Groups returns the declared bracket keys in ascending age order.
func (c *Catalog) Groups() []engine.GroupKey {
	var groups []engine.GroupKey
	for _, g := range engine.AllGroups {
		if _, ok := c.pools[g]; ok {
			groups = append(groups, g)
		}
	}
	return groups
}

// Size returns the item count for a bracket, 0 if undeclared.
func (c *Catalog) Size(group engine.GroupKey) int {
	return len(c.pools[group])
}

func findCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".cue") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
