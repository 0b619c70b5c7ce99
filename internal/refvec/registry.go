package refvec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/pinvec"
)

// Factory builds a fresh container of ints for one verification scenario.
type Factory = func() pinvec.PinnedVec[int]

// constructors maps a container name to a factory builder taking the
// requested capacity.
var constructors = map[string]func(capacity int) Factory{
	"fixed": func(c int) Factory {
		return func() pinvec.PinnedVec[int] { return NewFixed[int](c) }
	},
	"paged": func(int) Factory {
		return func() pinvec.PinnedVec[int] { return NewPaged[int]() }
	},
	"naive": func(int) Factory {
		return func() pinvec.PinnedVec[int] { return NewNaive[int](0) }
	},
}

// Names returns the known container names, including the faulty-* family.
func Names() []string {
	names := make([]string, 0, len(constructors)+len(sabotageNames))
	for name := range constructors {
		names = append(names, name)
	}
	for _, sn := range sabotageNames {
		names = append(names, "faulty-"+sn.name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns a factory for the named container. capacity bounds fixed
// and faulty containers and is ignored by growable ones.
//
// Faulty containers are named "faulty-" followed by a sabotage list, e.g.
// "faulty-shrink" or "faulty-insert|remove".
func Lookup(name string, capacity int) (Factory, error) {
	if build, ok := constructors[name]; ok {
		return build(capacity), nil
	}

	if rest, ok := strings.CutPrefix(name, "faulty-"); ok {
		sabotage, err := ParseSabotage(rest)
		if err != nil {
			return nil, fmt.Errorf("container %q: %w", name, err)
		}
		return func() pinvec.PinnedVec[int] { return NewFaulty[int](capacity, sabotage) }, nil
	}

	return nil, fmt.Errorf("unknown container %q: must be one of %v", name, Names())
}
