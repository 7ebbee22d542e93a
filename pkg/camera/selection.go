package camera

import "sort"

// SelectionMode says which categories are emphasised.
type SelectionMode int

const (
	// ShowAll draws every category with the same emphasis.
	ShowAll SelectionMode = iota
	// ShowSubset emphasises the selected categories and dims the rest.
	ShowSubset
	// ShowNone dims every category.
	ShowNone
)

func (m SelectionMode) String() string {
	switch m {
	case ShowAll:
		return "all"
	case ShowSubset:
		return "subset"
	case ShowNone:
		return "none"
	default:
		return "unknown"
	}
}

// Selection is the display-set filter. It is a value type: every edit returns
// a new Selection and never touches the receiver, so a copy handed to the
// renderer cannot change underneath it.
type Selection struct {
	mode SelectionMode
	sets map[string]struct{}
}

// All selects every category.
func All() Selection { return Selection{mode: ShowAll} }

// None dims every category.
func None() Selection { return Selection{mode: ShowNone} }

// Subset selects the named categories. An empty list means All.
func Subset(sets ...string) Selection {
	if len(sets) == 0 {
		return All()
	}
	m := make(map[string]struct{}, len(sets))
	for _, s := range sets {
		m[s] = struct{}{}
	}
	return Selection{mode: ShowSubset, sets: m}
}

// Mode returns the selection mode.
func (s Selection) Mode() SelectionMode { return s.mode }

// Contains reports whether set is explicitly selected. It is false for every
// set in ShowAll and ShowNone modes.
func (s Selection) Contains(set string) bool {
	_, ok := s.sets[set]
	return ok
}

// Sets returns the selected category names, sorted.
func (s Selection) Sets() []string {
	out := make([]string, 0, len(s.sets))
	for name := range s.sets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// With returns s with set added.
func (s Selection) With(set string) Selection {
	return Subset(append(s.Sets(), set)...)
}

// Without returns s with set removed. Removing the last selected category
// goes back to All.
func (s Selection) Without(set string) Selection {
	if s.mode != ShowSubset {
		return s
	}
	var keep []string
	for _, name := range s.Sets() {
		if name != set {
			keep = append(keep, name)
		}
	}
	return Subset(keep...)
}

// Toggle adds set if absent and removes it otherwise.
func (s Selection) Toggle(set string) Selection {
	if s.Contains(set) {
		return s.Without(set)
	}
	return s.With(set)
}
