package preset

// Selection is the ordered set of active presets of one category. Order is
// insertion order, ids never repeat, and a selection is never empty: it is
// either exactly [none] or one-or-more real presets without the sentinel.
type Selection []Preset

// Defaults returns the initial selection for a catalog: just its first entry
// (the sentinel for multi-select categories, the default for single-select).
func Defaults(catalog []Preset) Selection {
	if len(catalog) == 0 {
		return nil
	}
	return Selection{catalog[0]}
}

// Contains reports whether the selection holds the given preset id.
func (s Selection) Contains(id string) bool {
	for _, p := range s {
		if p.ID == id {
			return true
		}
	}
	return false
}

// IDs returns the selected ids in order.
func (s Selection) IDs() []string {
	out := make([]string, 0, len(s))
	for _, p := range s {
		out = append(out, p.ID)
	}
	return out
}

// Prompts returns the prompt fragments of the selected non-sentinel presets.
func (s Selection) Prompts() []string {
	out := make([]string, 0, len(s))
	for _, p := range s {
		if p.IsNone() || p.Prompt == "" {
			continue
		}
		out = append(out, p.Prompt)
	}
	return out
}

// Toggle flips the preset with the given id in a multi-select selection.
//
// Picking the sentinel resets to [none]. Picking the sole selected preset also
// reverts to [none] so the selection can never go empty. Picking an already
// selected preset in a larger selection removes just that preset. Picking an
// unselected preset appends it and drops the sentinel if it was active.
func Toggle(catalog []Preset, current Selection, id string) Selection {
	clicked, ok := Find(catalog, id)
	if !ok {
		return current
	}

	none, hasNone := Find(catalog, NoneID)

	if clicked.IsNone() {
		if hasNone {
			return Selection{none}
		}
		return current
	}

	if current.Contains(id) {
		if len(current) == 1 {
			if hasNone {
				return Selection{none}
			}
			return current
		}
		out := make(Selection, 0, len(current)-1)
		for _, p := range current {
			if p.ID == id {
				continue
			}
			out = append(out, p)
		}
		return out
	}

	out := make(Selection, 0, len(current)+1)
	for _, p := range current {
		if p.IsNone() {
			continue
		}
		out = append(out, p)
	}
	return append(out, clicked)
}

// ToggleSingle implements single-choice semantics: picking a preset replaces
// the current one outright, and re-picking the current non-default preset
// reverts to the catalog's index-0 default.
func ToggleSingle(catalog []Preset, current Preset, id string) Preset {
	clicked, ok := Find(catalog, id)
	if !ok || len(catalog) == 0 {
		return current
	}

	if clicked.ID == current.ID && clicked.ID != catalog[0].ID {
		return catalog[0]
	}
	return clicked
}
