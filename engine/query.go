package engine

import "slices"

// query selects the entities present in every one of its stores
type query struct {
	stores []QueryableStore
}

// entities returns the matching entities in ascending id order
// A query without stores matches nothing
func (q query) entities() []Entity {
	if len(q.stores) == 0 {
		return []Entity{}
	}

	// Walk the smallest store and probe the others
	smallest := slices.MinFunc(q.stores, func(a, b QueryableStore) int {
		return a.Count() - b.Count()
	})
	matched := smallest.All()
	for _, store := range q.stores {
		if store == smallest {
			continue
		}
		matched = slices.DeleteFunc(matched, func(e Entity) bool { return !store.Has(e) })
		if len(matched) == 0 {
			break
		}
	}

	slices.Sort(matched)
	return matched
}
