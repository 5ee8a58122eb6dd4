package fixture

import (
	"fmt"

	chd "github.com/opencoff/go-chd"
)

// stringIndex is a minimal perfect hash over a fixed set of string ids,
// used by the registries below for ActionDef/ItemDef/PurchaseDef
// ByID lookups (spec.md §6: "the only shared resource the core reads
// is the game's immutable registry" — exactly the "small, known-at-
// construction-time key set" CHD is built for). The chd API itself is
// kept behind this one type so nothing else in the package touches it
// directly.
type stringIndex struct {
	keys []string
	h    *chd.CHD
}

// buildStringIndex freezes a perfect hash over keys. keys must be
// unique; duplicates would make two ids resolve to the same slot.
func buildStringIndex(keys []string) *stringIndex {
	b := chd.NewBuilder()
	for _, k := range keys {
		b.Add([]byte(k))
	}
	h, err := b.Freeze(0)
	if err != nil {
		panic(fmt.Sprintf("fixture: freeze perfect hash over %d keys: %v", len(keys), err))
	}
	return &stringIndex{keys: keys, h: h}
}

// find returns key's position in the original key slice. CHD's
// minimal perfect hash maps any byte string to a slot in range, so a
// key never added to the index can still resolve to one — the
// explicit equality check against the stored key is what actually
// rejects it.
func (s *stringIndex) find(key string) (int, bool) {
	idx := int(s.h.Find([]byte(key)))
	if idx < 0 || idx >= len(s.keys) || s.keys[idx] != key {
		return 0, false
	}
	return idx, true
}
