package player

import "fmt"

// Equipment slot ids. Item parents at or below SlotLast denote equipment
// slots; larger parents reference the serial of an earlier container item.
const (
	SlotHead = iota + 1
	SlotNecklace
	SlotBackpack
	SlotArmor
	SlotRight
	SlotLeft
	SlotLegs
	SlotFeet
	SlotRing
	SlotAmmo
	SlotLast = SlotAmmo
)

// Item is one persisted item node.
//
// Serial ids are unique within one item tree (inventory, a depot, the inbox,
// rewards, or the store inbox) and only need to be stable for the duration of
// one save/load cycle.
type Item struct {
	// Serial is the tree-local item id.
	Serial uint32
	// Parent is an equipment slot when <= SlotLast, otherwise the Serial of
	// the containing item, which must appear earlier in the list.
	Parent uint32
	// TypeID identifies the item kind in the item catalog.
	TypeID uint16
	// Count is the stack size, or 1 for non-stackables.
	Count uint16
	// Attributes is the serialized per-item attribute blob (charges, text,
	// custom attributes). Persistence treats it as opaque.
	Attributes []byte
}

// ItemList is a flat item tree in parent-first order.
type ItemList []Item

// Validate checks the parent-first ordering invariant: every item must hang
// off an equipment slot or off an item that appeared earlier in the list.
func (l ItemList) Validate() error {
	seen := make(map[uint32]struct{}, len(l))
	for i, it := range l {
		if it.Serial == 0 {
			return fmt.Errorf("item %d: zero serial", i)
		}
		if _, dup := seen[it.Serial]; dup {
			return fmt.Errorf("item %d: duplicate serial %d", i, it.Serial)
		}
		if it.Parent > SlotLast {
			if _, ok := seen[it.Parent]; !ok {
				return fmt.Errorf("item %d: parent %d not seen before serial %d", i, it.Parent, it.Serial)
			}
		}
		seen[it.Serial] = struct{}{}
	}
	return nil
}

// Equal reports deep equality with another list, attribute blobs included.
func (l ItemList) Equal(other ItemList) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		a, b := l[i], other[i]
		if a.Serial != b.Serial || a.Parent != b.Parent || a.TypeID != b.TypeID || a.Count != b.Count {
			return false
		}
		if string(a.Attributes) != string(b.Attributes) {
			return false
		}
	}
	return true
}
