package player

import "testing"

func TestItemListValidateAcceptsParentFirstOrder(t *testing.T) {
	list := ItemList{
		{Serial: 101, Parent: SlotBackpack, TypeID: 1988, Count: 1},
		{Serial: 102, Parent: 101, TypeID: 3031, Count: 50},
		{Serial: 103, Parent: 101, TypeID: 1987, Count: 1},
		{Serial: 104, Parent: 103, TypeID: 3035, Count: 4},
	}

	if err := list.Validate(); err != nil {
		t.Fatalf("expected valid list, got %v", err)
	}
}

func TestItemListValidateRejectsForwardParent(t *testing.T) {
	list := ItemList{
		{Serial: 101, Parent: 200, TypeID: 3031, Count: 1},
		{Serial: 200, Parent: SlotBackpack, TypeID: 1988, Count: 1},
	}

	if err := list.Validate(); err == nil {
		t.Fatal("expected error for child before parent")
	}
}

func TestItemListValidateRejectsDuplicateSerial(t *testing.T) {
	list := ItemList{
		{Serial: 101, Parent: SlotBackpack, TypeID: 1988, Count: 1},
		{Serial: 101, Parent: SlotAmmo, TypeID: 3031, Count: 1},
	}

	if err := list.Validate(); err == nil {
		t.Fatal("expected error for duplicate serial")
	}
}

func TestItemListValidateRejectsZeroSerial(t *testing.T) {
	list := ItemList{{Serial: 0, Parent: SlotHead, TypeID: 1988, Count: 1}}

	if err := list.Validate(); err == nil {
		t.Fatal("expected error for zero serial")
	}
}

func TestItemListEqualComparesAttributes(t *testing.T) {
	a := ItemList{{Serial: 1, Parent: SlotHead, TypeID: 1988, Count: 1, Attributes: []byte{0x01}}}
	b := ItemList{{Serial: 1, Parent: SlotHead, TypeID: 1988, Count: 1, Attributes: []byte{0x02}}}

	if a.Equal(b) {
		t.Fatal("expected lists with different attributes to differ")
	}
	if !a.Equal(ItemList{a[0]}) {
		t.Fatal("expected identical lists to be equal")
	}
}
