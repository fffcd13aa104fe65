package reconcile

import (
	"reflect"
	"testing"

	"shopfront/internal/model"
)

func TestDiffLineItems_EmptyToItems(t *testing.T) {
	// Empty cart, items in desired → all adds
	desired := []DesiredItem{
		{ProductID: "prod-1", Quantity: 2},
		{ProductID: "prod-2", Quantity: 1},
	}

	diff := DiffLineItems(nil, desired)

	if len(diff.ToAdd) != 2 {
		t.Errorf("ToAdd = %d, want 2", len(diff.ToAdd))
	}
	if len(diff.ToRemove) != 0 {
		t.Errorf("ToRemove = %d, want 0", len(diff.ToRemove))
	}
	if len(diff.ToUpdate) != 0 {
		t.Errorf("ToUpdate = %d, want 0", len(diff.ToUpdate))
	}
	if diff.ToAdd[0].ProductID != "prod-1" || diff.ToAdd[1].ProductID != "prod-2" {
		t.Errorf("ToAdd order = %v, want desired order", diff.ToAdd)
	}
}

func TestDiffLineItems_ItemsToEmpty(t *testing.T) {
	// Items in cart, empty desired → all removes
	current := []CurrentItem{
		{ProductID: "prod-1", Quantity: 2},
		{ProductID: "prod-2", Quantity: 1},
	}

	diff := DiffLineItems(current, []DesiredItem{})

	if len(diff.ToAdd) != 0 {
		t.Errorf("ToAdd = %d, want 0", len(diff.ToAdd))
	}
	if len(diff.ToRemove) != 2 {
		t.Errorf("ToRemove = %d, want 2", len(diff.ToRemove))
	}
	if diff.Len() != 2 {
		t.Errorf("Len() = %d, want 2", diff.Len())
	}
}

func TestDiffLineItems_QuantityUpdate(t *testing.T) {
	current := []CurrentItem{{ProductID: "prod-1", Quantity: 2}}
	desired := []DesiredItem{{ProductID: "prod-1", Quantity: 5}}

	diff := DiffLineItems(current, desired)

	if len(diff.ToAdd) != 0 || len(diff.ToRemove) != 0 {
		t.Errorf("unexpected add/remove: %+v", diff)
	}
	if len(diff.ToUpdate) != 1 {
		t.Fatalf("ToUpdate = %d, want 1", len(diff.ToUpdate))
	}
	if diff.ToUpdate[0].OldQuantity != 2 {
		t.Errorf("OldQuantity = %d, want 2", diff.ToUpdate[0].OldQuantity)
	}
	if diff.ToUpdate[0].NewQuantity != 5 {
		t.Errorf("NewQuantity = %d, want 5", diff.ToUpdate[0].NewQuantity)
	}
}

func TestDiffLineItems_NoChange(t *testing.T) {
	current := []CurrentItem{{ProductID: "prod-1", Quantity: 2}}
	desired := []DesiredItem{{ProductID: "prod-1", Quantity: 2}}

	if diff := DiffLineItems(current, desired); !diff.IsEmpty() {
		t.Errorf("expected empty diff for identical lines, got %+v", diff)
	}
}

func TestDiffLineItems_MixedOperations(t *testing.T) {
	current := []CurrentItem{
		{ProductID: "prod-1", Quantity: 2}, // will be removed
		{ProductID: "prod-2", Quantity: 1}, // will be updated
		{ProductID: "prod-3", Quantity: 3}, // unchanged
	}
	desired := []DesiredItem{
		{ProductID: "prod-2", Quantity: 5},
		{ProductID: "prod-3", Quantity: 3},
		{ProductID: "prod-4", Quantity: 1},
	}

	diff := DiffLineItems(current, desired)

	want := &LineItemDiff{
		ToAdd:    []ItemToAdd{{ProductID: "prod-4", Quantity: 1}},
		ToRemove: []ItemToRemove{{ProductID: "prod-1"}},
		ToUpdate: []ItemToUpdate{{ProductID: "prod-2", OldQuantity: 1, NewQuantity: 5}},
	}
	if !reflect.DeepEqual(diff, want) {
		t.Errorf("DiffLineItems() = %+v, want %+v", diff, want)
	}
}

func TestDiffLineItems_ZeroQuantityRemoves(t *testing.T) {
	current := []CurrentItem{{ProductID: "prod-1", Quantity: 2}}
	desired := []DesiredItem{
		{ProductID: "prod-1", Quantity: 0},
		{ProductID: "prod-2", Quantity: -1},
	}

	diff := DiffLineItems(current, desired)

	if len(diff.ToRemove) != 1 || diff.ToRemove[0].ProductID != "prod-1" {
		t.Errorf("ToRemove = %v, want [prod-1]", diff.ToRemove)
	}
	if len(diff.ToAdd) != 0 {
		t.Errorf("ToAdd = %v, want none for non-positive quantities", diff.ToAdd)
	}
}

func TestDiffLineItems_DuplicateLastWins(t *testing.T) {
	desired := []DesiredItem{
		{ProductID: "prod-1", Quantity: 1},
		{ProductID: "prod-1", Quantity: 4},
	}

	diff := DiffLineItems(nil, desired)

	if len(diff.ToAdd) != 1 {
		t.Fatalf("ToAdd = %d, want 1", len(diff.ToAdd))
	}
	if diff.ToAdd[0].Quantity != 4 {
		t.Errorf("Quantity = %d, want 4", diff.ToAdd[0].Quantity)
	}
}

func TestCurrentItems(t *testing.T) {
	if got := CurrentItems(nil); got != nil {
		t.Errorf("CurrentItems(nil) = %v, want nil", got)
	}

	c := &model.Cart{Products: []model.CartProduct{
		{Count: 2, Product: model.RefID("pA")},
		{Count: 1, Product: model.RefProduct(model.Product{ID: "pB"})},
	}}
	want := []CurrentItem{{ProductID: "pA", Quantity: 2}, {ProductID: "pB", Quantity: 1}}
	if got := CurrentItems(c); !reflect.DeepEqual(got, want) {
		t.Errorf("CurrentItems() = %v, want %v", got, want)
	}
}

func TestMissingIDs(t *testing.T) {
	tests := []struct {
		name string
		from []string
		into []string
		want []string
	}{
		{"empty guest list", nil, []string{"a"}, nil},
		{"all new", []string{"a", "b"}, nil, []string{"a", "b"}},
		{"partial overlap", []string{"a", "b", "c"}, []string{"b"}, []string{"a", "c"}},
		{"all present", []string{"a"}, []string{"a"}, nil},
		{"duplicates and blanks", []string{"a", "", "a", "c"}, nil, []string{"a", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MissingIDs(tt.from, tt.into)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MissingIDs(%v, %v) = %v, want %v", tt.from, tt.into, got, tt.want)
			}
		})
	}
}

func TestLineItemDiff_IsEmpty(t *testing.T) {
	empty := &LineItemDiff{}
	if !empty.IsEmpty() {
		t.Error("Expected empty diff to report IsEmpty=true")
	}

	withAdd := &LineItemDiff{ToAdd: []ItemToAdd{{ProductID: "p1"}}}
	if withAdd.IsEmpty() {
		t.Error("Expected diff with adds to report IsEmpty=false")
	}

	withRemove := &LineItemDiff{ToRemove: []ItemToRemove{{ProductID: "p1"}}}
	if withRemove.IsEmpty() {
		t.Error("Expected diff with removes to report IsEmpty=false")
	}

	withUpdate := &LineItemDiff{ToUpdate: []ItemToUpdate{{ProductID: "p1"}}}
	if withUpdate.IsEmpty() {
		t.Error("Expected diff with updates to report IsEmpty=false")
	}
}
