package matrix

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/nurpe/procure-rfq/internal/model"
)

func draftState(commodity model.CommodityType) State {
	return State{Status: model.StatusDraft, Matrix: New(commodity)}
}

func serviceItem() model.ServiceItem {
	return model.ServiceItem{
		ProjectName:      "Maintenance",
		Description:      "monthly service",
		UnitOfMeasure:    "hr",
		RequiredQuantity: dec(10),
		Rate:             dec(25),
	}
}

func TestApply_AddAndRemoveItem(t *testing.T) {
	state := draftState(model.CommodityService)

	state, err := Apply(state, AddItem{Item: serviceItem()})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if len(state.Matrix.Lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(state.Matrix.Lines))
	}
	id := state.Matrix.Lines[0].ID
	if id == uuid.Nil {
		t.Fatal("reducer should assign an item id")
	}

	state, err = Apply(state, RemoveItem{ID: id})
	if err != nil {
		t.Fatalf("remove item: %v", err)
	}
	if len(state.Matrix.Lines) != 0 {
		t.Errorf("lines = %d, want 0", len(state.Matrix.Lines))
	}
}

func TestApply_CommodityMismatch(t *testing.T) {
	state := draftState(model.CommodityTransport)
	_, err := Apply(state, AddItem{Item: serviceItem()})
	if err == nil {
		t.Fatal("want error adding a service item to a transport rfq")
	}
}

func TestApply_QuoteLimit(t *testing.T) {
	state := draftState(model.CommodityService)
	var err error
	for i := 0; i < MaxQuotes; i++ {
		state, err = Apply(state, AddQuote{SupplierID: uuid.New()})
		if err != nil {
			t.Fatalf("add quote %d: %v", i, err)
		}
	}

	_, err = Apply(state, AddQuote{SupplierID: uuid.New()})
	if !errors.Is(err, ErrQuoteLimit) {
		t.Errorf("err = %v, want ErrQuoteLimit", err)
	}
}

func TestApply_SupplierSwapKeepsRates(t *testing.T) {
	state := draftState(model.CommodityService)
	state, _ = Apply(state, AddItem{Item: serviceItem()})
	itemID := state.Matrix.Lines[0].ID
	state, _ = Apply(state, AddQuote{SupplierID: uuid.New(), SupplierName: "First Supplier"})
	state, err := Apply(state, SetRate{Index: 0, ItemID: itemID, Rate: dec(30)})
	if err != nil {
		t.Fatalf("set rate: %v", err)
	}

	replacement := uuid.New()
	state, err = Apply(state, SetSupplier{Index: 0, SupplierID: replacement, SupplierName: "Second Supplier"})
	if err != nil {
		t.Fatalf("swap supplier: %v", err)
	}

	quote := state.Matrix.Quotes[0]
	if quote.SupplierID != replacement {
		t.Errorf("supplier = %s, want %s", quote.SupplierID, replacement)
	}
	rate, ok := quote.Rate(itemID)
	if !ok || !rate.Equal(dec(30)) {
		t.Errorf("rate after swap = %s (ok=%v), want 30 intact", rate, ok)
	}
}

func TestApply_RemoveItemDropsItsRates(t *testing.T) {
	state := draftState(model.CommodityService)
	state, _ = Apply(state, AddItem{Item: serviceItem()})
	itemID := state.Matrix.Lines[0].ID
	state, _ = Apply(state, AddQuote{SupplierID: uuid.New()})
	state, _ = Apply(state, SetRate{Index: 0, ItemID: itemID, Rate: dec(30)})

	state, err := Apply(state, RemoveItem{ID: itemID})
	if err != nil {
		t.Fatalf("remove item: %v", err)
	}
	if _, ok := state.Matrix.Quotes[0].Rate(itemID); ok {
		t.Error("rate for removed item should be dropped")
	}
}

func TestApply_RemoveQuoteAdjustsRepresentative(t *testing.T) {
	state := draftState(model.CommodityService)
	state, _ = Apply(state, AddQuote{SupplierID: uuid.New()})
	state, _ = Apply(state, AddQuote{SupplierID: uuid.New()})
	state, _ = Apply(state, SelectRepresentative{Index: 1})

	state, err := Apply(state, RemoveQuote{Index: 0})
	if err != nil {
		t.Fatalf("remove quote: %v", err)
	}
	if state.Matrix.Representative != 0 {
		t.Errorf("representative = %d, want shifted to 0", state.Matrix.Representative)
	}

	state, _ = Apply(state, RemoveQuote{Index: 0})
	if state.Matrix.Representative != -1 {
		t.Errorf("representative = %d, want -1 after its quote is removed", state.Matrix.Representative)
	}
}

func TestApply_TerminalStateRejectsEdits(t *testing.T) {
	state := State{Status: model.StatusApproved, Matrix: New(model.CommodityService)}
	_, err := Apply(state, AddItem{Item: serviceItem()})
	if !errors.Is(err, ErrNotEditable) {
		t.Errorf("err = %v, want ErrNotEditable", err)
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	state := draftState(model.CommodityService)
	state, _ = Apply(state, AddItem{Item: serviceItem()})
	state, _ = Apply(state, AddQuote{SupplierID: uuid.New()})
	itemID := state.Matrix.Lines[0].ID

	before := state
	after, err := Apply(state, SetRate{Index: 0, ItemID: itemID, Rate: dec(99)})
	if err != nil {
		t.Fatalf("set rate: %v", err)
	}

	if _, ok := before.Matrix.Quotes[0].Rate(itemID); ok {
		t.Error("input state mutated: rate visible before the action was applied")
	}
	if rate, ok := after.Matrix.Quotes[0].Rate(itemID); !ok || !rate.Equal(dec(99)) {
		t.Errorf("successor state rate = %s (ok=%v), want 99", rate, ok)
	}
}
