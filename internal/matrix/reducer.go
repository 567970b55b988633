package matrix

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/procure-rfq/internal/model"
)

var (
	ErrNotEditable = errors.New("rfq is no longer editable")
	ErrQuoteLimit  = fmt.Errorf("a comparison holds at most %d quotations", MaxQuotes)
	ErrNoSuchQuote = errors.New("no quotation at that position")
	ErrNoSuchItem  = errors.New("no item with that id")
)

// State is the client-side editing session: the matrix plus the status that
// gates mutation.
type State struct {
	Status model.RFQStatus
	Matrix Matrix
}

type Action interface{ isAction() }

type AddItem struct {
	ID   uuid.UUID // zero value lets the reducer assign one
	Item model.CommodityItem
}

type RemoveItem struct{ ID uuid.UUID }

type AddQuote struct {
	SupplierID   uuid.UUID
	SupplierName string
}

type RemoveQuote struct{ Index int }

// SetSupplier re-points a quote at another supplier. Entered rates are keyed
// by item id and survive the swap untouched.
type SetSupplier struct {
	Index        int
	SupplierID   uuid.UUID
	SupplierName string
}

type SetRate struct {
	Index  int
	ItemID uuid.UUID
	Rate   decimal.Decimal
}

type SetFooter struct {
	Index  int
	Footer model.QuoteFooter
}

type SelectRepresentative struct{ Index int }

func (AddItem) isAction()              {}
func (RemoveItem) isAction()           {}
func (AddQuote) isAction()             {}
func (RemoveQuote) isAction()          {}
func (SetSupplier) isAction()          {}
func (SetRate) isAction()              {}
func (SetFooter) isAction()            {}
func (SelectRepresentative) isAction() {}

// Apply runs one editing action against the state and returns the successor
// state. The input state is never mutated; validation happens against the
// copy before it is returned, so a failed action leaves no half-applied edit.
func Apply(state State, action Action) (State, error) {
	if !state.Status.Editable() {
		return state, ErrNotEditable
	}

	next := state
	next.Matrix = cloneMatrix(state.Matrix)

	switch a := action.(type) {
	case AddItem:
		if a.Item == nil {
			return state, errors.New("item is required")
		}
		if a.Item.CommodityType() != next.Matrix.CommodityType {
			return state, fmt.Errorf("item commodity %q does not match rfq commodity %q",
				a.Item.CommodityType(), next.Matrix.CommodityType)
		}
		id := a.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		next.Matrix.Lines = append(next.Matrix.Lines, Line{ID: id, Item: a.Item})

	case RemoveItem:
		pos := -1
		for i, line := range next.Matrix.Lines {
			if line.ID == a.ID {
				pos = i
				break
			}
		}
		if pos < 0 {
			return state, ErrNoSuchItem
		}
		next.Matrix.Lines = append(next.Matrix.Lines[:pos], next.Matrix.Lines[pos+1:]...)
		for i := range next.Matrix.Quotes {
			delete(next.Matrix.Quotes[i].Rates, a.ID)
		}

	case AddQuote:
		if len(next.Matrix.Quotes) >= MaxQuotes {
			return state, ErrQuoteLimit
		}
		next.Matrix.Quotes = append(next.Matrix.Quotes, model.Quote{
			SupplierID:   a.SupplierID,
			SupplierName: a.SupplierName,
			Rates:        map[uuid.UUID]decimal.Decimal{},
		})

	case RemoveQuote:
		if a.Index < 0 || a.Index >= len(next.Matrix.Quotes) {
			return state, ErrNoSuchQuote
		}
		next.Matrix.Quotes = append(next.Matrix.Quotes[:a.Index], next.Matrix.Quotes[a.Index+1:]...)
		switch {
		case next.Matrix.Representative == a.Index:
			next.Matrix.Representative = -1
		case next.Matrix.Representative > a.Index:
			next.Matrix.Representative--
		}

	case SetSupplier:
		if a.Index < 0 || a.Index >= len(next.Matrix.Quotes) {
			return state, ErrNoSuchQuote
		}
		next.Matrix.Quotes[a.Index].SupplierID = a.SupplierID
		next.Matrix.Quotes[a.Index].SupplierName = a.SupplierName

	case SetRate:
		if a.Index < 0 || a.Index >= len(next.Matrix.Quotes) {
			return state, ErrNoSuchQuote
		}
		if !hasLine(next.Matrix.Lines, a.ItemID) {
			return state, ErrNoSuchItem
		}
		next.Matrix.Quotes[a.Index].Rates[a.ItemID] = a.Rate

	case SetFooter:
		if a.Index < 0 || a.Index >= len(next.Matrix.Quotes) {
			return state, ErrNoSuchQuote
		}
		next.Matrix.Quotes[a.Index].Footer = a.Footer

	case SelectRepresentative:
		if a.Index < -1 || a.Index >= len(next.Matrix.Quotes) {
			return state, ErrNoSuchQuote
		}
		next.Matrix.Representative = a.Index

	default:
		return state, fmt.Errorf("unknown action %T", action)
	}

	return next, nil
}

func hasLine(lines []Line, id uuid.UUID) bool {
	for _, line := range lines {
		if line.ID == id {
			return true
		}
	}
	return false
}

func cloneMatrix(m Matrix) Matrix {
	out := m
	out.Lines = append([]Line(nil), m.Lines...)
	out.Quotes = make([]model.Quote, len(m.Quotes))
	for i, q := range m.Quotes {
		clone := q
		clone.Rates = make(map[uuid.UUID]decimal.Decimal, len(q.Rates))
		for k, v := range q.Rates {
			clone.Rates[k] = v
		}
		out.Quotes[i] = clone
	}
	return out
}
