package domain

type Money struct {
	Currency string
	Amount   int64
}

// LineItem is one product line in a cart. Quantity is at least 1 for as long
// as the line exists.
type LineItem struct {
	ID                string
	Name              string
	UnitPrice         Money
	OriginalUnitPrice *Money
	ImageRef          string
	Quantity          int
}

func (it LineItem) LineTotal() int64 {
	return it.UnitPrice.Amount * int64(it.Quantity)
}

// Clone returns a copy that shares no pointers with it.
func (it LineItem) Clone() LineItem {
	out := it
	if it.OriginalUnitPrice != nil {
		orig := *it.OriginalUnitPrice
		out.OriginalUnitPrice = &orig
	}
	return out
}

type Op string

const (
	OpAdd         Op = "add"
	OpRemove      Op = "remove"
	OpSetQuantity Op = "set_quantity"
	OpClear       Op = "clear"
)
