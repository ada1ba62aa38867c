package model

// ItemFunction is one function of the item under analysis, kept in
// extraction order.
type ItemFunction struct {
	Number      int
	Name        string
	Description string
	// Manual marks functions added by the engineer rather than extracted
	// from the item definition.
	Manual bool
}
