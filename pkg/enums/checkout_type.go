package enums

// CheckoutType describes which subsets a checkout call produced.
type CheckoutType string

const (
	CheckoutTypeQuickBuy  CheckoutType = "quick_buy"
	CheckoutTypeScheduled CheckoutType = "scheduled"
	CheckoutTypeMixed     CheckoutType = "mixed"
)
