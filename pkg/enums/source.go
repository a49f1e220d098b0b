package enums

// Source names the marketplace a basket item was added from.
type Source string

const (
	SourceAmazonIN    Source = "amazon_in"
	SourceAmazonUS    Source = "amazon_us"
	SourceWooCommerce Source = "woocommerce"
)
