package dataset

// Column names of the retail shopping behaviour table
const (
	ColCustomerID   = "Customer ID"
	ColAge          = "Age"
	ColGender       = "Gender"
	ColItem         = "Item Purchased"
	ColCategory     = "Category"
	ColAmount       = "Purchase Amount (USD)"
	ColLocation     = "Location"
	ColSize         = "Size"
	ColColor        = "Color"
	ColSeason       = "Season"
	ColRating       = "Review Rating"
	ColSubscription = "Subscription Status"
	ColShipping     = "Shipping Type"
	ColDiscount     = "Discount Applied"
	ColPromo        = "Promo Code Used"
	ColPrevious     = "Previous Purchases"
	ColPayment      = "Payment Method"
	ColFrequency    = "Frequency of Purchases"
)

// ShoppingSchema returns the column layout of the shopping behaviour table.
// Customer ID is numeric-looking but is an identifier, so it is categorical.
func ShoppingSchema() []ColumnSpec {
	return []ColumnSpec{
		{Name: ColCustomerID, Kind: KindCategorical},
		{Name: ColAge, Kind: KindNumeric},
		{Name: ColGender, Kind: KindCategorical},
		{Name: ColItem, Kind: KindCategorical},
		{Name: ColCategory, Kind: KindCategorical},
		{Name: ColAmount, Kind: KindNumeric},
		{Name: ColLocation, Kind: KindCategorical},
		{Name: ColSize, Kind: KindCategorical},
		{Name: ColColor, Kind: KindCategorical},
		{Name: ColSeason, Kind: KindCategorical},
		{Name: ColRating, Kind: KindNumeric},
		{Name: ColSubscription, Kind: KindCategorical},
		{Name: ColShipping, Kind: KindCategorical},
		{Name: ColDiscount, Kind: KindCategorical},
		{Name: ColPromo, Kind: KindCategorical},
		{Name: ColPrevious, Kind: KindNumeric},
		{Name: ColPayment, Kind: KindCategorical},
		{Name: ColFrequency, Kind: KindCategorical},
	}
}

// ShoppingHeaders returns the column names of ShoppingSchema in order
func ShoppingHeaders() []string {
	schema := ShoppingSchema()
	headers := make([]string, len(schema))
	for i, spec := range schema {
		headers[i] = spec.Name
	}
	return headers
}
