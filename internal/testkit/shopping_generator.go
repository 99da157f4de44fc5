package testkit

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"strconv"

	"shoplens/domain/dataset"
)

// ShoppingGeneratorConfig configures the shopping data generator
type ShoppingGeneratorConfig struct {
	Rows     int     `json:"rows"`
	Seed     int64   `json:"seed"`
	NullRate float64 `json:"null_rate"` // share of optional cells left blank
}

// DefaultShoppingConfig returns sensible defaults for shopping data generation
func DefaultShoppingConfig() ShoppingGeneratorConfig {
	return ShoppingGeneratorConfig{
		Rows:     3900,
		Seed:     42,
		NullRate: 0,
	}
}

// ShoppingDataGenerator generates rows shaped like the retail shopping
// behaviour table. Built-in patterns:
//   - Discount Applied always equals Promo Code Used
//   - subscribers always get a discount
//   - Clothing is the most common category
//   - purchase amount grows with the number of previous purchases
type ShoppingDataGenerator struct {
	config ShoppingGeneratorConfig
	rng    *rand.Rand
}

// NewShoppingDataGenerator creates a new shopping data generator
func NewShoppingDataGenerator(config ShoppingGeneratorConfig) *ShoppingDataGenerator {
	return &ShoppingDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

var (
	genders   = []string{"Male", "Female"}
	locations = []string{
		"Alabama", "Alaska", "Arizona", "California", "Colorado", "Florida", "Georgia",
		"Illinois", "Kentucky", "Maine", "Montana", "Nevada", "New York", "Texas", "Vermont",
	}
	sizes       = []string{"S", "M", "L", "XL"}
	colors      = []string{"Gray", "Maroon", "Turquoise", "White", "Charcoal", "Silver", "Pink", "Purple", "Olive", "Gold"}
	seasons     = []string{"Winter", "Spring", "Summer", "Fall"}
	shipping    = []string{"Express", "Free Shipping", "Next Day Air", "Standard", "2-Day Shipping", "Store Pickup"}
	payments    = []string{"Venmo", "Cash", "Credit Card", "PayPal", "Bank Transfer", "Debit Card"}
	frequencies = []string{"Fortnightly", "Weekly", "Annually", "Quarterly", "Bi-Weekly", "Monthly", "Every 3 Months"}

	categories      = []string{"Clothing", "Footwear", "Outerwear", "Accessories"}
	categoryWeights = []float64{0.45, 0.15, 0.08, 0.32}
	itemsByCategory = map[string][]string{
		"Clothing":    {"Blouse", "Sweater", "Jeans", "Shirt", "Shorts", "Dress", "Pants", "Skirt", "Hoodie", "T-shirt", "Socks"},
		"Footwear":    {"Sandals", "Sneakers", "Shoes", "Boots"},
		"Outerwear":   {"Coat", "Jacket"},
		"Accessories": {"Handbag", "Jewelry", "Scarf", "Hat", "Sunglasses", "Belt", "Backpack", "Gloves"},
	}
)

// GenerateRows returns ShoppingHeaders-ordered rows of raw cell text
func (g *ShoppingDataGenerator) GenerateRows() [][]string {
	rows := make([][]string, 0, g.config.Rows)
	for i := 0; i < g.config.Rows; i++ {
		rows = append(rows, g.generateRow(i+1))
	}
	return rows
}

func (g *ShoppingDataGenerator) generateRow(customerID int) []string {
	category := g.weighted(categories, categoryWeights)
	items := itemsByCategory[category]

	subscribed := g.rng.Float64() < 0.27
	discount := subscribed || g.rng.Float64() < 0.2
	previous := 1 + g.rng.Intn(50)

	// 20..100 USD with a mild lift for repeat customers
	amount := 20 + g.rng.Float64()*70 + float64(previous)/5
	amount = math.Min(100, math.Round(amount))
	rating := math.Round((2.5+g.rng.Float64()*2.5)*10) / 10

	row := []string{
		strconv.Itoa(customerID),
		strconv.Itoa(18 + g.rng.Intn(53)),
		g.pick(genders),
		g.pick(items),
		category,
		strconv.FormatFloat(amount, 'f', -1, 64),
		g.pick(locations),
		g.pick(sizes),
		g.pick(colors),
		g.pick(seasons),
		strconv.FormatFloat(rating, 'f', -1, 64),
		yesNo(subscribed),
		g.pick(shipping),
		yesNo(discount),
		yesNo(discount),
		strconv.Itoa(previous),
		g.pick(payments),
		g.pick(frequencies),
	}

	// identifiers, the discount pair and subscription are never blanked
	if g.config.NullRate > 0 {
		for _, col := range []int{1, 5, 7, 8, 10, 12, 16} {
			if g.rng.Float64() < g.config.NullRate {
				row[col] = ""
			}
		}
	}
	return row
}

// WriteCSV writes a header row followed by generated rows
func (g *ShoppingDataGenerator) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(dataset.ShoppingHeaders()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range g.GenerateRows() {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Helper methods for random value generation

func (g *ShoppingDataGenerator) pick(values []string) string {
	return values[g.rng.Intn(len(values))]
}

func (g *ShoppingDataGenerator) weighted(values []string, weights []float64) string {
	r := g.rng.Float64()
	cumulative := 0.0
	for i, weight := range weights {
		cumulative += weight
		if r <= cumulative {
			return values[i]
		}
	}
	return values[0]
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
