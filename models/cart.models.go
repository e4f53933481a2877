package models

// LineItem is one entry in a cart or order: a product selection with its
// chosen options and quantity. Duplicate product ids are kept as independent
// lines, so LineID, not ProductID, is the line's identity.
type LineItem struct {
	LineID    string `bson:"line_id" json:"lineId"`
	ProductID string `bson:"product_id" json:"productId"`
	Name      string `bson:"name" json:"name"`
	Category  string `bson:"category" json:"category"`
	Color     string `bson:"color" json:"color"`
	Size      string `bson:"size,omitempty" json:"size,omitempty"` // absent for earrings
	UnitPrice int64  `bson:"unit_price" json:"unitPrice"`
	Quantity  int64  `bson:"quantity" json:"quantity"`
	ImageURL  string `bson:"image_url" json:"imageUrl"`
}
