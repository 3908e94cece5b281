package model

// Product is a catalog row. Stock only ever moves down through checkout.
type Product struct {
	ID      int64   `db:"id" json:"id"`
	Name    string  `db:"name" json:"name"`
	Price   Money   `db:"price_cents" json:"price"`
	Stock   int     `db:"stock" json:"stock"`
	Barcode *string `db:"barcode" json:"barcode"` // Nullable, unique when set
}
