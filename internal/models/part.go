package models

import "time"

// Part is one MRO stock item.
type Part struct {
	ID           string    `db:"id" json:"id"`
	PartNumber   string    `db:"part_number" json:"part_number"`
	Description  string    `db:"description" json:"description"`
	Location     *string   `db:"location" json:"location,omitempty"`
	QtyOnHand    int       `db:"qty_on_hand" json:"qty_on_hand"`
	ReorderPoint int       `db:"reorder_point" json:"reorder_point"`
	UnitCost     float64   `db:"unit_cost" json:"unit_cost"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// BelowReorderPoint reports whether stock has fallen to the reorder line.
func (p Part) BelowReorderPoint() bool {
	return p.QtyOnHand <= p.ReorderPoint
}

// PartFilter captures list query options.
type PartFilter struct {
	Search   string
	LowStock bool
	Page     int
	PageSize int
}
