package dto

// CreatePartRequest registers a new MRO stock item.
type CreatePartRequest struct {
	PartNumber   string  `json:"partNumber" validate:"required,max=64"`
	Description  string  `json:"description" validate:"required,max=255"`
	Location     *string `json:"location" validate:"omitempty,max=100"`
	QtyOnHand    int     `json:"qtyOnHand" validate:"min=0"`
	ReorderPoint int     `json:"reorderPoint" validate:"min=0"`
	UnitCost     float64 `json:"unitCost" validate:"min=0"`
}

// AdjustStockRequest applies a signed delta to a part's on-hand quantity.
type AdjustStockRequest struct {
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"omitempty,max=255"`
}

// AdjustStockResponse reports the remaining quantity.
type AdjustStockResponse struct {
	PartID    string `json:"partId"`
	QtyOnHand int    `json:"qtyOnHand"`
}
