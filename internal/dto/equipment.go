package dto

// CreateEquipmentRequest registers a new asset on the roster.
type CreateEquipmentRequest struct {
	BFMNo       string  `json:"bfmNo" validate:"required,max=32"`
	Description string  `json:"description" validate:"required,max=255"`
	HasWeekly   bool    `json:"hasWeekly"`
	HasMonthly  bool    `json:"hasMonthly"`
	HasSixMonth bool    `json:"hasSixMonth"`
	HasAnnual   bool    `json:"hasAnnual"`
	Location    *string `json:"location" validate:"omitempty,max=100"`
}

// UpdateEquipmentRequest rewrites an asset's mutable fields.
type UpdateEquipmentRequest struct {
	Description string  `json:"description" validate:"required,max=255"`
	HasWeekly   bool    `json:"hasWeekly"`
	HasMonthly  bool    `json:"hasMonthly"`
	HasSixMonth bool    `json:"hasSixMonth"`
	HasAnnual   bool    `json:"hasAnnual"`
	Status      string  `json:"status" validate:"required,oneof=Active 'Run to Failure' Missing Deactivated"`
	Location    *string `json:"location" validate:"omitempty,max=100"`
}

// UpdateEquipmentStatusRequest moves an asset between lifecycle states.
type UpdateEquipmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Active 'Run to Failure' Missing Deactivated"`
}
