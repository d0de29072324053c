package dto

// CreateWorkOrderRequest opens a corrective work order.
type CreateWorkOrderRequest struct {
	BFMNo       string  `json:"bfmNo" validate:"required,max=32"`
	Description string  `json:"description" validate:"required,max=1000"`
	Technician  *string `json:"technician" validate:"omitempty,max=100"`
}

// UpdateWorkOrderStatusRequest moves a work order through its lifecycle.
type UpdateWorkOrderStatusRequest struct {
	Status     string  `json:"status" validate:"required,oneof=Open 'In Progress'"`
	Technician *string `json:"technician" validate:"omitempty,max=100"`
}

// CloseWorkOrderRequest finalises a work order.
type CloseWorkOrderRequest struct {
	RootCause     string   `json:"rootCause" validate:"required,max=1000"`
	DowntimeHours *float64 `json:"downtimeHours" validate:"omitempty,min=0"`
}
