package catalog

type CreateServiceRequest struct {
	Title             string  `json:"title" binding:"required"`
	Description       string  `json:"description"`
	Category          string  `json:"category"`
	BasePrice         float64 `json:"base_price" binding:"required,gte=0"`
	EstimatedDuration int     `json:"estimated_duration" binding:"required,gt=0"`
}

type UpdateServiceRequest struct {
	Title             *string  `json:"title"`
	Description       *string  `json:"description"`
	Category          *string  `json:"category"`
	BasePrice         *float64 `json:"base_price"`
	EstimatedDuration *int     `json:"estimated_duration"`
	IsActive          *bool    `json:"is_active"`
	IsAvailable       *bool    `json:"is_available"`
}
