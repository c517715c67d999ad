package payment

type InitiateRequest struct {
	BookingID    int64  `json:"booking_id" binding:"required,gt=0"`
	Provider     string `json:"provider" binding:"required"`
	SenderNumber string `json:"sender_number" binding:"required"`
}

type ResolveRequest struct {
	Action string `json:"action" binding:"required,oneof=verify fail"`
	Reason string `json:"reason"`
}
