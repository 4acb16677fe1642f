package dto

type RequestVerificationRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}

type RequestVerificationResponse struct {
	RequestID string `json:"request_id"`
	// Code is only populated outside production so integration tests
	// can complete the flow without a mailbox.
	Code string `json:"code,omitempty"`
}

type ConfirmVerificationRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
	Code  string `json:"code" binding:"required,len=8"`
}
