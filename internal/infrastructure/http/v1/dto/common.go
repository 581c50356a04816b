// Package dto defines request and response shapes for the HTTP API.
package dto

// IDResponse is the standard creation response.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse is a generic acknowledgement.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
