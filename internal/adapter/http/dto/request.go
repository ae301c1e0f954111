package dto

import (
	"github.com/iho/tokenledger/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	OwnerID string `json:"owner_id"`
	Email   string `json:"email"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		OwnerID: r.OwnerID,
		Email:   r.Email,
	}
}

// AdjustmentRequest represents a credit or debit request.
type AdjustmentRequest struct {
	Amount int64 `json:"amount"`
}
