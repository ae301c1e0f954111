package dto

import (
	"time"

	"github.com/iho/tokenledger/internal/domain"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Email   string `json:"email"`
	Balance int64  `json:"balance"`
	Version int64  `json:"version"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:      a.ID,
		OwnerID: a.OwnerID,
		Email:   a.Email,
		Balance: a.Balance,
		Version: a.Version,
	}
}

// ListingEntryResponse represents one account in a listing page.
type ListingEntryResponse struct {
	AccountID string    `json:"account_id"`
	OwnerID   string    `json:"owner_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// ListingFromDomain converts listing entries to responses.
func ListingFromDomain(entries []*domain.ListingEntry) []*ListingEntryResponse {
	result := make([]*ListingEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = &ListingEntryResponse{
			AccountID: e.AccountID,
			OwnerID:   e.OwnerID,
			Email:     e.Email,
			CreatedAt: e.CreatedAt,
		}
	}
	return result
}

// ListAccountsResponse is one page of the account listing.
type ListAccountsResponse struct {
	Accounts   []*ListingEntryResponse `json:"accounts"`
	NextCursor string                  `json:"next_cursor,omitempty"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
