package domain

import "time"

// ListingEntry is a denormalized projection of an account's identity fields,
// written once at creation and used only for enumeration.
type ListingEntry struct {
	SortKey   string
	AccountID string
	OwnerID   string
	Email     string
	CreatedAt time.Time
}

// ListingSortKey derives the composite ordering key for the listing index.
func ListingSortKey(email, ownerID string) string {
	return email + "#" + ownerID
}

// NewListingEntry builds the listing projection for a freshly created account.
func NewListingEntry(a Account, at time.Time) *ListingEntry {
	return &ListingEntry{
		SortKey:   ListingSortKey(a.Email, a.OwnerID),
		AccountID: a.ID,
		OwnerID:   a.OwnerID,
		Email:     a.Email,
		CreatedAt: at,
	}
}
