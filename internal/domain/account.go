package domain

// InitialBalance is the token grant every account starts with.
const InitialBalance int64 = 1

// Account is the reconstructed current state of one account. It is never
// stored directly; it exists only in memory and inside Snapshot events.
type Account struct {
	ID      string
	OwnerID string
	Email   string
	Balance int64
	Version int64
}

// ValidateDebit checks if the account can be debited by amount.
func (a *Account) ValidateDebit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if a.Balance-amount < 0 {
		return ErrInsufficientBalance
	}
	return nil
}

// ValidateCredit checks if amount is a valid credit magnitude.
func (a *Account) ValidateCredit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
