package entities

// TransactionType represents the type of balance change
type TransactionType string

const (
	// Lottery transactions
	TransactionTypeLottoTicket TransactionType = "lotto_ticket"
	TransactionTypeLottoPayout TransactionType = "lotto_payout"

	// System transactions
	TransactionTypeInitial TransactionType = "initial"
)

// String returns the string representation of the transaction type
func (tt TransactionType) String() string {
	return string(tt)
}
