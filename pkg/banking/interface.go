package banking

import "context"

// BankVerifier resolves account numbers against the interbank directory.
// KYC approval requires a successful resolution.
type BankVerifier interface {
	ListBanks(ctx context.Context) ([]*Bank, error)
	ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*AccountDetail, error)
}

type Bank struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type AccountDetail struct {
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
	BankCode      string `json:"bank_code"`
}
