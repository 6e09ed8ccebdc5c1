package banking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

type PaystackVerifier struct {
	client    *http.Client
	baseURL   string
	secretKey string
}

func NewPaystackVerifier(baseURL, secretKey string) *PaystackVerifier {
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}

	return &PaystackVerifier{
		client:    &http.Client{Timeout: 15 * time.Second},
		baseURL:   baseURL,
		secretKey: secretKey,
	}
}

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (p *PaystackVerifier) ListBanks(ctx context.Context) ([]*Bank, error) {
	var payload []struct {
		Name string `json:"name"`
		Code string `json:"code"`
	}

	if err := p.get(ctx, "/bank?country=nigeria", &payload); err != nil {
		return nil, fmt.Errorf("failed to list banks: %w", err)
	}

	banks := make([]*Bank, len(payload))
	for i, b := range payload {
		banks[i] = &Bank{Name: b.Name, Code: b.Code}
	}

	return banks, nil
}

func (p *PaystackVerifier) ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*AccountDetail, error) {
	var payload struct {
		AccountName   string `json:"account_name"`
		AccountNumber string `json:"account_number"`
	}

	path := fmt.Sprintf("/bank/resolve?account_number=%s&bank_code=%s",
		url.QueryEscape(accountNumber), url.QueryEscape(bankCode))
	if err := p.get(ctx, path, &payload); err != nil {
		return nil, fmt.Errorf("failed to resolve account: %w", err)
	}

	detail := &AccountDetail{
		AccountName:   payload.AccountName,
		AccountNumber: payload.AccountNumber,
		BankCode:      bankCode,
	}

	// The resolve endpoint does not echo the bank name; fill it from the
	// directory so callers get a complete record.
	banks, err := p.ListBanks(ctx)
	if err == nil {
		for _, b := range banks {
			if b.Code == bankCode {
				detail.BankName = b.Name
				break
			}
		}
	}

	return detail, nil
}

func (p *PaystackVerifier) get(ctx context.Context, path string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var envelope paystackEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !envelope.Status {
		return fmt.Errorf("provider returned %d: %s", resp.StatusCode, envelope.Message)
	}

	return json.Unmarshal(envelope.Data, dest)
}
