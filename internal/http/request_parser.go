package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"budgetledger/internal/core"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a size-capped JSON body into dst.
func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// bearerToken extracts the session token from the Authorization header.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return strings.TrimSpace(auth[len(prefix):])
	}
	return ""
}

// transactionRequest is the wire form of a new transaction. Amount arrives as
// the decimal string the user typed, signed, with dot or comma separator.
type transactionRequest struct {
	Date        string `json:"date"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Amount      string `json:"amount"`
}

// toTransaction parses the request into a domain transaction. The entry is
// not validated here; the store rejects invalid transactions itself.
func (req transactionRequest) toTransaction() (core.Transaction, error) {
	date, err := core.ParseDate(strings.TrimSpace(req.Date))
	if err != nil {
		return core.Transaction{}, err
	}

	cents, err := core.ParseSignedDecimalToCents(strings.TrimSpace(req.Amount))
	if err != nil {
		return core.Transaction{}, err
	}

	return core.Transaction{
		Date:        date,
		Category:    strings.TrimSpace(req.Category),
		Subcategory: strings.TrimSpace(req.Subcategory),
		Amount:      core.Money{Cents: cents},
	}, nil
}

// filterRequest selects the transactions a view shows.
type filterRequest struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

func (req filterRequest) toFilter() core.Filter {
	return core.Filter{
		Category:    strings.TrimSpace(req.Category),
		Subcategory: strings.TrimSpace(req.Subcategory),
	}.Normalize()
}

// credentialsRequest carries login and registration payloads.
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
