package services

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"fincore/internal/core"

	"github.com/shopspring/decimal"
)

// draftLine is the JSON shape of one transaction draft in an intake stream.
type draftLine struct {
	Kind               string          `json:"kind"`
	Amount             decimal.Decimal `json:"amount"`
	Category           string          `json:"category"`
	AccountID          string          `json:"account_id"`
	CounterpartyID     string          `json:"counterparty_id,omitempty"`
	Paid               *bool           `json:"paid,omitempty"`
	Timestamp          time.Time       `json:"timestamp"`
	RecurringPaymentID string          `json:"recurring_payment_id,omitempty"`
	DebtID             string          `json:"debt_id,omitempty"`
	Installments       int             `json:"installments,omitempty"`
	WantsInterest      bool            `json:"wants_interest,omitempty"`
}

// ParseTransactionDraft decodes one JSON draft. Paid defaults to true.
func ParseTransactionDraft(data []byte) (TransactionDraft, error) {
	var l draftLine
	if err := json.Unmarshal(data, &l); err != nil {
		return TransactionDraft{}, fmt.Errorf("decode transaction draft: %w: %v", core.ErrInvalidInput, err)
	}
	paid := true
	if l.Paid != nil {
		paid = *l.Paid
	}
	return TransactionDraft{
		Kind:               core.TransactionKind(strings.ToLower(l.Kind)),
		Amount:             l.Amount,
		Category:           l.Category,
		AccountID:          l.AccountID,
		CounterpartyID:     l.CounterpartyID,
		Paid:               paid,
		Timestamp:          l.Timestamp,
		RecurringPaymentID: l.RecurringPaymentID,
		DebtID:             l.DebtID,
		Installments:       l.Installments,
		WantsInterest:      l.WantsInterest,
	}, nil
}

// ReadDrafts decodes newline-delimited drafts from r and sends them on out
// until r is exhausted or ctx is done. Blank lines and lines starting with
// '#' are skipped. Malformed lines are reported through onError and do not
// stop the stream.
func ReadDrafts(ctx context.Context, r io.Reader, out chan<- TransactionDraft, onError func(line int, err error)) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		d, err := ParseTransactionDraft([]byte(text))
		if err != nil {
			if onError != nil {
				onError(line, err)
			}
			continue
		}
		select {
		case out <- d:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read transaction drafts: %w", err)
	}
	return nil
}
