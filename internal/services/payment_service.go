package services

import (
	"context"
	"fmt"
	"strings"

	"hearth/internal/balance"
	"hearth/internal/core"
	"hearth/internal/log"
	"hearth/internal/store"
)

// PaymentInput is the raw form input for a new shared payment. Amount is the
// user's text and is parsed here. When CustomAmounts is set the split is
// custom; otherwise the total is divided equally among Members.
type PaymentInput struct {
	ItemName    string
	Description string
	Amount      string
	SetByUID    string
	SetByName   string

	Members       []string
	CustomAmounts map[string]float64
}

// PaymentService creates payments and settles individual shares.
type PaymentService struct {
	store  store.Store
	logger *log.Logger
}

func NewPaymentService(st store.Store) *PaymentService {
	return &PaymentService{
		store:  st,
		logger: log.Default(log.ComponentPayment),
	}
}

// Create validates the input, builds the share map and persists the payment
// with every share unpaid. Validation failures are returned before anything
// reaches the store.
func (s *PaymentService) Create(ctx context.Context, groupID string, in PaymentInput) (core.Payment, error) {
	if strings.TrimSpace(in.ItemName) == "" {
		return core.Payment{}, core.ErrEmptyItemName
	}
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Payment{}, err
	}

	var shares map[string]core.Share
	if len(in.CustomAmounts) > 0 {
		shares, err = balance.CustomShares(amount, in.CustomAmounts)
	} else {
		shares, err = balance.EqualShares(amount, in.Members)
	}
	if err != nil {
		return core.Payment{}, err
	}

	payment := core.Payment{
		ItemName:    strings.TrimSpace(in.ItemName),
		Description: in.Description,
		Amount:      amount,
		SetByUID:    in.SetByUID,
		SetByName:   in.SetByName,
		Shares:      shares,
	}
	if err := payment.Validate(); err != nil {
		return core.Payment{}, err
	}

	id, err := s.store.Insert(ctx, store.PaymentsCollection(groupID), store.EncodePayment(payment))
	if err != nil {
		return core.Payment{}, fmt.Errorf("create payment: %w", err)
	}
	payment.ID = id

	s.logger.InfoContext(ctx, "Created payment",
		log.FieldGroupID, groupID,
		log.FieldPaymentID, id,
		log.FieldItemName, payment.ItemName,
		log.FieldAmount, amount)
	return payment, nil
}

// ToggleSharePaid flips one member's paid flag. The write targets only that
// share's path, so concurrent toggles on different shares never collide; the
// last write on the same share wins.
func (s *PaymentService) ToggleSharePaid(ctx context.Context, groupID, paymentID, memberID string, paid bool) error {
	err := s.store.Update(ctx, store.PaymentsCollection(groupID), paymentID, map[string]any{
		"shares." + memberID + ".paid": paid,
	})
	if err != nil {
		return fmt.Errorf("toggle share paid: %w", err)
	}
	return nil
}
