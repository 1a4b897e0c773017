package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/josh-kwaku/cafeteria-ledger/internal/authz"
	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
	"github.com/josh-kwaku/cafeteria-ledger/internal/logging"
)

type DebitRequest struct {
	CardID     int64
	Amount     int64
	SaleID     *int64
	AuthToken  string
	OperatorID int64
}

type DebitResult struct {
	CardID              int64
	Amount              int64
	PriorBalance        int64
	NewBalance          int64
	AuthorizationID     *int64
	LowBalanceThreshold int64
}

// Debit runs the full lock, validate, write sequence in its own transaction.
func (s *Service) Debit(ctx context.Context, req DebitRequest) (*DebitResult, error) {
	if !domain.ValidAmount(req.Amount) {
		return nil, fmt.Errorf("Debit: %w", domain.ErrInvalidAmount)
	}

	tx, err := s.db.BeginLocked(ctx)
	if err != nil {
		return nil, fmt.Errorf("Debit: %w", err)
	}
	defer tx.Rollback()

	res, err := s.DebitTx(ctx, tx, req)
	if err != nil {
		return nil, fmt.Errorf("Debit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Debit: commit: %w", err)
	}

	s.NotifyDebit(ctx, res)
	return res, nil
}

// DebitTx debits inside a transaction owned by the caller, who must commit
// and then call NotifyDebit.
func (s *Service) DebitTx(ctx context.Context, tx *sql.Tx, req DebitRequest) (*DebitResult, error) {
	if !domain.ValidAmount(req.Amount) {
		return nil, fmt.Errorf("DebitTx: %w", domain.ErrInvalidAmount)
	}

	card, err := s.cards.GetForUpdate(ctx, tx, req.CardID)
	if err != nil {
		return nil, fmt.Errorf("DebitTx: %w", err)
	}

	decision, err := authz.EvaluateDebit(card, req.Amount)
	if err != nil {
		return nil, fmt.Errorf("DebitTx: %w", err)
	}

	res := &DebitResult{
		CardID:              card.ID,
		Amount:              req.Amount,
		PriorBalance:        card.Balance,
		NewBalance:          card.Balance - req.Amount,
		LowBalanceThreshold: card.LowBalanceThreshold,
	}

	entry := &domain.AuditEntry{
		Operation:     domain.AuditOpDebit,
		EntityType:    domain.AuditEntityCard,
		EntityID:      card.ID,
		CardID:        card.ID,
		BalanceBefore: res.PriorBalance,
		BalanceAfter:  res.NewBalance,
		ActorID:       req.OperatorID,
	}
	if req.SaleID != nil {
		entry.EntityType = domain.AuditEntitySale
		entry.EntityID = *req.SaleID
	}

	if decision == domain.DecisionRequiresSupervisor {
		if req.AuthToken == "" {
			return nil, fmt.Errorf("DebitTx: %w", domain.ErrAuthorizationRequired)
		}
		grant, err := s.authz.Redeem(ctx, req.AuthToken, card, req.Amount)
		if err != nil {
			return nil, fmt.Errorf("DebitTx: %w", err)
		}

		a := &domain.NegativeBalanceAuthorization{
			CardID:                card.ID,
			SaleID:                req.SaleID,
			AuthorizingEmployeeID: grant.SupervisorID,
			PriorBalance:          res.PriorBalance,
			DebitAmount:           req.Amount,
			ResultingBalance:      res.NewBalance,
			Reason:                grant.Reason,
		}
		if err := s.auths.Create(ctx, tx, a); err != nil {
			return nil, fmt.Errorf("DebitTx: authorization: %w", err)
		}
		res.AuthorizationID = &a.ID

		entry.Operation = domain.AuditOpNegativeBalanceDebit
		entry.EntityType = domain.AuditEntityAuthorization
		entry.EntityID = a.ID
		entry.Detail = fmt.Sprintf("authorized by employee %d", grant.SupervisorID)
		if req.SaleID != nil {
			entry.Detail += fmt.Sprintf(" for sale %d", *req.SaleID)
		}
	}

	if err := s.cards.UpdateBalance(ctx, tx, card.ID, res.NewBalance, card.Version+1); err != nil {
		return nil, fmt.Errorf("DebitTx: %w", err)
	}

	if err := s.audit.Record(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("DebitTx: audit: %w", err)
	}

	return res, nil
}

// NotifyDebit emits post-commit notifications. It never fails the debit.
func (s *Service) NotifyDebit(ctx context.Context, res *DebitResult) {
	if res == nil {
		return
	}
	logging.FromContext(ctx).Info("card debited",
		"card_id", res.CardID,
		"amount", res.Amount,
		"balance_after", res.NewBalance,
		"negative_authorized", res.AuthorizationID != nil,
	)

	if res.AuthorizationID != nil {
		s.notifier.Notify(ctx, res.CardID, domain.NotificationNegativeAuthorized, map[string]any{
			"authorization_id": *res.AuthorizationID,
			"amount":           res.Amount,
			"balance":          res.NewBalance,
		})
	}
	if res.PriorBalance > res.LowBalanceThreshold && res.NewBalance <= res.LowBalanceThreshold {
		s.notifier.Notify(ctx, res.CardID, domain.NotificationLowBalance, map[string]any{
			"balance":   res.NewBalance,
			"threshold": res.LowBalanceThreshold,
		})
	}
}
