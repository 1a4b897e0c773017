package ledger

import (
	"context"
	"fmt"

	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
	"github.com/josh-kwaku/cafeteria-ledger/internal/logging"
)

// Credit tops up a card. Any outstanding debt is paid down first.
func (s *Service) Credit(ctx context.Context, cardID, amount, actorID int64) (*domain.RegularizationSummary, error) {
	if !domain.ValidAmount(amount) {
		return nil, fmt.Errorf("Credit: %w", domain.ErrInvalidAmount)
	}
	sum, err := s.Regularize(ctx, cardID, amount, actorID)
	if err != nil {
		return nil, fmt.Errorf("Credit: %w", err)
	}
	return sum, nil
}

// Regularize applies a recharge to the card as one arithmetic update. When
// the final balance is non-negative every open authorization is closed.
// A zero recharge changes nothing.
func (s *Service) Regularize(ctx context.Context, cardID, amount, actorID int64) (*domain.RegularizationSummary, error) {
	if amount < 0 {
		return nil, fmt.Errorf("Regularize: %w", domain.ErrNegativeAmount)
	}
	if amount > domain.MaxAmount {
		return nil, fmt.Errorf("Regularize: %w", domain.ErrInvalidAmount)
	}
	if amount == 0 {
		card, err := s.cards.GetByID(ctx, cardID)
		if err != nil {
			return nil, fmt.Errorf("Regularize: %w", err)
		}
		return &domain.RegularizationSummary{
			CardID:           card.ID,
			HadDebt:          card.Debt() > 0,
			DebtBefore:       card.Debt(),
			FinalBalance:     card.Balance,
			FullyRegularized: card.Balance >= 0,
		}, nil
	}

	tx, err := s.db.BeginLocked(ctx)
	if err != nil {
		return nil, fmt.Errorf("Regularize: %w", err)
	}
	defer tx.Rollback()

	card, err := s.cards.GetForUpdate(ctx, tx, cardID)
	if err != nil {
		return nil, fmt.Errorf("Regularize: %w", err)
	}
	if card.State == domain.CardStateBlocked {
		return nil, fmt.Errorf("Regularize: %w", domain.ErrCardBlocked)
	}

	final, ok := domain.AddBalance(card.Balance, amount)
	if !ok {
		return nil, fmt.Errorf("Regularize: balance %d: %w", card.Balance, domain.ErrInvalidAmount)
	}

	debt := card.Debt()
	sum := &domain.RegularizationSummary{
		CardID:              card.ID,
		HadDebt:             debt > 0,
		DebtBefore:          debt,
		AmountAppliedToDebt: min(amount, debt),
		FinalBalance:        final,
	}
	sum.FullyRegularized = sum.FinalBalance >= 0

	rc := &domain.Recharge{CardID: card.ID, Amount: amount, CreatedBy: actorID}
	if err := s.recharges.Create(ctx, tx, rc); err != nil {
		return nil, fmt.Errorf("Regularize: recharge: %w", err)
	}
	sum.RechargeID = &rc.ID

	if err := s.cards.UpdateBalance(ctx, tx, card.ID, sum.FinalBalance, card.Version+1); err != nil {
		return nil, fmt.Errorf("Regularize: %w", err)
	}

	err = s.audit.Record(ctx, tx, &domain.AuditEntry{
		Operation:     domain.AuditOpRecharge,
		EntityType:    domain.AuditEntityRecharge,
		EntityID:      rc.ID,
		CardID:        card.ID,
		BalanceBefore: card.Balance,
		BalanceAfter:  sum.FinalBalance,
		ActorID:       actorID,
		Detail:        fmt.Sprintf("applied %d to debt", sum.AmountAppliedToDebt),
	})
	if err != nil {
		return nil, fmt.Errorf("Regularize: audit: %w", err)
	}

	if sum.FullyRegularized {
		closed, err := s.auths.CloseOpen(ctx, tx, card.ID, rc.ID, s.now().UTC())
		if err != nil {
			return nil, fmt.Errorf("Regularize: %w", err)
		}
		for _, id := range closed {
			err := s.audit.Record(ctx, tx, &domain.AuditEntry{
				Operation:     domain.AuditOpRegularization,
				EntityType:    domain.AuditEntityAuthorization,
				EntityID:      id,
				CardID:        card.ID,
				BalanceBefore: card.Balance,
				BalanceAfter:  sum.FinalBalance,
				ActorID:       actorID,
				Detail:        fmt.Sprintf("closed by recharge %d", rc.ID),
			})
			if err != nil {
				return nil, fmt.Errorf("Regularize: audit: %w", err)
			}
		}
		sum.ClosedAuthorizations = closed
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Regularize: commit: %w", err)
	}

	logging.FromContext(ctx).Info("card recharged",
		"card_id", card.ID,
		"amount", amount,
		"debt_before", debt,
		"balance_after", sum.FinalBalance,
		"closed_authorizations", len(sum.ClosedAuthorizations),
	)
	if len(sum.ClosedAuthorizations) > 0 {
		s.notifier.Notify(ctx, card.ID, domain.NotificationDebtRegularized, map[string]any{
			"recharge_id":    rc.ID,
			"debt_before":    debt,
			"balance":        sum.FinalBalance,
			"authorizations": sum.ClosedAuthorizations,
		})
	}
	return sum, nil
}
