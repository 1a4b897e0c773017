package authz

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
	"github.com/josh-kwaku/cafeteria-ledger/internal/logging"
)

type cardRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.CardAccount, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.CardAccount, error)
}

type employeeRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
}

type txBeginner interface {
	BeginLocked(ctx context.Context) (*sql.Tx, error)
}

type Policy struct {
	MinRoleTier     domain.RoleTier
	ReasonMinLength int
	TokenTTL        time.Duration
}

type Service struct {
	cards     cardRepo
	employees employeeRepo
	tokens    TokenStore
	db        txBeginner
	policy    Policy
	now       func() time.Time
}

func NewService(cards cardRepo, employees employeeRepo, tokens TokenStore, db txBeginner, policy Policy) *Service {
	return &Service{
		cards:     cards,
		employees: employees,
		tokens:    tokens,
		db:        db,
		policy:    policy,
		now:       time.Now,
	}
}

type Check struct {
	CardID           int64
	Amount           int64
	Decision         domain.Decision
	Reason           string
	Balance          int64
	CreditLimit      int64
	ResultingBalance int64
}

// RequestAuthorization is an unlocked pre-check. Its answer is advisory;
// the debit re-validates under the card lock.
func (s *Service) RequestAuthorization(ctx context.Context, cardID, amount int64) (*Check, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("RequestAuthorization: %w", domain.ErrInvalidAmount)
	}

	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("RequestAuthorization: %w", err)
	}

	decision, denial := EvaluateDebit(card, amount)
	check := &Check{
		CardID:           card.ID,
		Amount:           amount,
		Decision:         decision,
		Balance:          card.Balance,
		CreditLimit:      card.CreditLimit,
		ResultingBalance: card.Balance - amount,
	}
	if denial != nil {
		check.Reason = denial.Error()
	}
	return check, nil
}

type AuthorizeRequest struct {
	CardID       int64
	Amount       int64
	SupervisorID int64
	Reason       string
}

// Authorize runs the authoritative check against the locked card and issues
// a single-use token bound to the card and amount.
func (s *Service) Authorize(ctx context.Context, req AuthorizeRequest) (*Grant, error) {
	if !domain.ValidAmount(req.Amount) {
		return nil, fmt.Errorf("Authorize: %w", domain.ErrInvalidAmount)
	}

	tx, err := s.db.BeginLocked(ctx)
	if err != nil {
		return nil, fmt.Errorf("Authorize: %w", err)
	}
	defer tx.Rollback()

	card, err := s.cards.GetForUpdate(ctx, tx, req.CardID)
	if err != nil {
		return nil, fmt.Errorf("Authorize: %w", err)
	}

	if err := s.Validate(ctx, card, req.Amount, req.SupervisorID, req.Reason); err != nil {
		return nil, fmt.Errorf("Authorize: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Authorize: commit: %w", err)
	}

	now := s.now().UTC()
	g := &Grant{
		Token:        uuid.NewString(),
		CardID:       card.ID,
		Amount:       req.Amount,
		SupervisorID: req.SupervisorID,
		Reason:       strings.TrimSpace(req.Reason),
		IssuedAt:     now,
		ExpiresAt:    now.Add(s.policy.TokenTTL),
	}
	if err := s.tokens.Issue(ctx, g, s.policy.TokenTTL); err != nil {
		return nil, fmt.Errorf("Authorize: %w", err)
	}

	logging.FromContext(ctx).Info("negative balance authorized",
		"card_id", card.ID,
		"amount", req.Amount,
		"supervisor_id", req.SupervisorID,
		"balance", card.Balance,
	)
	return g, nil
}

// Validate is the authoritative check. card must have been read under its
// row lock by the caller.
func (s *Service) Validate(ctx context.Context, card *domain.CardAccount, amount, supervisorID int64, reason string) error {
	emp, err := s.employees.GetByID(ctx, supervisorID)
	if err != nil {
		if errors.Is(err, domain.ErrEmployeeNotFound) {
			return fmt.Errorf("Validate: employee %d: %w", supervisorID, domain.ErrNotAuthorizedRole)
		}
		return fmt.Errorf("Validate: %w", err)
	}
	if !emp.Active || emp.RoleTier < s.policy.MinRoleTier {
		return fmt.Errorf("Validate: employee %d tier %s: %w", emp.ID, emp.RoleTier, domain.ErrNotAuthorizedRole)
	}

	if utf8.RuneCountInString(strings.TrimSpace(reason)) < s.policy.ReasonMinLength {
		return fmt.Errorf("Validate: %w", domain.ErrReasonTooShort)
	}

	decision, err := EvaluateDebit(card, amount)
	if err != nil {
		return fmt.Errorf("Validate: %w", err)
	}
	if decision != domain.DecisionRequiresSupervisor {
		return fmt.Errorf("Validate: decision %s: %w", decision, domain.ErrAuthorizationNotNeeded)
	}
	return nil
}

// Redeem consumes token for a debit of amount on the locked card and re-runs
// Validate. The token is spent even when validation fails.
func (s *Service) Redeem(ctx context.Context, token string, card *domain.CardAccount, amount int64) (*Grant, error) {
	g, err := s.tokens.Consume(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("Redeem: %w", err)
	}
	if g.CardID != card.ID || g.Amount != amount {
		return nil, fmt.Errorf("Redeem: %w", domain.ErrAuthTokenMismatch)
	}
	if err := s.Validate(ctx, card, amount, g.SupervisorID, g.Reason); err != nil {
		return nil, fmt.Errorf("Redeem: %w", err)
	}
	return g, nil
}
