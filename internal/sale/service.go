package sale

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/josh-kwaku/cafeteria-ledger/internal/commission"
	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
	"github.com/josh-kwaku/cafeteria-ledger/internal/ledger"
	"github.com/josh-kwaku/cafeteria-ledger/internal/logging"
)

type saleRepo interface {
	Create(ctx context.Context, tx *sql.Tx, s *domain.Sale) error
	CreatePayment(ctx context.Context, tx *sql.Tx, p *domain.SalePayment) error
}

type commissionRepo interface {
	CreateRecord(ctx context.Context, tx *sql.Tx, rec *domain.CommissionRecord) error
	CreateFollowUp(ctx context.Context, tx *sql.Tx, f *domain.CommissionFollowUp) error
}

type debiter interface {
	DebitTx(ctx context.Context, tx *sql.Tx, req ledger.DebitRequest) (*ledger.DebitResult, error)
	NotifyDebit(ctx context.Context, res *ledger.DebitResult)
}

type quoter interface {
	ComputeAt(ctx context.Context, instrumentID, gross int64, at time.Time) (*commission.Quote, error)
}

type txBeginner interface {
	BeginLocked(ctx context.Context) (*sql.Tx, error)
}

type Service struct {
	sales       saleRepo
	commissions commissionRepo
	ledger      debiter
	calculator  quoter
	db          txBeginner
	now         func() time.Time
}

func NewService(sales saleRepo, commissions commissionRepo, ledger debiter, calculator quoter, db txBeginner) *Service {
	return &Service{
		sales:       sales,
		commissions: commissions,
		ledger:      ledger,
		calculator:  calculator,
		db:          db,
		now:         time.Now,
	}
}

type PaymentLine struct {
	InstrumentID int64
	Amount       int64
}

type CheckoutRequest struct {
	CardID     *int64
	CardAmount int64
	Payments   []PaymentLine
	AuthToken  string
	OperatorID int64
}

func (r CheckoutRequest) validate() error {
	if r.CardAmount < 0 {
		return domain.ErrNegativeAmount
	}
	if r.CardAmount > domain.MaxAmount {
		return domain.ErrInvalidAmount
	}
	if r.CardAmount > 0 && r.CardID == nil {
		return domain.ErrPaymentMismatch
	}
	total := r.CardAmount
	for _, p := range r.Payments {
		if !domain.ValidAmount(p.Amount) {
			return domain.ErrInvalidAmount
		}
		// both operands are bounded by MaxAmount, so the sum cannot wrap
		total += p.Amount
		if total > domain.MaxAmount {
			return domain.ErrInvalidAmount
		}
	}
	if total <= 0 {
		return domain.ErrInvalidAmount
	}
	return nil
}

type PaymentReceipt struct {
	Payment    domain.SalePayment
	Commission commission.Quote
	RecordID   *int64
	FollowUpID *int64
}

type Receipt struct {
	Sale     domain.Sale
	Debit    *ledger.DebitResult
	Payments []PaymentReceipt
}

// Checkout records a sale and every balance and commission effect it has in
// one transaction. A missing commission rate never blocks the sale.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*Receipt, error) {
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("Checkout: %w", err)
	}

	at := s.now().UTC()
	quotes := make([]*commission.Quote, len(req.Payments))
	for i, p := range req.Payments {
		q, err := s.calculator.ComputeAt(ctx, p.InstrumentID, p.Amount, at)
		if err != nil {
			return nil, fmt.Errorf("Checkout: %w", err)
		}
		quotes[i] = q
	}

	tx, err := s.db.BeginLocked(ctx)
	if err != nil {
		return nil, fmt.Errorf("Checkout: %w", err)
	}
	defer tx.Rollback()

	receipt := &Receipt{Sale: domain.Sale{
		CardID:      req.CardID,
		CardAmount:  req.CardAmount,
		TotalAmount: req.CardAmount,
		CreatedBy:   req.OperatorID,
	}}
	for _, p := range req.Payments {
		receipt.Sale.TotalAmount += p.Amount
	}
	if err := s.sales.Create(ctx, tx, &receipt.Sale); err != nil {
		return nil, fmt.Errorf("Checkout: %w", err)
	}

	if req.CardAmount > 0 {
		saleID := receipt.Sale.ID
		res, err := s.ledger.DebitTx(ctx, tx, ledger.DebitRequest{
			CardID:     *req.CardID,
			Amount:     req.CardAmount,
			SaleID:     &saleID,
			AuthToken:  req.AuthToken,
			OperatorID: req.OperatorID,
		})
		if err != nil {
			return nil, fmt.Errorf("Checkout: %w", err)
		}
		receipt.Debit = res
	}

	for i, p := range req.Payments {
		pr := PaymentReceipt{
			Payment:    domain.SalePayment{SaleID: receipt.Sale.ID, InstrumentID: p.InstrumentID, Amount: p.Amount},
			Commission: *quotes[i],
		}
		if err := s.sales.CreatePayment(ctx, tx, &pr.Payment); err != nil {
			return nil, fmt.Errorf("Checkout: %w", err)
		}

		switch q := quotes[i]; {
		case q.Recordable():
			rec := &domain.CommissionRecord{
				PaymentID:         pr.Payment.ID,
				RateID:            *q.RateID,
				ComputedAmount:    q.Amount,
				PercentageApplied: q.Percentage,
			}
			if err := s.commissions.CreateRecord(ctx, tx, rec); err != nil {
				return nil, fmt.Errorf("Checkout: %w", err)
			}
			pr.RecordID = &rec.ID
		case q.MissingRate:
			f := &domain.CommissionFollowUp{
				PaymentID:    pr.Payment.ID,
				InstrumentID: p.InstrumentID,
				GrossAmount:  p.Amount,
				Reason:       domain.ErrMissingActiveRate.Error(),
			}
			if err := s.commissions.CreateFollowUp(ctx, tx, f); err != nil {
				return nil, fmt.Errorf("Checkout: %w", err)
			}
			pr.FollowUpID = &f.ID
		}
		receipt.Payments = append(receipt.Payments, pr)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Checkout: commit: %w", err)
	}

	logging.FromContext(ctx).Info("sale completed",
		"sale_id", receipt.Sale.ID,
		"total", receipt.Sale.TotalAmount,
		"card_amount", receipt.Sale.CardAmount,
		"payments", len(receipt.Payments),
	)
	s.ledger.NotifyDebit(ctx, receipt.Debit)
	return receipt, nil
}
