package ledger

import (
	"context"
	"database/sql"
	"time"

	"github.com/josh-kwaku/cafeteria-ledger/internal/authz"
	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
)

type cardRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.CardAccount, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.CardAccount, error)
	UpdateBalance(ctx context.Context, tx *sql.Tx, id int64, newBalance int64, newVersion int64) error
}

type authorizationRepo interface {
	Create(ctx context.Context, tx *sql.Tx, a *domain.NegativeBalanceAuthorization) error
	CloseOpen(ctx context.Context, tx *sql.Tx, cardID, rechargeID int64, at time.Time) ([]int64, error)
}

type rechargeRepo interface {
	Create(ctx context.Context, tx *sql.Tx, rc *domain.Recharge) error
}

type auditRecorder interface {
	Record(ctx context.Context, tx *sql.Tx, e *domain.AuditEntry) error
}

type redeemer interface {
	Redeem(ctx context.Context, token string, card *domain.CardAccount, amount int64) (*authz.Grant, error)
}

type notifier interface {
	Notify(ctx context.Context, cardID int64, kind domain.NotificationKind, payload any)
}

type txBeginner interface {
	BeginLocked(ctx context.Context) (*sql.Tx, error)
}

type Service struct {
	cards     cardRepo
	auths     authorizationRepo
	recharges rechargeRepo
	audit     auditRecorder
	authz     redeemer
	notifier  notifier
	db        txBeginner
	now       func() time.Time
}

func NewService(
	cards cardRepo,
	auths authorizationRepo,
	recharges rechargeRepo,
	audit auditRecorder,
	authz redeemer,
	notifier notifier,
	db txBeginner,
) *Service {
	return &Service{
		cards:     cards,
		auths:     auths,
		recharges: recharges,
		audit:     audit,
		authz:     authz,
		notifier:  notifier,
		db:        db,
		now:       time.Now,
	}
}
