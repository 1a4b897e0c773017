package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
	"github.com/josh-kwaku/cafeteria-ledger/internal/logging"
)

type cardReader interface {
	GetByID(ctx context.Context, id int64) (*domain.CardAccount, error)
}

type authorizationLister interface {
	ListByCard(ctx context.Context, cardID int64, openOnly bool) ([]domain.NegativeBalanceAuthorization, error)
}

type auditLister interface {
	ListByCard(ctx context.Context, cardID int64, limit, offset int) ([]domain.AuditEntry, error)
}

type CardHandler struct {
	cards cardReader
	auths authorizationLister
	audit auditLister
}

func NewCardHandler(cards cardReader, auths authorizationLister, audit auditLister) *CardHandler {
	return &CardHandler{cards: cards, auths: auths, audit: audit}
}

type cardDTO struct {
	ID                  int64     `json:"id"`
	HolderName          string    `json:"holder_name"`
	Balance             int64     `json:"balance"`
	CreditLimit         int64     `json:"credit_limit"`
	AllowsNegative      bool      `json:"allows_negative"`
	State               string    `json:"state"`
	LowBalanceThreshold int64     `json:"low_balance_threshold"`
	Debt                int64     `json:"debt"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func toCardDTO(c *domain.CardAccount) cardDTO {
	return cardDTO{
		ID:                  c.ID,
		HolderName:          c.HolderName,
		Balance:             c.Balance,
		CreditLimit:         c.CreditLimit,
		AllowsNegative:      c.AllowsNegative,
		State:               string(c.State),
		LowBalanceThreshold: c.LowBalanceThreshold,
		Debt:                c.Debt(),
		UpdatedAt:           c.UpdatedAt,
	}
}

type authorizationDTO struct {
	ID                       int64      `json:"id"`
	SaleID                   *int64     `json:"sale_id"`
	AuthorizingEmployeeID    int64      `json:"authorizing_employee_id"`
	PriorBalance             int64      `json:"prior_balance"`
	DebitAmount              int64      `json:"debit_amount"`
	ResultingBalance         int64      `json:"resulting_balance"`
	Reason                   string     `json:"reason"`
	Regularized              bool       `json:"regularized"`
	RegularizationRechargeID *int64     `json:"regularization_recharge_id"`
	CreatedAt                time.Time  `json:"created_at"`
	RegularizedAt            *time.Time `json:"regularized_at"`
}

type auditDTO struct {
	ID            int64     `json:"id"`
	Operation     string    `json:"operation"`
	EntityType    string    `json:"entity_type"`
	EntityID      int64     `json:"entity_id"`
	BalanceBefore int64     `json:"balance_before"`
	BalanceAfter  int64     `json:"balance_after"`
	ActorID       int64     `json:"actor_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	card, err := h.cards.GetByID(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toCardDTO(card))
}

func (h *CardHandler) ListAuthorizations(w http.ResponseWriter, r *http.Request) {
	id, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	openOnly := r.URL.Query().Get("open") == "true"

	list, err := h.auths.ListByCard(r.Context(), id, openOnly)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list authorizations", "card_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]authorizationDTO, len(list))
	for i, a := range list {
		dtos[i] = authorizationDTO{
			ID:                       a.ID,
			SaleID:                   a.SaleID,
			AuthorizingEmployeeID:    a.AuthorizingEmployeeID,
			PriorBalance:             a.PriorBalance,
			DebitAmount:              a.DebitAmount,
			ResultingBalance:         a.ResultingBalance,
			Reason:                   a.Reason,
			Regularized:              a.Regularized,
			RegularizationRechargeID: a.RegularizationRechargeID,
			CreatedAt:                a.CreatedAt,
			RegularizedAt:            a.RegularizedAt,
		}
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *CardHandler) Audit(w http.ResponseWriter, r *http.Request) {
	id, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	limit, ok := queryInt(r, "limit", 50)
	if !ok {
		RespondValidationError(w, []FieldError{{Field: "limit", Message: "must be an integer"}})
		return
	}
	offset, ok := queryInt(r, "offset", 0)
	if !ok {
		RespondValidationError(w, []FieldError{{Field: "offset", Message: "must be an integer"}})
		return
	}

	entries, err := h.audit.ListByCard(r.Context(), id, limit, offset)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list audit entries", "card_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]auditDTO, len(entries))
	for i, e := range entries {
		dtos[i] = auditDTO{
			ID:            e.ID,
			Operation:     string(e.Operation),
			EntityType:    string(e.EntityType),
			EntityID:      e.EntityID,
			BalanceBefore: e.BalanceBefore,
			BalanceAfter:  e.BalanceAfter,
			ActorID:       e.ActorID,
			Detail:        e.Detail,
			CreatedAt:     e.CreatedAt,
		}
	}
	RespondSuccess(w, http.StatusOK, dtos)
}
