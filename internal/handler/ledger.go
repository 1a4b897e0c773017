package handler

import (
	"context"
	"net/http"

	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
	"github.com/josh-kwaku/cafeteria-ledger/internal/ledger"
	"github.com/josh-kwaku/cafeteria-ledger/internal/logging"
)

type ledgerService interface {
	Debit(ctx context.Context, req ledger.DebitRequest) (*ledger.DebitResult, error)
	Credit(ctx context.Context, cardID, amount, actorID int64) (*domain.RegularizationSummary, error)
}

type LedgerHandler struct {
	ledger ledgerService
}

func NewLedgerHandler(ledger ledgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

type debitRequest struct {
	Amount    int64  `json:"amount" validate:"gt=0,max=100000000000"`
	SaleID    *int64 `json:"sale_id,omitempty" validate:"omitempty,gt=0"`
	AuthToken string `json:"auth_token,omitempty" validate:"omitempty,uuid"`
}

type debitDTO struct {
	CardID          int64  `json:"card_id"`
	PriorBalance    int64  `json:"prior_balance"`
	NewBalance      int64  `json:"new_balance"`
	AuthorizationID *int64 `json:"authorization_id"`
}

type rechargeRequest struct {
	Amount int64 `json:"amount" validate:"gt=0,max=100000000000"`
}

type regularizationDTO struct {
	CardID               int64   `json:"card_id"`
	RechargeID           *int64  `json:"recharge_id"`
	HadDebt              bool    `json:"had_debt"`
	DebtBefore           int64   `json:"debt_before"`
	AmountAppliedToDebt  int64   `json:"amount_applied_to_debt"`
	FinalBalance         int64   `json:"final_balance"`
	FullyRegularized     bool    `json:"fully_regularized"`
	ClosedAuthorizations []int64 `json:"closed_authorizations"`
}

func (h *LedgerHandler) Debit(w http.ResponseWriter, r *http.Request) {
	cardID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	operator, appErr := operatorID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req debitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx := logging.WithAttrs(r.Context(), "card_id", cardID, "operator_id", operator)

	res, err := h.ledger.Debit(ctx, ledger.DebitRequest{
		CardID:     cardID,
		Amount:     req.Amount,
		SaleID:     req.SaleID,
		AuthToken:  req.AuthToken,
		OperatorID: operator,
	})
	if err != nil {
		logging.FromContext(ctx).Warn("debit rejected", "amount", req.Amount, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, debitDTO{
		CardID:          res.CardID,
		PriorBalance:    res.PriorBalance,
		NewBalance:      res.NewBalance,
		AuthorizationID: res.AuthorizationID,
	})
}

func (h *LedgerHandler) Recharge(w http.ResponseWriter, r *http.Request) {
	cardID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	operator, appErr := operatorID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req rechargeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx := logging.WithAttrs(r.Context(), "card_id", cardID, "operator_id", operator)

	sum, err := h.ledger.Credit(ctx, cardID, req.Amount, operator)
	if err != nil {
		logging.FromContext(ctx).Warn("recharge rejected", "amount", req.Amount, "error", err)
		RespondDomainError(w, err)
		return
	}

	closed := sum.ClosedAuthorizations
	if closed == nil {
		closed = []int64{}
	}
	RespondSuccess(w, http.StatusCreated, regularizationDTO{
		CardID:               sum.CardID,
		RechargeID:           sum.RechargeID,
		HadDebt:              sum.HadDebt,
		DebtBefore:           sum.DebtBefore,
		AmountAppliedToDebt:  sum.AmountAppliedToDebt,
		FinalBalance:         sum.FinalBalance,
		FullyRegularized:     sum.FullyRegularized,
		ClosedAuthorizations: closed,
	})
}
