package handler

import (
	"context"
	"net/http"

	"github.com/josh-kwaku/cafeteria-ledger/internal/commission"
	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
)

type commissionCalculator interface {
	Compute(ctx context.Context, instrumentID, gross int64) (*commission.Quote, error)
}

type CommissionHandler struct {
	calculator commissionCalculator
}

func NewCommissionHandler(calculator commissionCalculator) *CommissionHandler {
	return &CommissionHandler{calculator: calculator}
}

type quoteDTO struct {
	InstrumentID int64  `json:"instrument_id"`
	Gross        int64  `json:"gross"`
	Commission   int64  `json:"commission"`
	RateID       *int64 `json:"rate_id"`
	Percentage   string `json:"percentage"`
	FixedAmount  int64  `json:"fixed_amount"`
	Bearing      bool   `json:"commission_bearing"`
	MissingRate  bool   `json:"missing_rate"`
}

func (h *CommissionHandler) Quote(w http.ResponseWriter, r *http.Request) {
	instrumentID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	gross, ok := queryInt(r, "gross", -1)
	if !ok || gross < 0 || int64(gross) > domain.MaxAmount {
		RespondValidationError(w, []FieldError{{Field: "gross", Message: "must be an integer between 0 and 100000000000"}})
		return
	}

	q, err := h.calculator.Compute(r.Context(), instrumentID, int64(gross))
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, quoteDTO{
		InstrumentID: q.InstrumentID,
		Gross:        q.Gross,
		Commission:   q.Amount,
		RateID:       q.RateID,
		Percentage:   q.Percentage.String(),
		FixedAmount:  q.FixedAmount,
		Bearing:      q.Bearing,
		MissingRate:  q.MissingRate,
	})
}
