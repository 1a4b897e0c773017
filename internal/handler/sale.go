package handler

import (
	"context"
	"net/http"

	"github.com/josh-kwaku/cafeteria-ledger/internal/logging"
	"github.com/josh-kwaku/cafeteria-ledger/internal/sale"
)

type checkoutService interface {
	Checkout(ctx context.Context, req sale.CheckoutRequest) (*sale.Receipt, error)
}

type SaleHandler struct {
	sales checkoutService
}

func NewSaleHandler(sales checkoutService) *SaleHandler {
	return &SaleHandler{sales: sales}
}

type paymentLine struct {
	InstrumentID int64 `json:"instrument_id" validate:"gt=0"`
	Amount       int64 `json:"amount" validate:"gt=0,max=100000000000"`
}

type checkoutRequest struct {
	CardID     *int64        `json:"card_id,omitempty" validate:"omitempty,gt=0"`
	CardAmount int64         `json:"card_amount" validate:"gte=0,max=100000000000"`
	Payments   []paymentLine `json:"payments" validate:"dive"`
	AuthToken  string        `json:"auth_token,omitempty" validate:"omitempty,uuid"`
}

type paymentDTO struct {
	PaymentID        int64  `json:"payment_id"`
	InstrumentID     int64  `json:"instrument_id"`
	Amount           int64  `json:"amount"`
	Commission       int64  `json:"commission"`
	CommissionRecord *int64 `json:"commission_record_id"`
	MissingRate      bool   `json:"missing_rate"`
}

type receiptDTO struct {
	SaleID          int64        `json:"sale_id"`
	TotalAmount     int64        `json:"total_amount"`
	CardAmount      int64        `json:"card_amount"`
	CardBalance     *int64       `json:"card_balance"`
	AuthorizationID *int64       `json:"authorization_id"`
	Payments        []paymentDTO `json:"payments"`
}

func (h *SaleHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	operator, appErr := operatorID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req checkoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lines := make([]sale.PaymentLine, len(req.Payments))
	for i, p := range req.Payments {
		lines[i] = sale.PaymentLine{InstrumentID: p.InstrumentID, Amount: p.Amount}
	}

	receipt, err := h.sales.Checkout(r.Context(), sale.CheckoutRequest{
		CardID:     req.CardID,
		CardAmount: req.CardAmount,
		Payments:   lines,
		AuthToken:  req.AuthToken,
		OperatorID: operator,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("checkout rejected", "error", err)
		RespondDomainError(w, err)
		return
	}

	dto := receiptDTO{
		SaleID:      receipt.Sale.ID,
		TotalAmount: receipt.Sale.TotalAmount,
		CardAmount:  receipt.Sale.CardAmount,
		Payments:    make([]paymentDTO, len(receipt.Payments)),
	}
	if receipt.Debit != nil {
		dto.CardBalance = &receipt.Debit.NewBalance
		dto.AuthorizationID = receipt.Debit.AuthorizationID
	}
	for i, p := range receipt.Payments {
		dto.Payments[i] = paymentDTO{
			PaymentID:        p.Payment.ID,
			InstrumentID:     p.Payment.InstrumentID,
			Amount:           p.Payment.Amount,
			Commission:       p.Commission.Amount,
			CommissionRecord: p.RecordID,
			MissingRate:      p.Commission.MissingRate,
		}
	}
	RespondSuccess(w, http.StatusCreated, dto)
}
