package domain

import "time"

type Sale struct {
	ID          int64
	CardID      *int64
	CardAmount  int64
	TotalAmount int64
	CreatedBy   int64
	CreatedAt   time.Time
}

type SalePayment struct {
	ID           int64
	SaleID       int64
	InstrumentID int64
	Amount       int64
	CreatedAt    time.Time
}
