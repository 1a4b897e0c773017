package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
)

const TestPIN = "4321"

func SeedEmployee(t *testing.T, db *sql.DB, name string, tier domain.RoleTier, active bool) *domain.Employee {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPIN), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash pin: %v", err)
	}
	e := &domain.Employee{Name: name, RoleTier: tier, Active: active, PinHash: string(hash)}
	err = db.QueryRow(
		`INSERT INTO employees (name, role_tier, active, pin_hash) VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		e.Name, e.RoleTier, e.Active, e.PinHash,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		t.Fatalf("seed employee %s: %v", name, err)
	}
	return e
}

type CardOpts struct {
	Balance             int64
	CreditLimit         int64
	AllowsNegative      bool
	Blocked             bool
	LowBalanceThreshold int64
}

func SeedCard(t *testing.T, db *sql.DB, holder string, opts CardOpts) *domain.CardAccount {
	t.Helper()

	state := domain.CardStateActive
	if opts.Blocked {
		state = domain.CardStateBlocked
	}
	c := &domain.CardAccount{
		HolderName:          holder,
		Balance:             opts.Balance,
		CreditLimit:         opts.CreditLimit,
		AllowsNegative:      opts.AllowsNegative,
		State:               state,
		LowBalanceThreshold: opts.LowBalanceThreshold,
	}
	err := db.QueryRow(
		`INSERT INTO card_accounts (holder_name, balance, credit_limit, allows_negative, state, low_balance_threshold)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, version, created_at, updated_at`,
		c.HolderName, c.Balance, c.CreditLimit, c.AllowsNegative, c.State, c.LowBalanceThreshold,
	).Scan(&c.ID, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		t.Fatalf("seed card %s: %v", holder, err)
	}
	return c
}

func SeedInstrument(t *testing.T, db *sql.DB, code string, bearing bool) *domain.PaymentInstrument {
	t.Helper()

	in := &domain.PaymentInstrument{Code: code, Name: code, CommissionBearing: bearing, Active: true}
	err := db.QueryRow(
		`INSERT INTO payment_instruments (code, name, commission_bearing) VALUES ($1, $2, $3) RETURNING id`,
		in.Code, in.Name, in.CommissionBearing,
	).Scan(&in.ID)
	if err != nil {
		t.Fatalf("seed instrument %s: %v", code, err)
	}
	return in
}

func SeedRate(t *testing.T, db *sql.DB, instrumentID int64, pct string, from time.Time, to *time.Time) *domain.CommissionRate {
	t.Helper()

	r := &domain.CommissionRate{
		InstrumentID:  instrumentID,
		Percentage:    decimal.RequireFromString(pct),
		EffectiveFrom: from,
		EffectiveTo:   to,
	}
	err := db.QueryRow(
		`INSERT INTO commission_rates (payment_instrument_id, percentage, fixed_amount, effective_from, effective_to)
		 VALUES ($1, $2, 0, $3, $4) RETURNING id`,
		r.InstrumentID, r.Percentage, r.EffectiveFrom, r.EffectiveTo,
	).Scan(&r.ID)
	if err != nil {
		t.Fatalf("seed rate for instrument %d: %v", instrumentID, err)
	}
	return r
}

func GetCardBalance(t *testing.T, db *sql.DB, cardID int64) int64 {
	t.Helper()

	var balance int64
	err := db.QueryRow(`SELECT balance FROM card_accounts WHERE id = $1`, cardID).Scan(&balance)
	if err != nil {
		t.Fatalf("get card balance %d: %v", cardID, err)
	}
	return balance
}

func CountAuthorizations(t *testing.T, db *sql.DB, cardID int64, openOnly bool) int {
	t.Helper()

	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM negative_balance_authorizations WHERE card_id = $1 AND (NOT $2 OR NOT regularized)`,
		cardID, openOnly,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count authorizations for card %d: %v", cardID, err)
	}
	return count
}

func CountAuditEntries(t *testing.T, db *sql.DB, cardID int64, op domain.AuditOperation) int {
	t.Helper()

	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM balance_audit_log WHERE card_id = $1 AND operation = $2`, cardID, op,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count audit entries for card %d: %v", cardID, err)
	}
	return count
}

func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var count int
	// table names come from test code only
	if err := db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&count); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return count
}

// AssertCardInvariants checks the negative-balance invariants for one card.
func AssertCardInvariants(t *testing.T, db *sql.DB, cardID int64) {
	t.Helper()

	var balance, limit int64
	var allows bool
	err := db.QueryRow(
		`SELECT balance, credit_limit, allows_negative FROM card_accounts WHERE id = $1`, cardID,
	).Scan(&balance, &limit, &allows)
	if err != nil {
		t.Fatalf("load card %d: %v", cardID, err)
	}

	open := CountAuthorizations(t, db, cardID, true)
	if balance < 0 {
		if !allows || -balance > limit {
			t.Errorf("card %d: balance %d violates allows_negative=%v limit=%d", cardID, balance, allows, limit)
		}
		if open == 0 {
			t.Errorf("card %d: negative balance %d with no open authorization", cardID, balance)
		}
	} else if open != 0 {
		t.Errorf("card %d: balance %d but %d open authorizations", cardID, balance, open)
	}
}
