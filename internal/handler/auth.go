package handler

import (
	"errors"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/josh-kwaku/cafeteria-ledger/internal/auth"
	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
)

type AuthHandler struct {
	employees employeeReader
	jwtSecret string
	jwtExpiry time.Duration
}

func NewAuthHandler(employees employeeReader, jwtSecret string, jwtExpiry time.Duration) *AuthHandler {
	return &AuthHandler{
		employees: employees,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

type loginRequest struct {
	EmployeeID int64  `json:"employee_id" validate:"gt=0"`
	PIN        string `json:"pin" validate:"required"`
}

type loginResponse struct {
	Token    string      `json:"token"`
	Employee employeeDTO `json:"employee"`
}

type employeeDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	RoleTier int    `json:"role_tier"`
	Role     string `json:"role"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	emp, err := h.employees.GetByID(r.Context(), req.EmployeeID)
	if err != nil {
		if errors.Is(err, domain.ErrEmployeeNotFound) {
			RespondAppError(w, ErrInvalidCredentials, nil)
			return
		}
		RespondDomainError(w, err)
		return
	}

	if !emp.Active {
		RespondAppError(w, ErrInvalidCredentials, nil)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(emp.PinHash), []byte(req.PIN)); err != nil {
		RespondAppError(w, ErrInvalidCredentials, nil)
		return
	}

	token, err := auth.GenerateToken(emp.ID, int(emp.RoleTier), h.jwtSecret, h.jwtExpiry)
	if err != nil {
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	RespondSuccess(w, http.StatusOK, loginResponse{
		Token: token,
		Employee: employeeDTO{
			ID:       emp.ID,
			Name:     emp.Name,
			RoleTier: int(emp.RoleTier),
			Role:     emp.RoleTier.String(),
		},
	})
}
