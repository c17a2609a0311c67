package handler

import (
	"strings"

	"triex/internal/account/service"
	id "triex/pkg/domain"
	dErrors "triex/pkg/domain-errors"
)

// AccountRequest creates a login.
type AccountRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`

	parsedRole id.Role
}

func (r *AccountRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "email is required")
	}
	if strings.TrimSpace(r.FullName) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "full_name is required")
	}
	role, err := id.ParseRole(r.Role)
	if err != nil {
		return err
	}
	r.parsedRole = role
	return nil
}

func (r *AccountRequest) ToInput() service.Input {
	return service.Input{
		Email:    r.Email,
		FullName: r.FullName,
		Role:     r.parsedRole,
	}
}

// UpdateAccountRequest rewrites the name and role. The email is the login
// identifier and stays immutable.
type UpdateAccountRequest struct {
	FullName string `json:"full_name"`
	Role     string `json:"role"`

	parsedRole id.Role
}

func (r *UpdateAccountRequest) Validate() error {
	if strings.TrimSpace(r.FullName) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "full_name is required")
	}
	role, err := id.ParseRole(r.Role)
	if err != nil {
		return err
	}
	r.parsedRole = role
	return nil
}

func (r *UpdateAccountRequest) ParsedRole() id.Role { return r.parsedRole }
