package handlers

import "encoding/json"

// only the fields of the contract; coordinates are never client-supplied
type CompanyUpsertDTO struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Active stays raw so the handler can apply the boolean coercion rules;
// pointers distinguish "omitted" from "provided".
type UserCreateDTO struct {
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	Email       string          `json:"email"`
	Designation *string         `json:"designation"`
	DateOfBirth *string         `json:"date_of_birth"`
	Active      json.RawMessage `json:"active"`
	CompanyID   *int64          `json:"company_id"`
}
