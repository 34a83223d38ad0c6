package models

// Company row. Latitude/Longitude are pointers because geocoding may
// resolve nothing; nil serializes as JSON null.
type Company struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type User struct {
	ID          int64   `json:"id"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Email       string  `json:"email"`
	Designation *string `json:"designation"`
	DateOfBirth *string `json:"date_of_birth"`
	Active      bool    `json:"active"`
	CompanyID   *int64  `json:"company_id"`
}
