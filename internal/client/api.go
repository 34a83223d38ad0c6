package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/riajames27/company-user-REST/internal/models"
)

// ErrCompanyHasUsers is the delete-blocked-by-FK condition, recognized
// from the server's distinct error string.
var ErrCompanyHasUsers = errors.New("company is referenced by users")

// API is the HTTP consumer of the two resource handlers.
type API struct {
	BaseURL string
	HTTP    *http.Client
}

func NewAPI(baseURL string) *API {
	return &API{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// errBody is how the server reports failures; some routes use "message",
// others "error".
type errBody struct {
	Message string `json:"message"`
	Err     string `json:"error"`
}

func (a *API) do(method, path string, body, out any) error {
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, a.BaseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		msg := eb.Err
		if msg == "" {
			msg = eb.Message
		}
		return &apiError{Status: resp.StatusCode, Message: msg}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (a *API) ListCompanies() ([]models.Company, error) {
	var list []models.Company
	if err := a.do(http.MethodGet, "/api/companies", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (a *API) CreateCompany(name, address string) (*models.Company, error) {
	var c models.Company
	in := map[string]string{"name": name, "address": address}
	if err := a.do(http.MethodPost, "/api/companies", in, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (a *API) DeleteCompany(id int64) error {
	err := a.do(http.MethodDelete, fmt.Sprintf("/api/companies/%d", id), nil, nil)
	var ae *apiError
	if errors.As(err, &ae) && bytes.Contains([]byte(ae.Message), []byte("referenced by users")) {
		return ErrCompanyHasUsers
	}
	return err
}

func (a *API) ListUsers() ([]models.User, error) {
	var list []models.User
	if err := a.do(http.MethodGet, "/api/users", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

type NewUser struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Designation string `json:"designation,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Active      bool   `json:"active"`
	CompanyID   int64  `json:"company_id"`
}

func (a *API) CreateUser(u NewUser) error {
	return a.do(http.MethodPost, "/api/users", u, nil)
}

// MigrateUser changes only company_id, through the standard partial
// update path.
func (a *API) MigrateUser(userID, companyID int64) error {
	in := map[string]int64{"company_id": companyID}
	return a.do(http.MethodPut, fmt.Sprintf("/api/users/%d", userID), in, nil)
}

func (a *API) DeactivateUser(id int64) error {
	return a.do(http.MethodPatch, fmt.Sprintf("/api/users/%d/deactivate", id), nil, nil)
}

func (a *API) DeleteUser(id int64) error {
	return a.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", id), nil, nil)
}
