// Package client holds the UI-facing application state and its
// transitions. The state is mutated only through the named methods
// below; rendering is left to whatever front end consumes State.
package client

import (
	"errors"
	"math"
	"strings"

	"github.com/riajames27/company-user-REST/internal/models"
)

type State struct {
	Companies        []models.Company
	Selected         *models.Company
	Users            []models.User
	PendingMigration *int64 // user id awaiting a target company
	Err              string // last failure message, overwritten each action
}

type App struct {
	api   *API
	state State
}

func NewApp(api *API) *App {
	return &App{api: api}
}

func (a *App) State() State { return a.state }

func (a *App) LoadCompanies() {
	list, err := a.api.ListCompanies()
	if err != nil {
		a.state.Err = "Failed to load companies."
		return
	}
	a.state.Companies = list
	a.state.Err = ""
}

// SelectCompany loads the roster for one company. The API has no
// server-side filter, so the full user list is fetched and filtered
// here by company id.
func (a *App) SelectCompany(id int64) {
	var sel *models.Company
	for i := range a.state.Companies {
		if a.state.Companies[i].ID == id {
			sel = &a.state.Companies[i]
			break
		}
	}
	if sel == nil {
		a.state.Err = "Unknown company."
		return
	}
	a.state.Selected = sel
	a.refreshRoster()
}

func (a *App) ClearSelection() {
	a.state.Selected = nil
	a.state.Users = nil
	a.state.PendingMigration = nil
}

func (a *App) refreshRoster() {
	if a.state.Selected == nil {
		a.state.Users = nil
		return
	}
	all, err := a.api.ListUsers()
	if err != nil {
		a.state.Users = []models.User{}
		return
	}
	filtered := []models.User{}
	for _, u := range all {
		if u.CompanyID != nil && *u.CompanyID == a.state.Selected.ID {
			filtered = append(filtered, u)
		}
	}
	a.state.Users = filtered
}

// CreateCompany appends the created record locally; no re-fetch.
func (a *App) CreateCompany(name, address string) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(address) == "" {
		a.state.Err = "Please provide company name and address."
		return
	}
	c, err := a.api.CreateCompany(name, address)
	if err != nil {
		a.state.Err = "Failed to create company."
		return
	}
	a.state.Companies = append(a.state.Companies, *c)
	a.state.Err = ""
}

func (a *App) DeleteCompany(id int64) {
	if err := a.api.DeleteCompany(id); err != nil {
		if errors.Is(err, ErrCompanyHasUsers) {
			a.state.Err = "Failed to delete company. Ensure it has no users associated."
		} else {
			a.state.Err = "Failed to delete company."
		}
		return
	}
	kept := a.state.Companies[:0]
	for _, c := range a.state.Companies {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	a.state.Companies = kept
	if a.state.Selected != nil && a.state.Selected.ID == id {
		a.ClearSelection()
	}
	a.state.Err = ""
}

// CreateUser places the new user under the selected company and then
// refreshes the roster by re-fetching; no optimistic append.
func (a *App) CreateUser(firstName, lastName, email, designation string, active bool) {
	if a.state.Selected == nil {
		a.state.Err = "Select a company first."
		return
	}
	if strings.TrimSpace(firstName) == "" || strings.TrimSpace(lastName) == "" || strings.TrimSpace(email) == "" {
		a.state.Err = "Please provide first name, last name, and email."
		return
	}
	err := a.api.CreateUser(NewUser{
		FirstName:   firstName,
		LastName:    lastName,
		Email:       email,
		Designation: designation,
		Active:      active,
		CompanyID:   a.state.Selected.ID,
	})
	if err != nil {
		a.state.Err = "Failed to create user."
		return
	}
	a.refreshRoster()
	a.state.Err = ""
}

func (a *App) BeginMigration(userID int64) {
	a.state.PendingMigration = &userID
}

func (a *App) CancelMigration() {
	a.state.PendingMigration = nil
}

func (a *App) ConfirmMigration(targetCompanyID int64) {
	if a.state.PendingMigration == nil || targetCompanyID == 0 {
		a.state.Err = "Select user and target company for migration."
		return
	}
	if err := a.api.MigrateUser(*a.state.PendingMigration, targetCompanyID); err != nil {
		a.state.Err = "Failed to migrate user."
		return
	}
	a.state.PendingMigration = nil
	a.refreshRoster()
	a.state.Err = ""
}

func (a *App) DeleteUser(id int64) {
	if err := a.api.DeleteUser(id); err != nil {
		a.state.Err = "Failed to delete user."
		return
	}
	kept := a.state.Users[:0]
	for _, u := range a.state.Users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	a.state.Users = kept
	// a pending migration for a deleted user is no longer meaningful
	if a.state.PendingMigration != nil && *a.state.PendingMigration == id {
		a.state.PendingMigration = nil
	}
	a.state.Err = ""
}

func (a *App) DeactivateUser(id int64) {
	if err := a.api.DeactivateUser(id); err != nil {
		a.state.Err = "Failed to deactivate user."
		return
	}
	a.refreshRoster()
	a.state.Err = ""
}

// CanRenderMap reports whether a company's coordinates are fit for a
// map: both present, finite, latitude in [-90,90], longitude in
// [-180,180]. Anything else renders as "coordinates unavailable".
func CanRenderMap(c models.Company) bool {
	if c.Latitude == nil || c.Longitude == nil {
		return false
	}
	lat, lon := *c.Latitude, *c.Longitude
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
