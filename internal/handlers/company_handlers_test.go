package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/riajames27/company-user-REST/internal/geo"
	"github.com/riajames27/company-user-REST/internal/models"
	"github.com/riajames27/company-user-REST/internal/repository"
)

func f64(v float64) *float64 { return &v }

// 1) GET (list)

func TestCompanies_List(t *testing.T) {
	rm := &companyRepoMock{
		GetAllFn: func(_ context.Context) ([]models.Company, error) {
			return []models.Company{
				{ID: 1, Name: "Acme", Address: "1 Infinite Loop", Latitude: f64(37.33), Longitude: f64(-122.03)},
			}, nil
		},
	}
	h := &CompanyHandler{Repo: rm, Geo: &geoMock{}, Pub: &pubMock{}}

	req := httptest.NewRequest(http.MethodGet, "/api/companies", nil)
	rr := httptest.NewRecorder()
	h.Companies(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want=%d body=%s", rr.Code, http.StatusOK, rr.Body.String())
	}
	var got []models.Company
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v\nbody=%s", err, rr.Body.String())
	}
	if len(got) != 1 || got[0].Name != "Acme" {
		t.Fatalf("unexpected payload: %#v", got)
	}
}

func TestCompanies_List_RepoError(t *testing.T) {
	rm := &companyRepoMock{
		GetAllFn: func(_ context.Context) ([]models.Company, error) {
			return nil, errors.New("boom")
		},
	}
	h := &CompanyHandler{Repo: rm, Geo: &geoMock{}, Pub: &pubMock{}}

	req := httptest.NewRequest(http.MethodGet, "/api/companies", nil)
	rr := httptest.NewRecorder()
	h.Companies(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d want=%d", rr.Code, http.StatusInternalServerError)
	}
}

// 2) GET by id

func TestCompanyByID_Get_Found(t *testing.T) {
	rm := &companyRepoMock{
		GetByIDFn: func(_ context.Context, id int64) (*models.Company, error) {
			if id != 2 {
				t.Fatalf("id: got=%d want=2", id)
			}
			return &models.Company{ID: 2, Name: "Acme", Address: "1 Infinite Loop"}, nil
		},
	}
	h := &CompanyHandler{Repo: rm, Geo: &geoMock{}, Pub: &pubMock{}}

	req := httptest.NewRequest(http.MethodGet, "/api/companies/2", nil)
	rr := httptest.NewRecorder()
	h.CompanyByID(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want=%d body=%s", rr.Code, http.StatusOK, rr.Body.String())
	}
	var got models.Company
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v (body=%s)", err, rr.Body.String())
	}
	if got.ID != 2 || got.Name != "Acme" {
		t.Fatalf("unexpected payload: %#v", got)
	}
	if got.Latitude != nil || got.Longitude != nil {
		t.Fatalf("expected null coordinates: %#v", got)
	}
}

func TestCompanyByID_Get_NotFound(t *testing.T) {
	rm := &companyRepoMock{
		GetByIDFn: func(_ context.Context, _ int64) (*models.Company, error) {
			return nil, repository.ErrNotFound
		},
	}
	h := &CompanyHandler{Repo: rm, Geo: &geoMock{}, Pub: &pubMock{}}

	req := httptest.NewRequest(http.MethodGet, "/api/companies/99", nil)
	rr := httptest.NewRecorder()
	h.CompanyByID(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d want=%d body=%s", rr.Code, http.StatusNotFound, rr.Body.String())
	}
}

func TestCompanyByID_Get_NonNumericID(t *testing.T) {
	h := &CompanyHandler{Repo: &companyRepoMock{}, Geo: &geoMock{}, Pub: &pubMock{}}

	req := httptest.NewRequest(http.MethodGet, "/api/companies/abc", nil)
	rr := httptest.NewRecorder()
	h.CompanyByID(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d want=%d", rr.Code, http.StatusNotFound)
	}
}

// 3) POST (create)

func TestCompanies_Create_WithCoordinates(t *testing.T) {
	gm := &geoMock{
		LocateFn: func(_ context.Context, address string) (*geo.Coordinates, error) {
			if address != "1 Infinite Loop" {
				t.Fatalf("address: %q", address)
			}
			return &geo.Coordinates{Latitude: 37.33, Longitude: -122.03}, nil
		},
	}
	rm := &companyRepoMock{
		CreateFn: func(_ context.Context, name, address string, coords *geo.Coordinates) (*models.Company, error) {
			if coords == nil || coords.Latitude != 37.33 {
				t.Fatalf("coords did not reach repo: %#v", coords)
			}
			return &models.Company{ID: 1, Name: name, Address: address,
				Latitude: &coords.Latitude, Longitude: &coords.Longitude}, nil
		},
	}
	pm := &pubMock{}
	h := &CompanyHandler{Repo: rm, Geo: gm, Pub: pm}

	body := bytes.NewBufferString(`{"name":"Acme","address":"1 Infinite Loop"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/companies", body)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Companies(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status=%d want=%d body=%s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	var got models.Company
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.ID != 1 || got.Name != "Acme" || got.Address != "1 Infinite Loop" ||
		got.Latitude == nil || *got.Latitude != 37.33 ||
		got.Longitude == nil || *got.Longitude != -122.03 {
		t.Fatalf("unexpected payload: %s", rr.Body.String())
	}
	if len(pm.Events) != 1 || pm.Events[0].Action != "created" || pm.Events[0].Entity != "company" {
		t.Fatalf("events: %#v", pm.Events)
	}
}

// lookup returning no match must still create, with null coordinates
func TestCompanies_Create_GeocodeMiss(t *testing.T) {
	rm := &companyRepoMock{
		CreateFn: func(_ context.Context, name, address string, coords *geo.Coordinates) (*models.Company, error) {
			if coords != nil {
				t.Fatalf("want nil coords, got %#v", coords)
			}
			return &models.Company{ID: 3, Name: name, Address: address}, nil
		},
	}
	h := &CompanyHandler{Repo: rm, Geo: &geoMock{}, Pub: &pubMock{}}

	body := bytes.NewBufferString(`{"name":"Acme","address":"nowhere"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/companies", body)
	rr := httptest.NewRecorder()
	h.Companies(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status=%d want=%d body=%s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte(`"latitude":null`)) {
		t.Fatalf("want null latitude in body: %s", rr.Body.String())
	}
}

// lookup errors are downgraded, never abort the create
func TestCompanies_Create_GeocodeError(t *testing.T) {
	gm := &geoMock{
		LocateFn: func(_ context.Context, _ string) (*geo.Coordinates, error) {
			return nil, errors.New("connection refused")
		},
	}
	rm := &companyRepoMock{
		CreateFn: func(_ context.Context, name, address string, coords *geo.Coordinates) (*models.Company, error) {
			if coords != nil {
				t.Fatalf("want nil coords on lookup error")
			}
			return &models.Company{ID: 4, Name: name, Address: address}, nil
		},
	}
	h := &CompanyHandler{Repo: rm, Geo: gm, Pub: &pubMock{}}

	body := bytes.NewBufferString(`{"name":"Acme","address":"1 Infinite Loop"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/companies", body)
	rr := httptest.NewRecorder()
	h.Companies(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status=%d want=%d body=%s", rr.Code, http.StatusCreated, rr.Body.String())
	}
}

func TestCompanies_Create_MissingFields(t *testing.T) {
	h := &CompanyHandler{Repo: &companyRepoMock{}, Geo: &geoMock{}, Pub: &pubMock{}}

	for _, body := range []string{`{"name":"Acme"}`, `{"address":"1 Infinite Loop"}`, `{"name":"","address":""}`, `{}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/companies", bytes.NewBufferString(body))
		rr := httptest.NewRecorder()
		h.Companies(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("body=%s status=%d want=%d", body, rr.Code, http.StatusBadRequest)
		}
	}
}

// 4) PUT (update)

func TestCompanyByID_Put_AlwaysReGeocodes(t *testing.T) {
	calls := 0
	gm := &geoMock{
		LocateFn: func(_ context.Context, _ string) (*geo.Coordinates, error) {
			calls++
			return &geo.Coordinates{Latitude: 51.5, Longitude: -0.12}, nil
		},
	}
	rm := &companyRepoMock{
		UpdateFn: func(_ context.Context, id int64, name, address string, coords *geo.Coordinates) error {
			if id != 7 || name != "Acme" || address != "10 Downing St" {
				t.Fatalf("args: id=%d name=%q address=%q", id, name, address)
			}
			if coords == nil || coords.Latitude != 51.5 {
				t.Fatalf("coords: %#v", coords)
			}
			return nil
		},
	}
	h := &CompanyHandler{Repo: rm, Geo: gm, Pub: &pubMock{}}

	body := bytes.NewBufferString(`{"name":"Acme","address":"10 Downing St"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/companies/7", body)
	rr := httptest.NewRecorder()
	h.CompanyByID(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want=%d body=%s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if calls != 1 {
		t.Fatalf("geocode calls=%d want=1", calls)
	}

	var got struct {
		Message   string   `json:"message"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.Message != "Company updated" || got.Latitude == nil || *got.Latitude != 51.5 {
		t.Fatalf("unexpected payload: %s", rr.Body.String())
	}
}

func TestCompanyByID_Put_MissingFields(t *testing.T) {
	h := &CompanyHandler{Repo: &companyRepoMock{}, Geo: &geoMock{}, Pub: &pubMock{}}

	body := bytes.NewBufferString(`{"name":"Acme"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/companies/7", body)
	rr := httptest.NewRecorder()
	h.CompanyByID(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want=%d", rr.Code, http.StatusBadRequest)
	}
}

// 5) DELETE

func TestCompanyByID_Delete_OK(t *testing.T) {
	pm := &pubMock{}
	h := &CompanyHandler{Repo: &companyRepoMock{}, Geo: &geoMock{}, Pub: pm}

	req := httptest.NewRequest(http.MethodDelete, "/api/companies/2", nil)
	rr := httptest.NewRecorder()
	h.CompanyByID(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want=%d body=%s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte("Company deleted")) {
		t.Fatalf("body: %s", rr.Body.String())
	}
	if len(pm.Events) != 1 || pm.Events[0].Action != "deleted" {
		t.Fatalf("events: %#v", pm.Events)
	}
}

// FK-blocked deletes surface the distinct referenced-by-users condition
func TestCompanyByID_Delete_Referenced(t *testing.T) {
	rm := &companyRepoMock{
		DeleteFn: func(_ context.Context, _ int64) error {
			return repository.ErrCompanyReferenced
		},
	}
	pm := &pubMock{}
	h := &CompanyHandler{Repo: rm, Geo: &geoMock{}, Pub: pm}

	req := httptest.NewRequest(http.MethodDelete, "/api/companies/2", nil)
	rr := httptest.NewRecorder()
	h.CompanyByID(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d want=%d", rr.Code, http.StatusInternalServerError)
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte("referenced by users")) {
		t.Fatalf("want distinct message, got: %s", rr.Body.String())
	}
	if len(pm.Events) != 0 {
		t.Fatalf("no event expected on failed delete: %#v", pm.Events)
	}
}

func TestCompanies_MethodNotAllowed(t *testing.T) {
	h := &CompanyHandler{Repo: &companyRepoMock{}, Geo: &geoMock{}, Pub: &pubMock{}}
	req := httptest.NewRequest(http.MethodDelete, "/api/companies", nil)
	rr := httptest.NewRecorder()
	h.Companies(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d want=%d", rr.Code, http.StatusMethodNotAllowed)
	}
}
