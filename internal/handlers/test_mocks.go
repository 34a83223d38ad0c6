package handlers

import (
	"context"

	"github.com/riajames27/company-user-REST/internal/broker"
	"github.com/riajames27/company-user-REST/internal/geo"
	"github.com/riajames27/company-user-REST/internal/models"
)

// function-field mocks so each test wires only what it needs

type companyRepoMock struct {
	GetAllFn  func(ctx context.Context) ([]models.Company, error)
	GetByIDFn func(ctx context.Context, id int64) (*models.Company, error)
	CreateFn  func(ctx context.Context, name, address string, coords *geo.Coordinates) (*models.Company, error)
	UpdateFn  func(ctx context.Context, id int64, name, address string, coords *geo.Coordinates) error
	DeleteFn  func(ctx context.Context, id int64) error
}

func (m *companyRepoMock) GetAll(ctx context.Context) ([]models.Company, error) {
	if m.GetAllFn == nil {
		return nil, nil
	}
	return m.GetAllFn(ctx)
}

func (m *companyRepoMock) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	if m.GetByIDFn == nil {
		return nil, nil
	}
	return m.GetByIDFn(ctx, id)
}

func (m *companyRepoMock) Create(ctx context.Context, name, address string, coords *geo.Coordinates) (*models.Company, error) {
	if m.CreateFn == nil {
		return &models.Company{}, nil
	}
	return m.CreateFn(ctx, name, address, coords)
}

func (m *companyRepoMock) Update(ctx context.Context, id int64, name, address string, coords *geo.Coordinates) error {
	if m.UpdateFn == nil {
		return nil
	}
	return m.UpdateFn(ctx, id, name, address, coords)
}

func (m *companyRepoMock) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn == nil {
		return nil
	}
	return m.DeleteFn(ctx, id)
}

type userRepoMock struct {
	GetAllFn       func(ctx context.Context) ([]models.User, error)
	GetByIDFn      func(ctx context.Context, id int64) (*models.User, error)
	CreateFn       func(ctx context.Context, u *models.User) error
	UpdateFieldsFn func(ctx context.Context, id int64, cols []string, vals []any) error
	DeactivateFn   func(ctx context.Context, id int64) error
	DeleteFn       func(ctx context.Context, id int64) error
}

func (m *userRepoMock) GetAll(ctx context.Context) ([]models.User, error) {
	if m.GetAllFn == nil {
		return nil, nil
	}
	return m.GetAllFn(ctx)
}

func (m *userRepoMock) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if m.GetByIDFn == nil {
		return nil, nil
	}
	return m.GetByIDFn(ctx, id)
}

func (m *userRepoMock) Create(ctx context.Context, u *models.User) error {
	if m.CreateFn == nil {
		u.ID = 1
		return nil
	}
	return m.CreateFn(ctx, u)
}

func (m *userRepoMock) UpdateFields(ctx context.Context, id int64, cols []string, vals []any) error {
	if m.UpdateFieldsFn == nil {
		return nil
	}
	return m.UpdateFieldsFn(ctx, id, cols, vals)
}

func (m *userRepoMock) Deactivate(ctx context.Context, id int64) error {
	if m.DeactivateFn == nil {
		return nil
	}
	return m.DeactivateFn(ctx, id)
}

func (m *userRepoMock) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn == nil {
		return nil
	}
	return m.DeleteFn(ctx, id)
}

type pubMock struct {
	PublishEventFn func(ctx context.Context, ev broker.Event) error
	Events         []broker.Event
}

func (m *pubMock) PublishEvent(ctx context.Context, ev broker.Event) error {
	m.Events = append(m.Events, ev)
	if m.PublishEventFn == nil {
		return nil
	}
	return m.PublishEventFn(ctx, ev)
}

func (m *pubMock) Close() error { return nil }

type geoMock struct {
	LocateFn func(ctx context.Context, address string) (*geo.Coordinates, error)
}

func (m *geoMock) Locate(ctx context.Context, address string) (*geo.Coordinates, error) {
	if m.LocateFn == nil {
		return nil, nil
	}
	return m.LocateFn(ctx, address)
}
