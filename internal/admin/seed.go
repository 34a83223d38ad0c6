package admin

import (
	"context"
	_ "embed"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/riajames27/company-user-REST/internal/geo"
	"github.com/riajames27/company-user-REST/internal/repository"
)

//go:embed seeds/companies.json
var companiesJSON []byte

type seedItem struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// SeedCompanies inserts the embedded companies, resolving coordinates
// through the same lookup the API uses. Blank entries are skipped;
// geocoding failures leave the coordinates null, as on the API path.
func SeedCompanies(ctx context.Context, repo *repository.CompanyRepository, loc geo.Locator, log *slog.Logger) error {
	var items []seedItem
	if err := json.Unmarshal(companiesJSON, &items); err != nil {
		return err
	}

	for _, s := range items {
		if s.Name == "" || s.Address == "" {
			log.Warn("seed_skip_blank_entry", "name", s.Name)
			continue
		}

		ictx, cancel := context.WithTimeout(ctx, 10*time.Second)
		coords, err := loc.Locate(ictx, s.Address)
		if err != nil {
			log.Warn("seed_geocode_error", "address", s.Address, "err", err)
			coords = nil
		}

		c, err := repo.Create(ictx, s.Name, s.Address, coords)
		cancel()
		if err != nil {
			return err
		}
		log.Info("seed_company_created", "id", c.ID, "name", c.Name)
	}

	log.Info("seed_companies_done", "count", len(items))
	return nil
}
