package handlers

import "errors"

func validateCompanyDTO(d CompanyUpsertDTO) error {
	if d.Name == "" || d.Address == "" {
		return errors.New("Name and address are required")
	}
	return nil
}

func validateUserCreateDTO(d UserCreateDTO) error {
	if d.FirstName == "" || d.LastName == "" || d.Email == "" {
		return errors.New("first_name, last_name and email are required")
	}
	return nil
}
