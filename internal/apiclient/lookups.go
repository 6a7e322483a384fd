// lookups.go — справочники факультетов и кафедр (публичные endpoints).
package apiclient

import (
	"context"
	"net/http"

	"github.com/imilos/researchers-console/internal/domain/model"
)

// ListFaculties запрашивает все факультеты.
// GET /faculties
func (c *Client) ListFaculties(ctx context.Context) ([]model.Faculty, error) {
	var faculties []model.Faculty
	if err := c.doJSON(ctx, "list_faculties", http.MethodGet, "/faculties", nil, nil, &faculties); err != nil {
		return nil, err
	}
	return faculties, nil
}

// ListDepartments запрашивает все кафедры.
// GET /departments
func (c *Client) ListDepartments(ctx context.Context) ([]model.Department, error) {
	var departments []model.Department
	if err := c.doJSON(ctx, "list_departments", http.MethodGet, "/departments", nil, nil, &departments); err != nil {
		return nil, err
	}
	return departments, nil
}
