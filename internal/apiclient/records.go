// records.go — операции с записями исследователей (/customers).
package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/imilos/researchers-console/internal/domain/model"
)

// listResponse — ответ GET /customers.
type listResponse struct {
	Data   []model.Researcher `json:"data"`
	Paging struct {
		TotalPages int `json:"total_pages"`
	} `json:"paging"`
}

// recordResponse — ответ с полями записи на верхнем уровне и сообщением API.
type recordResponse struct {
	model.Researcher
	Message string `json:"message"`
}

// ListQueryValues формирует query string для GET /customers из состояния запроса.
// Необязательные параметры передаются только если заданы.
func ListQueryValues(q model.ListQuery) url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("per_page", strconv.Itoa(q.PageSize))
	if q.FilterString != "" {
		v.Set("filter_string", q.FilterString)
	}
	if q.OnlyMultipleAuthorities {
		v.Set("only_multiple_authorities", "true")
	}
	if q.FacultyID != nil {
		v.Set("faculty_id", strconv.FormatInt(*q.FacultyID, 10))
	}
	if q.DepartmentID != nil {
		v.Set("department_id", strconv.FormatInt(*q.DepartmentID, 10))
	}
	if q.SortColumn != "" {
		v.Set("sort_column", q.SortColumn)
		// API принимает направление как булево значение: true — по возрастанию.
		v.Set("sort_order", strconv.FormatBool(q.SortOrder != model.SortDesc))
	}
	return v
}

// ListRecords запрашивает страницу записей.
// GET /customers?page&per_page&filter_string&only_multiple_authorities&sort_column&sort_order
func (c *Client) ListRecords(ctx context.Context, q model.ListQuery) (*model.RecordPage, error) {
	var resp listResponse
	if err := c.doJSON(ctx, "list_records", http.MethodGet, "/customers", ListQueryValues(q), nil, &resp); err != nil {
		return nil, err
	}

	records := resp.Data
	if records == nil {
		records = []model.Researcher{}
	}
	return &model.RecordPage{
		Records:    records,
		TotalPages: resp.Paging.TotalPages,
	}, nil
}

// GetRecord запрашивает одну запись по ID.
// GET /customers/{id}
func (c *Client) GetRecord(ctx context.Context, id int64) (*model.Researcher, error) {
	var resp recordResponse
	if err := c.doJSON(ctx, "get_record", http.MethodGet, recordPath(id), nil, nil, &resp); err != nil {
		return nil, err
	}
	rec := resp.Researcher
	return &rec, nil
}

// CreateRecord создаёт запись. Идентификатор в теле не передаётся.
// POST /customers
func (c *Client) CreateRecord(ctx context.Context, rec model.Researcher) (*model.MutationResult, error) {
	payload := rec.Clone()
	payload.ID = nil

	var resp recordResponse
	if err := c.doJSON(ctx, "create_record", http.MethodPost, "/customers", nil, payload, &resp); err != nil {
		return nil, err
	}
	return &model.MutationResult{Record: resp.Researcher, Message: resp.Message}, nil
}

// UpdateRecord обновляет запись по ID.
// PUT /customers/{id}
func (c *Client) UpdateRecord(ctx context.Context, id int64, rec model.Researcher) (*model.MutationResult, error) {
	var resp recordResponse
	if err := c.doJSON(ctx, "update_record", http.MethodPut, recordPath(id), nil, rec, &resp); err != nil {
		return nil, err
	}
	return &model.MutationResult{Record: resp.Researcher, Message: resp.Message}, nil
}

// DeleteRecord удаляет запись по ID. Тело ответа не требуется.
// DELETE /customers/{id}
func (c *Client) DeleteRecord(ctx context.Context, id int64) error {
	return c.doJSON(ctx, "delete_record", http.MethodDelete, recordPath(id), nil, nil, nil)
}

// ExportCSV открывает поток CSV-выгрузки всех записей.
// GET /customers/download/csv — вызывающий обязан закрыть поток.
func (c *Client) ExportCSV(ctx context.Context) (io.ReadCloser, error) {
	resp, err := c.send(ctx, "export_csv", http.MethodGet, "/customers/download/csv", nil, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// recordPath возвращает путь /customers/{id}.
func recordPath(id int64) string {
	return fmt.Sprintf("/customers/%d", id)
}
