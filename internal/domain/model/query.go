package model

// SortOrder — направление сортировки списка.
type SortOrder string

const (
	// SortAsc — по возрастанию (значение по умолчанию).
	SortAsc SortOrder = "asc"
	// SortDesc — по убыванию.
	SortDesc SortOrder = "desc"
)

// Toggle возвращает противоположное направление.
func (o SortOrder) Toggle() SortOrder {
	if o == SortDesc {
		return SortAsc
	}
	return SortDesc
}

// Допустимые колонки сортировки (имена из API).
var SortColumns = []string{"name", "email", "orcid", "scopusid", "ecrisid", "authorities", "faculty_id", "department_id"}

// IsSortColumn проверяет, что колонка допустима для сортировки.
func IsSortColumn(column string) bool {
	for _, c := range SortColumns {
		if c == column {
			return true
		}
	}
	return false
}

// ListQuery — состояние запроса списка: пагинация, фильтры, сортировка.
type ListQuery struct {
	// Page — номер страницы, начиная с 1.
	Page int
	// PageSize — количество записей на странице.
	PageSize int
	// FilterString — свободный текстовый фильтр.
	FilterString string
	// FacultyID — фильтр по факультету (nil — без фильтра).
	FacultyID *int64
	// DepartmentID — фильтр по кафедре; если задан, принадлежит FacultyID.
	DepartmentID *int64
	// OnlyMultipleAuthorities — только записи с несколькими authorities.
	OnlyMultipleAuthorities bool
	// SortColumn — колонка сортировки (пустая — порядок по умолчанию).
	SortColumn string
	// SortOrder — направление сортировки.
	SortOrder SortOrder
}

// DefaultListQuery возвращает начальное состояние запроса.
func DefaultListQuery(pageSize int) ListQuery {
	return ListQuery{
		Page:      1,
		PageSize:  pageSize,
		SortOrder: SortAsc,
	}
}

// Clone возвращает копию запроса без общих указателей.
func (q ListQuery) Clone() ListQuery {
	c := q
	c.FacultyID = cloneID(q.FacultyID)
	c.DepartmentID = cloneID(q.DepartmentID)
	return c
}

// Equal сравнивает два состояния запроса по значению.
func (q ListQuery) Equal(o ListQuery) bool {
	return q.Page == o.Page &&
		q.PageSize == o.PageSize &&
		q.FilterString == o.FilterString &&
		SameID(q.FacultyID, o.FacultyID) &&
		SameID(q.DepartmentID, o.DepartmentID) &&
		q.OnlyMultipleAuthorities == o.OnlyMultipleAuthorities &&
		q.SortColumn == o.SortColumn &&
		q.SortOrder == o.SortOrder
}

// RecordPage — одна страница записей и общее количество страниц.
type RecordPage struct {
	Records    []Researcher
	TotalPages int
}
