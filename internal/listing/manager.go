package listing

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/imilos/researchers-console/internal/domain/model"
)

// ErrUnknownSortColumn — колонка не поддерживается API для сортировки.
var ErrUnknownSortColumn = errors.New("неизвестная колонка сортировки")

// RecordLister — источник страниц записей (реализуется apiclient.Client).
type RecordLister interface {
	ListRecords(ctx context.Context, q model.ListQuery) (*model.RecordPage, error)
}

// View — снимок состояния списка для отрисовки.
type View struct {
	Query      model.ListQuery
	Records    []model.Researcher
	TotalPages int
	// FilterDepartments — кафедры факультета из фильтра (каскад панели фильтров).
	FilterDepartments []model.Department
	// Loaded — хотя бы одна перезагрузка завершилась успешно.
	Loaded bool
}

// Manager — единственный источник истины о том, какая страница каких записей
// при каких фильтрах и сортировке сейчас отображается.
//
// Каждая перезагрузка получает номер поколения. Ответ, чьё поколение старше
// последнего применённого, отбрасывается: запоздавший ответ не перезаписывает
// более свежее состояние.
type Manager struct {
	lister  RecordLister
	lookups *Lookups
	logger  *slog.Logger

	mu                sync.Mutex
	initial           model.ListQuery
	query             model.ListQuery
	records           []model.Researcher
	totalPages        int
	filterDepartments []model.Department
	issued            uint64
	applied           uint64
}

// NewManager создаёт менеджер списка с начальным состоянием DefaultListQuery(pageSize).
func NewManager(lister RecordLister, lookups *Lookups, pageSize int, logger *slog.Logger) *Manager {
	initial := model.DefaultListQuery(pageSize)
	return &Manager{
		lister:            lister,
		lookups:           lookups,
		logger:            logger.With(slog.String("component", "list_manager")),
		initial:           initial,
		query:             initial.Clone(),
		records:           []model.Researcher{},
		filterDepartments: []model.Department{},
	}
}

// SetPage переходит на страницу n и перезагружает список.
// Значения вне 1..totalPages молча игнорируются: возвращается false без запроса.
func (m *Manager) SetPage(ctx context.Context, n int) (bool, error) {
	m.mu.Lock()
	if n < 1 || n > m.totalPages {
		m.mu.Unlock()
		return false, nil
	}
	m.query.Page = n
	m.mu.Unlock()

	return true, m.Reload(ctx)
}

// SetFilter задаёт текстовый фильтр. Перезагрузка не выполняется.
func (m *Manager) SetFilter(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.query.FilterString = text
}

// SetAuthorityFilter задаёт флаг «только несколько authorities». Перезагрузка не выполняется.
func (m *Manager) SetAuthorityFilter(only bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.query.OnlyMultipleAuthorities = only
}

// SetFacultyFilter задаёт фильтр по факультету. Новое значение сбрасывает
// фильтр по кафедре и пересчитывает кафедры панели фильтров.
// Перезагрузка не выполняется.
func (m *Manager) SetFacultyFilter(facultyID *int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if model.SameID(m.query.FacultyID, facultyID) {
		return
	}
	if facultyID == nil {
		m.query.FacultyID = nil
	} else {
		m.query.FacultyID = model.ID(*facultyID)
	}
	m.query.DepartmentID = nil
	m.filterDepartments = m.lookups.DepartmentsFor(m.query.FacultyID)
}

// SetDepartmentFilter задаёт фильтр по кафедре. Кафедра должна принадлежать
// факультету из фильтра, иначе состояние не меняется и возвращается false.
// nil сбрасывает фильтр. Перезагрузка не выполняется.
func (m *Manager) SetDepartmentFilter(departmentID *int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if departmentID == nil {
		m.query.DepartmentID = nil
		return true
	}
	if !containsDepartment(m.filterDepartments, *departmentID) {
		return false
	}
	m.query.DepartmentID = model.ID(*departmentID)
	return true
}

// SetSort сортирует по колонке: та же колонка меняет направление,
// новая колонка — по возрастанию. Всегда сбрасывает страницу на 1 и перезагружает.
func (m *Manager) SetSort(ctx context.Context, column string) error {
	if !model.IsSortColumn(column) {
		return ErrUnknownSortColumn
	}

	m.mu.Lock()
	if m.query.SortColumn == column {
		m.query.SortOrder = m.query.SortOrder.Toggle()
	} else {
		m.query.SortColumn = column
		m.query.SortOrder = model.SortAsc
	}
	m.query.Page = 1
	m.mu.Unlock()

	return m.Reload(ctx)
}

// ClearAll сбрасывает фильтры, сортировку и страницу к начальным значениям и перезагружает.
func (m *Manager) ClearAll(ctx context.Context) error {
	m.mu.Lock()
	m.query = m.initial.Clone()
	m.filterDepartments = []model.Department{}
	m.mu.Unlock()

	return m.Reload(ctx)
}

// Apply применяет отредактированные фильтры: страница 1 и перезагрузка.
func (m *Manager) Apply(ctx context.Context) error {
	m.mu.Lock()
	m.query.Page = 1
	m.mu.Unlock()

	return m.Reload(ctx)
}

// Reload запрашивает текущее состояние у API и заменяет записи и число страниц.
// При ошибке отображаемые записи не меняются.
func (m *Manager) Reload(ctx context.Context) error {
	m.mu.Lock()
	m.issued++
	generation := m.issued
	query := m.query.Clone()
	m.mu.Unlock()

	page, err := m.lister.ListRecords(ctx, query)
	if err != nil {
		m.logger.Warn("Ошибка загрузки списка",
			slog.Uint64("generation", generation),
			slog.Int("page", query.Page),
			slog.String("error", err.Error()),
		)
		return err
	}

	m.mu.Lock()
	if applied := m.applied; generation < applied {
		m.mu.Unlock()
		m.logger.Debug("Устаревший ответ отброшен",
			slog.Uint64("generation", generation),
			slog.Uint64("applied", applied),
		)
		return nil
	}

	m.records = append([]model.Researcher{}, page.Records...)
	m.totalPages = page.TotalPages
	m.applied = generation

	// Число страниц уменьшилось (удаление, сохранение): текущая страница
	// переносится на последнюю существующую и загружается заново.
	last := max(1, page.TotalPages)
	clamped := query.Page > last && m.query.Page == query.Page
	if clamped {
		m.query.Page = last
	}
	m.mu.Unlock()

	if clamped {
		m.logger.Debug("Страница за пределами списка",
			slog.Int("page", query.Page),
			slog.Int("last", last),
		)
		return m.Reload(ctx)
	}
	return nil
}

// Snapshot возвращает копию текущего состояния.
func (m *Manager) Snapshot() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := make([]model.Researcher, len(m.records))
	for i, r := range m.records {
		records[i] = r.Clone()
	}
	return View{
		Query:             m.query.Clone(),
		Records:           records,
		TotalPages:        m.totalPages,
		FilterDepartments: append([]model.Department{}, m.filterDepartments...),
		Loaded:            m.applied > 0,
	}
}

// Record ищет запись с идентификатором id на текущей странице.
func (m *Manager) Record(id int64) (model.Researcher, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID != nil && *r.ID == id {
			return r.Clone(), true
		}
	}
	return model.Researcher{}, false
}
