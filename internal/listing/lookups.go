package listing

import (
	"context"
	"fmt"
	"sync"

	"github.com/imilos/researchers-console/internal/domain/model"
)

const (
	// NameNotSet — подпись для пустой ссылки на факультет или кафедру.
	NameNotSet = "N/A"
	// NameUnknown — подпись для идентификатора, которого нет в справочнике.
	NameUnknown = "Unknown"
)

// LookupSource — источник справочников (реализуется apiclient.Client).
type LookupSource interface {
	ListFaculties(ctx context.Context) ([]model.Faculty, error)
	ListDepartments(ctx context.Context) ([]model.Department, error)
}

// Lookups — справочники факультетов и кафедр, загружаемые один раз на сессию.
type Lookups struct {
	mu          sync.RWMutex
	faculties   []model.Faculty
	departments []model.Department
}

// NewLookups создаёт справочники с заданным содержимым (nil — пустые).
func NewLookups(faculties []model.Faculty, departments []model.Department) *Lookups {
	l := &Lookups{}
	l.Replace(faculties, departments)
	return l
}

// Load загружает оба справочника. При ошибке одного из них
// загруженное содержимое не меняется.
func (l *Lookups) Load(ctx context.Context, src LookupSource) error {
	faculties, err := src.ListFaculties(ctx)
	if err != nil {
		return fmt.Errorf("загрузка факультетов: %w", err)
	}
	departments, err := src.ListDepartments(ctx)
	if err != nil {
		return fmt.Errorf("загрузка кафедр: %w", err)
	}
	l.Replace(faculties, departments)
	return nil
}

// Replace заменяет содержимое справочников.
func (l *Lookups) Replace(faculties []model.Faculty, departments []model.Department) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.faculties = append([]model.Faculty{}, faculties...)
	l.departments = append([]model.Department{}, departments...)
}

// Faculties возвращает копию списка факультетов.
func (l *Lookups) Faculties() []model.Faculty {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]model.Faculty{}, l.faculties...)
}

// Departments возвращает копию списка кафедр.
func (l *Lookups) Departments() []model.Department {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]model.Department{}, l.departments...)
}

// DepartmentsFor возвращает кафедры факультета (см. пакетную DepartmentsFor).
func (l *Lookups) DepartmentsFor(facultyID *int64) []model.Department {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return DepartmentsFor(l.departments, facultyID)
}

// FacultyName возвращает название факультета для отображения.
func (l *Lookups) FacultyName(id *int64) string {
	if id == nil {
		return NameNotSet
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, f := range l.faculties {
		if f.ID == *id {
			return f.Name
		}
	}
	return NameUnknown
}

// DepartmentName возвращает название кафедры для отображения.
func (l *Lookups) DepartmentName(id *int64) string {
	if id == nil {
		return NameNotSet
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, d := range l.departments {
		if d.ID == *id {
			return d.Name
		}
	}
	return NameUnknown
}
