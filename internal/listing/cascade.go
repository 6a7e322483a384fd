// Пакет listing — состояние списка исследователей: пагинация, фильтры,
// сортировка, каскад факультет → кафедра и редактор записи.
// Все удалённые вызовы выполняются без удержания внутренних блокировок.
package listing

import "github.com/imilos/researchers-console/internal/domain/model"

// DepartmentsFor возвращает кафедры факультета facultyID в исходном порядке.
// Для nil или факультета без кафедр возвращается пустой (не nil) срез.
func DepartmentsFor(departments []model.Department, facultyID *int64) []model.Department {
	out := []model.Department{}
	if facultyID == nil {
		return out
	}
	for _, d := range departments {
		if d.FacultyID == *facultyID {
			out = append(out, d)
		}
	}
	return out
}

// containsDepartment проверяет, что кафедра id входит в подмножество.
func containsDepartment(subset []model.Department, id int64) bool {
	for _, d := range subset {
		if d.ID == id {
			return true
		}
	}
	return false
}
