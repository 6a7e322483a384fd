package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/imilos/researchers-console/internal/domain/model"
)

// ErrNoDraftRecord — форма относится не к текущему черновику
// (например, устаревшая вкладка после сохранения или смены записи).
var ErrNoDraftRecord = errors.New("черновик записи не найден")

// RecordWriter — создание и обновление записей (реализуется apiclient.Client).
type RecordWriter interface {
	CreateRecord(ctx context.Context, rec model.Researcher) (*model.MutationResult, error)
	UpdateRecord(ctx context.Context, id int64, rec model.Researcher) (*model.MutationResult, error)
}

// Reloader — перезагрузка списка после сохранения (реализуется Manager).
type Reloader interface {
	Reload(ctx context.Context) error
}

// Fields — текстовые поля формы и выбранная кафедра.
// ID — идентификатор записи, к которой относится форма (nil — новая запись).
type Fields struct {
	ID           *int64
	Name         string
	Email        string
	ORCID        string
	ScopusID     string
	ECRISID      string
	Authorities  string
	DepartmentID *int64
}

// EditorView — снимок черновика для отрисовки формы.
type EditorView struct {
	Draft model.Researcher
	// Departments — кафедры факультета черновика (каскад формы).
	Departments []model.Department
	// Editing — черновик уже сохранён в API (есть идентификатор).
	Editing bool
}

// Editor хранит один черновик записи. Без идентификатора черновик
// сохраняется как новая запись, с идентификатором — как обновление.
type Editor struct {
	writer   RecordWriter
	reloader Reloader
	lookups  *Lookups
	logger   *slog.Logger

	mu          sync.Mutex
	draft       model.Researcher
	departments []model.Department
}

// NewEditor создаёт редактор с пустым черновиком.
func NewEditor(writer RecordWriter, reloader Reloader, lookups *Lookups, logger *slog.Logger) *Editor {
	return &Editor{
		writer:      writer,
		reloader:    reloader,
		lookups:     lookups,
		logger:      logger.With(slog.String("component", "record_editor")),
		departments: []model.Department{},
	}
}

// BeginCreate сбрасывает черновик к пустой записи.
func (e *Editor) BeginCreate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
}

// BeginEdit копирует запись в черновик и пересчитывает кафедры по её факультету.
func (e *Editor) BeginEdit(rec model.Researcher) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft = rec.Clone()
	e.departments = e.lookups.DepartmentsFor(e.draft.FacultyID)
}

// SetFaculty меняет факультет черновика: кафедра сбрасывается,
// подмножество кафедр пересчитывается.
func (e *Editor) SetFaculty(facultyID *int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if model.SameID(e.draft.FacultyID, facultyID) {
		return
	}
	if facultyID == nil {
		e.draft.FacultyID = nil
	} else {
		e.draft.FacultyID = model.ID(*facultyID)
	}
	e.draft.DepartmentID = nil
	e.departments = e.lookups.DepartmentsFor(e.draft.FacultyID)
}

// SetFields обновляет поля черновика. Кафедра вне подмножества факультета
// черновика не принимается: ссылка на кафедру сбрасывается. Исключение —
// кафедра, уже записанная в черновике: она сохраняется, даже если её нет
// в подмножестве (справочники не загружены, устаревшая запись).
// Если f.ID не совпадает с идентификатором черновика, возвращается ErrNoDraftRecord.
func (e *Editor) SetFields(f Fields) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !model.SameID(e.draft.ID, f.ID) {
		return ErrNoDraftRecord
	}
	e.draft.Name = f.Name
	e.draft.Email = f.Email
	e.draft.ORCID = f.ORCID
	e.draft.ScopusID = f.ScopusID
	e.draft.ECRISID = f.ECRISID
	e.draft.Authorities = f.Authorities

	switch {
	case f.DepartmentID == nil:
		e.draft.DepartmentID = nil
	case model.SameID(e.draft.DepartmentID, f.DepartmentID):
		// без изменений
	case containsDepartment(e.departments, *f.DepartmentID):
		e.draft.DepartmentID = model.ID(*f.DepartmentID)
	default:
		e.draft.DepartmentID = nil
	}
	return nil
}

// Save создаёт или обновляет запись в зависимости от наличия идентификатора.
// При успехе черновик сбрасывается, список перезагружается и возвращается
// сообщение API. При ошибке API черновик остаётся без изменений.
// Ошибка перезагрузки возвращается вместе с сообщением: запись уже сохранена.
func (e *Editor) Save(ctx context.Context) (string, error) {
	e.mu.Lock()
	draft := e.draft.Clone()
	e.mu.Unlock()

	var (
		result *model.MutationResult
		err    error
	)
	if draft.HasID() {
		result, err = e.writer.UpdateRecord(ctx, *draft.ID, draft)
	} else {
		result, err = e.writer.CreateRecord(ctx, draft)
	}
	if err != nil {
		return "", err
	}

	e.logger.Info("Запись сохранена",
		slog.Bool("update", draft.HasID()),
		slog.String("name", draft.Name),
	)

	e.mu.Lock()
	e.reset()
	e.mu.Unlock()

	if err := e.reloader.Reload(ctx); err != nil {
		return result.Message, fmt.Errorf("перезагрузка списка после сохранения: %w", err)
	}
	return result.Message, nil
}

// Snapshot возвращает копию черновика.
func (e *Editor) Snapshot() EditorView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EditorView{
		Draft:       e.draft.Clone(),
		Departments: append([]model.Department{}, e.departments...),
		Editing:     e.draft.HasID(),
	}
}

// reset вызывается под e.mu.
func (e *Editor) reset() {
	e.draft = model.Researcher{}
	e.departments = []model.Department{}
}
