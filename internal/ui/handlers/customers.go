// customers.go — страница списка исследователей и действия над ней:
// пагинация, фильтры, сортировка, форма записи, удаление, CSV-выгрузка.
package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/imilos/researchers-console/internal/apiclient"
	"github.com/imilos/researchers-console/internal/console"
	"github.com/imilos/researchers-console/internal/domain/model"
	"github.com/imilos/researchers-console/internal/listing"
	"github.com/imilos/researchers-console/internal/ui/i18n"
	uimiddleware "github.com/imilos/researchers-console/internal/ui/middleware"
	"github.com/imilos/researchers-console/internal/ui/views"
)

// exportFilename — имя файла CSV-выгрузки.
const exportFilename = "researchers.csv"

// editorAnchor — redirect к форме записи.
const editorAnchor = uimiddleware.HomePath + "#editor"

// CustomersHandler — обработчики страницы списка.
type CustomersHandler struct {
	auth   *uimiddleware.SessionAuth
	links  model.ProfileLinks
	logger *slog.Logger
}

// NewCustomersHandler создаёт CustomersHandler.
func NewCustomersHandler(auth *uimiddleware.SessionAuth, links model.ProfileLinks, logger *slog.Logger) *CustomersHandler {
	return &CustomersHandler{
		auth:   auth,
		links:  links,
		logger: logger.With(slog.String("component", "ui.customers")),
	}
}

// HandleList — GET /customers
// Первый запрос консоли загружает справочники и первую страницу;
// справочники, не загруженные из-за ошибки, запрашиваются повторно.
func (h *CustomersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	c := h.console(w, r)
	if c == nil {
		return
	}

	if err := c.Init(r.Context()); err != nil {
		if h.unauthorized(w, r, c, err) {
			return
		}
		c.NoticeError(err)
	}

	render(w, r, http.StatusOK, views.CustomersPage(h.pageData(c)), h.logger)
}

// HandlePage — POST /customers/page
func (h *CustomersHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	c := h.console(w, r)
	if c == nil {
		return
	}

	page, err := strconv.Atoi(r.FormValue("page"))
	if err != nil {
		seeOther(w, r, uimiddleware.HomePath)
		return
	}
	_, err = c.Manager().SetPage(r.Context(), page)
	h.done(w, r, c, err, uimiddleware.HomePath)
}

// HandleFilter — POST /customers/filter
// action=refine — только пересчёт кафедр фильтра, action=apply — применение,
// action=clear — сброс всех фильтров и сортировки.
func (h *CustomersHandler) HandleFilter(w http.ResponseWriter, r *http.Request) {
	c := h.console(w, r)
	if c == nil {
		return
	}
	m := c.Manager()

	if r.FormValue("action") == "clear" {
		h.done(w, r, c, m.ClearAll(r.Context()), uimiddleware.HomePath)
		return
	}

	m.SetFilter(r.FormValue("filter_string"))
	m.SetAuthorityFilter(r.FormValue("only_multiple_authorities") == "true")
	// Смена факультета сбрасывает кафедру; кафедра старого факультета не принимается
	m.SetFacultyFilter(parseID(r.FormValue("faculty_id")))
	m.SetDepartmentFilter(parseID(r.FormValue("department_id")))

	if r.FormValue("action") == "refine" {
		seeOther(w, r, uimiddleware.HomePath)
		return
	}
	h.done(w, r, c, m.Apply(r.Context()), uimiddleware.HomePath)
}

// HandleSort — POST /customers/sort
func (h *CustomersHandler) HandleSort(w http.ResponseWriter, r *http.Request) {
	c := h.console(w, r)
	if c == nil {
		return
	}

	err := c.Manager().SetSort(r.Context(), r.FormValue("column"))
	if errors.Is(err, listing.ErrUnknownSortColumn) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.done(w, r, c, err, uimiddleware.HomePath)
}

// HandleNew — GET /customers/new
func (h *CustomersHandler) HandleNew(w http.ResponseWriter, r *http.Request) {
	c := h.console(w, r)
	if c == nil {
		return
	}
	c.Editor().BeginCreate()
	http.Redirect(w, r, editorAnchor, http.StatusFound)
}

// HandleEdit — GET /customers/{id}/edit
func (h *CustomersHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	c := h.console(w, r)
	if c == nil {
		return
	}
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	h.done(w, r, c, c.Edit(r.Context(), id), editorAnchor)
}

// HandleEditor — POST /customers/editor
// action=faculty — смена факультета черновика, action=save — сохранение,
// action=cancel — сброс формы.
func (h *CustomersHandler) HandleEditor(w http.ResponseWriter, r *http.Request) {
	c := h.console(w, r)
	if c == nil {
		return
	}
	e := c.Editor()

	if r.FormValue("action") == "cancel" {
		e.BeginCreate()
		seeOther(w, r, editorAnchor)
		return
	}

	err := e.SetFields(listing.Fields{
		ID:           parseID(r.FormValue("id")),
		Name:         r.FormValue("name"),
		Email:        r.FormValue("email"),
		ORCID:        r.FormValue("orcid"),
		ScopusID:     r.FormValue("scopusid"),
		ECRISID:      r.FormValue("ecrisid"),
		Authorities:  r.FormValue("authorities"),
		DepartmentID: parseID(r.FormValue("department_id")),
	})
	if errors.Is(err, listing.ErrNoDraftRecord) {
		c.SetNotice(i18n.T(r.Context(), "editor.stale"), true)
		seeOther(w, r, editorAnchor)
		return
	}
	// Кафедра выбрана из подмножества прежнего факультета: смена факультета её сбрасывает
	e.SetFaculty(parseID(r.FormValue("faculty_id")))

	if r.FormValue("action") == "faculty" {
		seeOther(w, r, editorAnchor)
		return
	}

	msg, err := e.Save(r.Context())
	if err == nil && msg != "" {
		c.SetNotice(msg, false)
	}
	h.done(w, r, c, err, editorAnchor)
}

// HandleDeletePrompt — GET /customers/{id}/delete
func (h *CustomersHandler) HandleDeletePrompt(w http.ResponseWriter, r *http.Request) {
	c := h.console(w, r)
	if c == nil {
		return
	}
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	h.done(w, r, c, c.OpenDelete(r.Context(), id), uimiddleware.HomePath)
}

// HandleDelete — POST /customers/{id}/delete
// action=confirm — удаление, иначе диалог закрывается.
func (h *CustomersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	c := h.console(w, r)
	if c == nil {
		return
	}
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	pending, open := c.PendingDelete()
	if r.FormValue("action") != "confirm" || !open || pending.ID != id {
		c.CancelDelete()
		seeOther(w, r, uimiddleware.HomePath)
		return
	}
	h.done(w, r, c, c.ConfirmDelete(r.Context()), uimiddleware.HomePath)
}

// HandleExport — GET /customers/export.csv
// Поток CSV от API передаётся клиенту как вложение.
func (h *CustomersHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	c := h.console(w, r)
	if c == nil {
		return
	}

	body, err := c.ExportCSV(r.Context())
	if err != nil {
		h.done(w, r, c, err, uimiddleware.HomePath)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("Ошибка передачи CSV-выгрузки",
			slog.String("console_id", c.ID()),
			slog.String("error", err.Error()),
		)
	}
}

// console возвращает консоль запроса или перенаправляет на /login.
func (h *CustomersHandler) console(w http.ResponseWriter, r *http.Request) *console.Console {
	c := uimiddleware.ConsoleFromContext(r.Context())
	if c == nil {
		http.Redirect(w, r, uimiddleware.LoginPath, http.StatusFound)
	}
	return c
}

// done завершает действие redirect на target. Ошибка авторизации завершает
// сессию, прочие ошибки показываются уведомлением.
func (h *CustomersHandler) done(w http.ResponseWriter, r *http.Request, c *console.Console, err error, target string) {
	if err != nil {
		if h.unauthorized(w, r, c, err) {
			return
		}
		h.logger.Warn("Действие завершилось ошибкой",
			slog.String("path", r.URL.Path),
			slog.String("console_id", c.ID()),
			slog.String("error", err.Error()),
		)
		c.NoticeError(err)
	}
	seeOther(w, r, target)
}

// unauthorized завершает сессию, если API отклонил токен.
func (h *CustomersHandler) unauthorized(w http.ResponseWriter, r *http.Request, c *console.Console, err error) bool {
	if !apiclient.IsUnauthorized(err) {
		return false
	}
	h.logger.Info("API отклонил токен сессии, redirect на login",
		slog.String("console_id", c.ID()),
	)
	h.auth.EndSession(w, c)
	http.Redirect(w, r, uimiddleware.LoginPath, http.StatusFound)
	return true
}

// pageData собирает данные страницы из состояния консоли.
func (h *CustomersHandler) pageData(c *console.Console) views.CustomersData {
	data := views.CustomersData{
		Meta:      views.PageMeta{UserEmail: c.Email()},
		List:      c.Manager().Snapshot(),
		Editor:    c.Editor().Snapshot(),
		Faculties: c.Lookups().Faculties(),
		Names:     c.Lookups(),
		Links:     h.links,
	}
	if n, ok := c.Notice(); ok {
		data.Meta.Notice = &views.NoticeData{
			Text:        n.Text,
			IsError:     n.IsError,
			RemainingMS: n.Remaining(c.Now()).Milliseconds(),
		}
	}
	if p, ok := c.PendingDelete(); ok {
		data.Delete = &views.DeleteDialog{ID: p.ID, Name: p.Name}
	}
	return data
}

// recordID разбирает {id} из пути.
func recordID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Некорректный идентификатор записи", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
