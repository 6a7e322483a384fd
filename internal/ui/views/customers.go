package views

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/imilos/researchers-console/internal/domain/model"
	"github.com/imilos/researchers-console/internal/listing"
	"github.com/imilos/researchers-console/internal/ui/i18n"
)

// NameResolver — подписи факультетов и кафедр (реализуется listing.Lookups).
type NameResolver interface {
	FacultyName(id *int64) string
	DepartmentName(id *int64) string
}

// DeleteDialog — открытый диалог подтверждения удаления.
type DeleteDialog struct {
	ID   int64
	Name string
}

// CustomersData — данные страницы списка исследователей.
type CustomersData struct {
	Meta      PageMeta
	List      listing.View
	Editor    listing.EditorView
	Faculties []model.Faculty
	Names     NameResolver
	Links     model.ProfileLinks
	// Delete — диалог удаления (nil — закрыт).
	Delete *DeleteDialog
}

// pagerWindow — сколько соседних страниц показывать слева и справа от текущей.
const pagerWindow = 2

// CustomersPage — страница списка: фильтры, таблица, пагинация, форма записи, диалог удаления.
func CustomersPage(data CustomersData) templ.Component {
	meta := data.Meta
	meta.TitleKey = "list.title"
	return page(meta, fragment(func(ctx context.Context, h *html) {
		h.raw(`<div class="card"><div class="actions" style="justify-content:space-between;margin-top:0"><h1 style="margin:0">`)
		h.text(i18n.T(ctx, "list.title"))
		h.raw(`</h1><a class="button secondary" href="/customers/export.csv">`)
		h.text(i18n.T(ctx, "nav.export"))
		h.raw(`</a></div></div>`)

		h.component(ctx, filterPanel(data))
		h.component(ctx, recordsTable(data))
		h.component(ctx, editorForm(data))
		if data.Delete != nil {
			h.component(ctx, deleteModal(*data.Delete))
		}
	}))
}

// filterPanel — панель фильтров. Смена факультета отправляет action=refine
// (пересчёт кафедр без перезагрузки списка).
func filterPanel(data CustomersData) templ.Component {
	return fragment(func(ctx context.Context, h *html) {
		q := data.List.Query

		h.raw(`<section class="card"><h2>`)
		h.text(i18n.T(ctx, "filter.title"))
		h.raw(`</h2><form method="post" action="/customers/filter"><div class="grid">`)

		h.raw(`<label>`)
		h.text(i18n.T(ctx, "filter.text"))
		h.raw(`<input type="text" name="filter_string"`)
		h.attr("value", q.FilterString)
		h.raw(`></label>`)

		h.raw(`<label>`)
		h.text(i18n.T(ctx, "filter.faculty"))
		h.raw(`<select name="faculty_id" data-submit-action="refine"><option value="">`)
		h.text(i18n.T(ctx, "filter.any"))
		h.raw(`</option>`)
		for _, f := range data.Faculties {
			option(h, f.ID, f.Name, model.SameID(q.FacultyID, &f.ID))
		}
		h.raw(`</select></label>`)

		h.raw(`<label>`)
		h.text(i18n.T(ctx, "filter.department"))
		h.raw(`<select name="department_id"`)
		h.flag("disabled", len(data.List.FilterDepartments) == 0)
		h.raw(`><option value="">`)
		h.text(i18n.T(ctx, "filter.any"))
		h.raw(`</option>`)
		for _, d := range data.List.FilterDepartments {
			option(h, d.ID, d.Name, model.SameID(q.DepartmentID, &d.ID))
		}
		h.raw(`</select></label>`)

		h.raw(`<label style="flex-direction:row;align-items:center"><input type="checkbox" name="only_multiple_authorities" value="true"`)
		h.flag("checked", q.OnlyMultipleAuthorities)
		h.raw(`> `)
		h.text(i18n.T(ctx, "filter.only_multiple"))
		h.raw(`</label></div>`)

		h.raw(`<div class="actions"><button type="submit" name="action" value="apply">`)
		h.text(i18n.T(ctx, "filter.apply"))
		h.raw(`</button><button type="submit" name="action" value="clear" class="secondary">`)
		h.text(i18n.T(ctx, "filter.clear"))
		h.raw(`</button></div></form></section>`)
	})
}

// recordsTable — таблица записей с сортируемыми заголовками и пагинацией.
func recordsTable(data CustomersData) templ.Component {
	return fragment(func(ctx context.Context, h *html) {
		q := data.List.Query

		h.raw(`<section class="card"><form method="post" action="/customers/sort"><table><thead><tr>`)
		for _, column := range model.SortColumns {
			h.raw(`<th><button type="submit" name="column" class="link"`)
			h.attr("value", column)
			h.raw(`>`)
			h.text(i18n.T(ctx, "col."+column))
			if q.SortColumn == column {
				if q.SortOrder == model.SortDesc {
					h.raw(" ▼")
				} else {
					h.raw(" ▲")
				}
			}
			h.raw(`</button></th>`)
		}
		h.raw(`<th>`)
		h.text(i18n.T(ctx, "col.actions"))
		h.raw(`</th></tr></thead><tbody>`)

		if len(data.List.Records) == 0 {
			h.raw(`<tr><td class="muted"`)
			h.attr("colspan", strconv.Itoa(len(model.SortColumns)+1))
			h.raw(`>`)
			if data.List.Loaded {
				h.text(i18n.T(ctx, "list.empty"))
			} else {
				h.text(i18n.T(ctx, "list.not_loaded"))
			}
			h.raw(`</td></tr>`)
		}

		for i := range data.List.Records {
			h.component(ctx, recordRow(data, &data.List.Records[i]))
		}
		h.raw(`</tbody></table></form>`)

		h.component(ctx, pager(q.Page, data.List.TotalPages))
		h.raw(`</section>`)
	})
}

// recordRow — строка таблицы с внешними ссылками профиля.
func recordRow(data CustomersData, r *model.Researcher) templ.Component {
	return fragment(func(ctx context.Context, h *html) {
		h.raw(`<tr><td>`)
		externalLink(h, data.Links.UniKGLink(r), r.Name)
		h.raw(`</td><td>`)
		h.text(r.Email)
		h.raw(`</td><td>`)
		externalLink(h, data.Links.ORCIDLink(r), r.ORCID)
		h.raw(`</td><td>`)
		externalLink(h, data.Links.ScopusLink(r), r.ScopusID)
		h.raw(`</td><td>`)
		externalLink(h, data.Links.ECRISLink(r), r.ECRISID)
		h.raw(`</td><td class="authorities">`)
		for _, l := range data.Links.AuthorityLinks(r) {
			externalLink(h, l.URL, l.Label)
		}
		h.raw(`</td><td>`)
		h.text(data.Names.FacultyName(r.FacultyID))
		h.raw(`</td><td>`)
		h.text(data.Names.DepartmentName(r.DepartmentID))
		h.raw(`</td><td>`)
		if r.ID != nil {
			id := idValue(r.ID)
			h.raw(`<a`)
			h.href("/customers/" + id + "/edit")
			h.raw(`>`)
			h.text(i18n.T(ctx, "action.edit"))
			h.raw(`</a> · <a`)
			h.href("/customers/" + id + "/delete")
			h.raw(`>`)
			h.text(i18n.T(ctx, "action.delete"))
			h.raw(`</a>`)
		}
		h.raw(`</td></tr>`)
	})
}

// externalLink — ссылка на внешний профиль; пустой href — только текст.
func externalLink(h *html, href, label string) {
	if href == "" {
		h.text(label)
		return
	}
	h.raw(`<a target="_blank" rel="noopener noreferrer"`)
	h.href(href)
	h.raw(`>`)
	h.text(label)
	h.raw(`</a>`)
}

// pager — кнопки страниц. Кнопки вне 1..total отключены.
func pager(current, total int) templ.Component {
	return fragment(func(ctx context.Context, h *html) {
		h.raw(`<form class="pager" method="post" action="/customers/page">`)
		pageButton(h, current-1, i18n.T(ctx, "pager.prev"), current <= 1)

		for _, n := range pagerPages(current, total) {
			if n == current {
				h.raw(`<span class="current">`)
				h.text(strconv.Itoa(n))
				h.raw(`</span>`)
				continue
			}
			pageButton(h, n, strconv.Itoa(n), false)
		}

		pageButton(h, current+1, i18n.T(ctx, "pager.next"), current >= total)
		h.raw(`<span class="muted">`)
		h.text(i18n.Tf(ctx, "list.total_pages", current, total))
		h.raw(`</span></form>`)
	})
}

func pageButton(h *html, n int, label string, disabled bool) {
	h.raw(`<button type="submit" name="page" class="secondary"`)
	h.attr("value", strconv.Itoa(n))
	h.flag("disabled", disabled)
	h.raw(`>`)
	h.text(label)
	h.raw(`</button>`)
}

// pagerPages возвращает номера страниц вокруг текущей.
func pagerPages(current, total int) []int {
	from := max(1, current-pagerWindow)
	to := min(total, current+pagerWindow)
	if from > to {
		return []int{}
	}
	pages := make([]int, 0, to-from+1)
	for n := from; n <= to; n++ {
		pages = append(pages, n)
	}
	return pages
}

// editorForm — форма создания/изменения записи. Смена факультета отправляет
// action=faculty (пересчёт кафедр черновика).
func editorForm(data CustomersData) templ.Component {
	return fragment(func(ctx context.Context, h *html) {
		e := data.Editor
		d := e.Draft

		h.raw(`<section class="card" id="editor"><h2>`)
		if e.Editing {
			h.text(i18n.T(ctx, "editor.edit"))
		} else {
			h.text(i18n.T(ctx, "editor.new"))
		}
		h.raw(`</h2><form method="post" action="/customers/editor">`)
		h.raw(`<input type="hidden" name="id"`)
		h.attr("value", idValue(d.ID))
		h.raw(`><div class="grid">`)

		textField(ctx, h, "name", "col.name", d.Name)
		textField(ctx, h, "email", "col.email", d.Email)
		textField(ctx, h, "orcid", "col.orcid", d.ORCID)
		textField(ctx, h, "scopusid", "col.scopusid", d.ScopusID)
		textField(ctx, h, "ecrisid", "col.ecrisid", d.ECRISID)
		textField(ctx, h, "authorities", "col.authorities", d.Authorities)

		h.raw(`<label>`)
		h.text(i18n.T(ctx, "col.faculty_id"))
		h.raw(`<select name="faculty_id" data-submit-action="faculty"><option value="">`)
		h.text(i18n.T(ctx, "editor.none"))
		h.raw(`</option>`)
		facultyListed := false
		for _, f := range data.Faculties {
			selected := model.SameID(d.FacultyID, &f.ID)
			facultyListed = facultyListed || selected
			option(h, f.ID, f.Name, selected)
		}
		if d.FacultyID != nil && !facultyListed {
			option(h, *d.FacultyID, facultyLabel(data.Names, d.FacultyID), true)
		}
		h.raw(`</select></label>`)

		h.raw(`<label>`)
		h.text(i18n.T(ctx, "col.department_id"))
		h.raw(`<select name="department_id"><option value="">`)
		h.text(i18n.T(ctx, "editor.none"))
		h.raw(`</option>`)
		departmentListed := false
		for _, dep := range e.Departments {
			selected := model.SameID(d.DepartmentID, &dep.ID)
			departmentListed = departmentListed || selected
			option(h, dep.ID, dep.Name, selected)
		}
		// Кафедра записи вне подмножества остаётся выбранной, иначе форма её потеряет.
		if d.DepartmentID != nil && !departmentListed {
			option(h, *d.DepartmentID, departmentLabel(data.Names, d.DepartmentID), true)
		}
		h.raw(`</select></label></div>`)

		h.raw(`<div class="actions"><button type="submit" name="action" value="save">`)
		if e.Editing {
			h.text(i18n.T(ctx, "editor.update"))
		} else {
			h.text(i18n.T(ctx, "editor.create"))
		}
		h.raw(`</button><button type="submit" name="action" value="cancel" class="secondary">`)
		h.text(i18n.T(ctx, "editor.cancel"))
		h.raw(`</button></div></form></section>`)
	})
}

func textField(ctx context.Context, h *html, name, labelKey, value string) {
	h.raw(`<label>`)
	h.text(i18n.T(ctx, labelKey))
	h.raw(`<input type="text"`)
	h.attr("name", name)
	h.attr("value", value)
	h.raw(`></label>`)
}

// facultyLabel и departmentLabel — подписи справочника; без справочника — идентификатор.
func facultyLabel(names NameResolver, id *int64) string {
	if names == nil {
		return strconv.FormatInt(*id, 10)
	}
	return names.FacultyName(id)
}

func departmentLabel(names NameResolver, id *int64) string {
	if names == nil {
		return strconv.FormatInt(*id, 10)
	}
	return names.DepartmentName(id)
}

func option(h *html, id int64, label string, selected bool) {
	h.raw(`<option`)
	h.attr("value", strconv.FormatInt(id, 10))
	h.flag("selected", selected)
	h.raw(`>`)
	h.text(label)
	h.raw(`</option>`)
}

// deleteModal — диалог подтверждения удаления.
func deleteModal(d DeleteDialog) templ.Component {
	return fragment(func(ctx context.Context, h *html) {
		h.raw(`<div class="modal-backdrop"><div class="modal" role="dialog" aria-modal="true"><h2>`)
		h.text(i18n.T(ctx, "delete.title"))
		h.raw(`</h2><p>`)
		h.text(i18n.Tf(ctx, "delete.confirm", d.Name))
		h.raw(`</p><form method="post"`)
		h.attr("action", "/customers/"+strconv.FormatInt(d.ID, 10)+"/delete")
		h.raw(`><div class="actions"><button type="submit" name="action" value="confirm" class="danger">`)
		h.text(i18n.T(ctx, "delete.yes"))
		h.raw(`</button><button type="submit" name="action" value="cancel" class="secondary">`)
		h.text(i18n.T(ctx, "delete.no"))
		h.raw(`</button></div></form></div></div>`)
	})
}
