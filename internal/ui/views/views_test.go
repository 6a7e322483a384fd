package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/imilos/researchers-console/internal/domain/model"
	"github.com/imilos/researchers-console/internal/listing"
)

func render(t *testing.T, data CustomersData) string {
	t.Helper()
	var buf bytes.Buffer
	if err := CustomersPage(data).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	return buf.String()
}

func testData() CustomersData {
	lookups := listing.NewLookups(
		[]model.Faculty{{ID: 1, Name: "PMF"}, {ID: 2, Name: "FIN"}},
		[]model.Department{{ID: 10, Name: "Informatika", FacultyID: 1}, {ID: 20, Name: "Mašinstvo", FacultyID: 2}},
	)
	q := model.DefaultListQuery(5)
	q.Page = 2
	q.SortColumn = "name"
	q.SortOrder = model.SortDesc

	return CustomersData{
		Meta: PageMeta{UserEmail: "admin@kg.ac.rs"},
		List: listing.View{
			Query: q,
			Records: []model.Researcher{
				{ID: model.ID(7), Name: "Ana", ORCID: "0000-0001", Authorities: "a1 b2", FacultyID: model.ID(1), DepartmentID: model.ID(10)},
			},
			TotalPages: 4,
			Loaded:     true,
		},
		Faculties: lookups.Faculties(),
		Names:     lookups,
		Links:     model.ProfileLinks{ORCID: "https://orcid.org/", Scidar: "https://scidar/?a=", UniKG: "https://kg/?ib_je="},
	}
}

func TestCustomersPage_Table(t *testing.T) {
	out := render(t, testData())

	for _, want := range []string{
		`action="/customers/sort"`,
		`name="column" class="link" value="name"`,
		"▼",
		`href="/customers/7/edit"`,
		`href="/customers/7/delete"`,
		`href="https://orcid.org/0000-0001"`,
		`href="https://scidar/?a=b2"`,
		`href="https://kg/?ib_je=7"`,
		"<td>PMF</td>",
		"<td>Informatika</td>",
		`href="/customers/export.csv"`,
		"admin@kg.ac.rs",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("в разметке нет %q", want)
		}
	}
	if strings.Contains(out, "modal-backdrop") {
		t.Error("диалог удаления не должен отображаться без DeleteDialog")
	}
}

func TestCustomersPage_Pager(t *testing.T) {
	out := render(t, testData())

	if !strings.Contains(out, `<span class="current">2</span>`) {
		t.Error("текущая страница должна быть выделена")
	}
	for _, n := range []string{"1", "3", "4"} {
		if !strings.Contains(out, `name="page" class="secondary" value="`+n+`"`) {
			t.Errorf("нет кнопки страницы %s", n)
		}
	}
}

func TestCustomersPage_EmptyStates(t *testing.T) {
	data := testData()
	data.List.Records = nil
	data.List.Loaded = false
	if out := render(t, data); !strings.Contains(out, "list.not_loaded") {
		t.Error("до первой загрузки ожидается list.not_loaded")
	}

	data.List.Loaded = true
	if out := render(t, data); !strings.Contains(out, "list.empty") {
		t.Error("пустой загруженный список — ожидается list.empty")
	}
}

func TestCustomersPage_EditorAndDelete(t *testing.T) {
	data := testData()
	data.Editor = listing.EditorView{
		Draft:       model.Researcher{ID: model.ID(7), Name: "Ana", FacultyID: model.ID(1), DepartmentID: model.ID(10)},
		Departments: []model.Department{{ID: 10, Name: "Informatika", FacultyID: 1}},
		Editing:     true,
	}
	data.Delete = &DeleteDialog{ID: 7, Name: "Ana"}

	out := render(t, data)
	for _, want := range []string{
		`<input type="hidden" name="id" value="7">`,
		"editor.update",
		`data-submit-action="faculty"`,
		`<option value="10" selected>Informatika</option>`,
		`action="/customers/7/delete"`,
		`value="confirm"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("в разметке нет %q", want)
		}
	}
}

// Текущая страница за пределами числа страниц не ломает отрисовку.
func TestCustomersPage_PageBeyondTotal(t *testing.T) {
	data := testData()
	data.List.Query.Page = 10
	data.List.TotalPages = 3

	out := render(t, data)
	if !strings.Contains(out, `action="/customers/page"`) {
		t.Error("пагинатор должен отображаться")
	}
	if strings.Contains(out, `<span class="current">`) {
		t.Error("номер текущей страницы вне диапазона не должен выделяться")
	}
}

// Факультет и кафедра записи вне загруженных справочников остаются выбранными.
func TestCustomersPage_EditorKeepsUnlistedReferences(t *testing.T) {
	data := testData()
	data.Editor = listing.EditorView{
		Draft:       model.Researcher{ID: model.ID(7), Name: "Ana", FacultyID: model.ID(9), DepartmentID: model.ID(99)},
		Departments: []model.Department{},
		Editing:     true,
	}

	out := render(t, data)
	for _, want := range []string{
		`<option value="9" selected>`,
		`<option value="99" selected>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("в разметке нет %q", want)
		}
	}
}

func TestCustomersPage_EscapesData(t *testing.T) {
	data := testData()
	data.List.Records[0].Name = `<script>alert("x")</script>`
	data.List.Query.FilterString = `"><b>`

	out := render(t, data)
	if strings.Contains(out, "<script>alert") {
		t.Error("имя записи должно экранироваться")
	}
	if strings.Contains(out, `value=""><b>"`) {
		t.Error("строка фильтра должна экранироваться в атрибуте")
	}
}

// Недопустимая схема ссылки профиля заменяется, текст остаётся.
func TestCustomersPage_SanitizesLinks(t *testing.T) {
	data := testData()
	data.Links.ORCID = "javascript:alert(1)//"

	out := render(t, data)
	if strings.Contains(out, `href="javascript:`) {
		t.Error("ссылка со схемой javascript: не должна попадать в разметку")
	}
	if !strings.Contains(out, ">0000-0001</a>") {
		t.Error("идентификатор ORCID должен отображаться")
	}
}

func TestLayout_RendersChildren(t *testing.T) {
	var buf bytes.Buffer
	ctx := templ.WithChildren(context.Background(), templ.Raw(`<p id="body">x</p>`))
	if err := Layout(PageMeta{TitleKey: "list.title", UserEmail: "admin@kg.ac.rs"}).Render(ctx, &buf); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `<main><p id="body">x</p></main>`) {
		t.Errorf("содержимое страницы не внутри <main>: %s", out)
	}
	if !strings.Contains(out, `action="/logout"`) {
		t.Error("для вошедшего пользователя ожидается кнопка выхода")
	}
}

func TestPagerPages(t *testing.T) {
	tests := []struct {
		current, total int
		want           []int
	}{
		{1, 1, []int{1}},
		{1, 10, []int{1, 2, 3}},
		{5, 10, []int{3, 4, 5, 6, 7}},
		{10, 10, []int{8, 9, 10}},
		{1, 0, []int{}},
		{10, 3, []int{}},
		{6, 3, []int{}},
		{5, 3, []int{3}},
	}
	for _, tt := range tests {
		got := pagerPages(tt.current, tt.total)
		if len(got) != len(tt.want) {
			t.Errorf("pagerPages(%d, %d) = %v, ожидается %v", tt.current, tt.total, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("pagerPages(%d, %d) = %v, ожидается %v", tt.current, tt.total, got, tt.want)
				break
			}
		}
	}
}

func TestLoginPage(t *testing.T) {
	var buf bytes.Buffer
	err := LoginPage(LoginData{Email: "a@b.rs", Error: "Bad <credentials>"}).Render(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `action="/login"`) || !strings.Contains(out, `value="a@b.rs"`) {
		t.Error("форма входа должна сохранять введённый email")
	}
	if !strings.Contains(out, "Bad &lt;credentials&gt;") {
		t.Error("ошибка входа должна экранироваться")
	}
	if strings.Contains(out, `action="/logout"`) {
		t.Error("на странице входа нет кнопки выхода")
	}
}
