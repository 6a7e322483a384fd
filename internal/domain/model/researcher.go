// Пакет model — доменные модели Researchers Console.
// Модели соответствуют JSON-контракту удалённого API справочника.
package model

import "strings"

// Researcher — запись исследователя в справочнике (в API — "customer").
// ID отсутствует до сохранения записи через API.
type Researcher struct {
	ID           *int64 `json:"id,omitempty"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	ORCID        string `json:"orcid"`
	ScopusID     string `json:"scopusid"`
	ECRISID      string `json:"ecrisid"`
	Authorities  string `json:"authorities"`
	FacultyID    *int64 `json:"faculty_id"`
	DepartmentID *int64 `json:"department_id"`
}

// HasID возвращает true, если запись уже сохранена (есть идентификатор).
func (r *Researcher) HasID() bool {
	return r.ID != nil
}

// AuthorityTokens разбивает строку authorities на токены (разделитель — пробел).
func (r *Researcher) AuthorityTokens() []string {
	return strings.Fields(r.Authorities)
}

// HasMultipleAuthorities возвращает true, если у записи более одного токена authorities.
func (r *Researcher) HasMultipleAuthorities() bool {
	return len(r.AuthorityTokens()) > 1
}

// Clone возвращает глубокую копию записи (указатели копируются по значению).
func (r Researcher) Clone() Researcher {
	c := r
	c.ID = cloneID(r.ID)
	c.FacultyID = cloneID(r.FacultyID)
	c.DepartmentID = cloneID(r.DepartmentID)
	return c
}

// Faculty — факультет (справочник, только чтение).
type Faculty struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Department — кафедра, принадлежит ровно одному факультету.
type Department struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	FacultyID int64  `json:"faculty_id"`
}

// MutationResult — ответ API на создание или обновление записи.
type MutationResult struct {
	Record  Researcher
	Message string
}

// ID возвращает указатель на копию идентификатора.
func ID(v int64) *int64 {
	return &v
}

// cloneID копирует nullable-идентификатор.
func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// SameID сравнивает два nullable-идентификатора.
func SameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
