package model

import (
	"net/url"
	"strconv"
)

// ProfileLinks — префиксы URL внешних профилей исследователя.
type ProfileLinks struct {
	ORCID  string
	Scopus string
	ECRIS  string
	Scidar string
	// UniKG — страница сотрудника на сайте университета (по идентификатору записи).
	UniKG string
}

// Link — ссылка на внешний профиль.
type Link struct {
	Label string
	URL   string
}

// ORCIDLink возвращает ссылку на профиль ORCID (пустую, если идентификатора нет).
func (p ProfileLinks) ORCIDLink(r *Researcher) string {
	return join(p.ORCID, r.ORCID)
}

// ScopusLink возвращает ссылку на профиль Scopus.
func (p ProfileLinks) ScopusLink(r *Researcher) string {
	return join(p.Scopus, r.ScopusID)
}

// ECRISLink возвращает ссылку на профиль E-CRIS.
func (p ProfileLinks) ECRISLink(r *Researcher) string {
	return join(p.ECRIS, r.ECRISID)
}

// UniKGLink возвращает ссылку на страницу сотрудника университета
// (пустую для несохранённой записи или без префикса).
func (p ProfileLinks) UniKGLink(r *Researcher) string {
	if p.UniKG == "" || r.ID == nil {
		return ""
	}
	return p.UniKG + strconv.FormatInt(*r.ID, 10)
}

// AuthorityLinks возвращает ссылки SCIDAR для каждого токена authorities.
func (p ProfileLinks) AuthorityLinks(r *Researcher) []Link {
	tokens := r.AuthorityTokens()
	links := make([]Link, 0, len(tokens))
	for _, t := range tokens {
		links = append(links, Link{Label: t, URL: p.Scidar + url.QueryEscape(t)})
	}
	return links
}

func join(prefix, id string) string {
	if id == "" {
		return ""
	}
	return prefix + url.PathEscape(id)
}
