package httputil

import (
	"net/http"
	"net/url"
	"strconv"
)

// Page is a length-aware page of results.
type Page[T any] struct {
	CurrentPage  int     `json:"current_page"`
	Data         []T     `json:"data"`
	FirstPageURL string  `json:"first_page_url"`
	From         *int    `json:"from"`
	LastPage     int     `json:"last_page"`
	LastPageURL  string  `json:"last_page_url"`
	NextPageURL  *string `json:"next_page_url"`
	Path         string  `json:"path"`
	PerPage      int     `json:"per_page"`
	PrevPageURL  *string `json:"prev_page_url"`
	To           *int    `json:"to"`
	Total        int64   `json:"total"`
}

// PageParam reads ?page=, defaulting to 1 for missing or invalid values.
func PageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// NewPage builds the page envelope. Other query parameters of the request
// are carried into the page links.
func NewPage[T any](r *http.Request, items []T, page, perPage int, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}

	lastPage := int((total + int64(perPage) - 1) / int64(perPage))
	if lastPage < 1 {
		lastPage = 1
	}

	path := requestPath(r)
	link := func(n int) string {
		q := url.Values{}
		for k, v := range r.URL.Query() {
			q[k] = v
		}
		q.Set("page", strconv.Itoa(n))
		return path + "?" + q.Encode()
	}

	p := Page[T]{
		CurrentPage:  page,
		Data:         items,
		FirstPageURL: link(1),
		LastPage:     lastPage,
		LastPageURL:  link(lastPage),
		Path:         path,
		PerPage:      perPage,
		Total:        total,
	}

	if len(items) > 0 {
		from := (page-1)*perPage + 1
		to := from + len(items) - 1
		p.From, p.To = &from, &to
	}
	if page < lastPage {
		next := link(page + 1)
		p.NextPageURL = &next
	}
	if page > 1 {
		prev := link(page - 1)
		p.PrevPageURL = &prev
	}
	return p
}

func requestPath(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + r.Host + r.URL.Path
}
