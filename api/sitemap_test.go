package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayPath(t *testing.T) {
	assert.Equal(t, "/user/{id}", displayPath("/user/{id:[0-9]+}"))
	assert.Equal(t, "/user", displayPath("/user"))
	assert.Equal(t, "/a/{x}/b/{y}", displayPath("/a/{x:[a-z]+}/b/{y}"))
}

func TestWantsJSON(t *testing.T) {
	tests := []struct {
		name   string
		target string
		accept string
		want   bool
	}{
		{"no accept", "/", "", false},
		{"curl default", "/", "*/*", false},
		{"json only", "/", "application/json", true},
		{"browser", "/", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8", false},
		{"json preferred by q", "/", "text/html;q=0.5, application/json", true},
		{"tie goes to html", "/", "application/json, text/html", false},
		{"axios style", "/", "application/json, text/plain, */*", true},
		{"query overrides header", "/?format=json", "text/html", true},
		{"query html", "/?format=html", "application/json", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			assert.Equal(t, tt.want, wantsJSON(req))
		})
	}
}

func TestSitemapLinksSkipParameterizedAndNonGet(t *testing.T) {
	noop := func(http.ResponseWriter, *http.Request) {}
	s := &Sitemap{Routes: []Route{
		{http.MethodGet, "/", "sitemap", noop},
		{http.MethodPost, "/user", "create user", noop},
		{http.MethodGet, "/user/{id:[0-9]+}", "get user", noop},
		{http.MethodGet, "/user", "list users", noop},
	}}

	assert.Equal(t, []SitemapEntry{
		{Method: "GET", Path: "/", Name: "sitemap"},
		{Method: "GET", Path: "/user", Name: "list users"},
	}, s.Links())
}
