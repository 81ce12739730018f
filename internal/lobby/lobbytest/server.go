// Package lobbytest provides an in-process fake of the Lobby and Identity
// HTTP services for tests.
package lobbytest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// Call is one request received by the Server.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Body   map[string]any
	// Query of a GraphQL request, without the "query" prefix.
	GraphQL string
	Cookies []*http.Cookie
}

type graphqlRoute struct {
	match  string
	status int
	data   any
}

// Server records every request and answers from registered routes.
// Unregistered routes answer 404 with a JSON error body.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	graphql  []graphqlRoute
	calls    []Call
}

// NewServer starts a Server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{handlers: map[string]http.HandlerFunc{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Handle registers h for "METHOD /path".
func (s *Server) Handle(route string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[route] = h
}

// JSON registers a fixed JSON answer for "METHOD /path".
func (s *Server) JSON(route string, status int, v any) {
	s.Handle(route, func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, status, v)
	})
}

// Error registers a service error answer for "METHOD /path".
func (s *Server) Error(route string, status int, code string, extra map[string]string) {
	body := map[string]string{"error": code}
	for k, v := range extra {
		body[k] = v
	}
	s.JSON(route, status, body)
}

// GraphQL answers GraphQL queries containing match with {"data": data}.
// A status other than 200 answers with an error body instead.
func (s *Server) GraphQL(match string, status int, data any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphql = append([]graphqlRoute{{match: match, status: status, data: data}}, s.graphql...)
}

// Calls returns every request received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallsTo returns the requests received for path.
func (s *Server) CallsTo(path string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// WriteJSON writes v with a JSON content type.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(data))

	call := Call{
		Method:  r.Method,
		Path:    r.URL.Path,
		Query:   r.URL.Query(),
		Cookies: r.Cookies(),
	}
	_ = json.Unmarshal(data, &call.Body)
	if q, ok := call.Body["query"].(string); ok && r.URL.Path == "/api/graphql" {
		call.GraphQL = strings.TrimPrefix(q, "query")
	}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	handler := s.handlers[r.Method+" "+r.URL.Path]
	routes := s.graphql
	s.mu.Unlock()

	if handler != nil {
		handler(w, r)
		return
	}

	if call.GraphQL != "" {
		for _, route := range routes {
			if strings.Contains(call.GraphQL, route.match) {
				if route.status != http.StatusOK {
					WriteJSON(w, route.status, map[string]string{"error": "graphql_error"})
					return
				}
				WriteJSON(w, http.StatusOK, map[string]any{"data": route.data})
				return
			}
		}
	}

	WriteJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "message": "no route for " + r.Method + " " + r.URL.Path})
}
