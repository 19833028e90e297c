// Package gatewaytest runs an in-memory MiComedor backend over httptest so
// gateway and console code can be exercised end to end. Every request is
// recorded.
package gatewaytest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Call is one recorded request.
type Call struct {
	Method    string
	Path      string
	Body      []byte
	Auth      string
	RequestID string
}

// Decode unmarshals the recorded body into v.
func (c Call) Decode(v any) error {
	return json.Unmarshal(c.Body, v)
}

// Failure is a scripted error response.
type Failure struct {
	Status int
	Body   any
}

// idKeys maps each entity to its identifier field.
var idKeys = map[string]string{
	"beneficiary":       "idBeneficiary",
	"product":           "idProduct",
	"ration":            "idRation",
	"budget":            "idBudget",
	"task":              "idTaskCoordination",
	"note":              "idNote",
	"rationType":        "idRationType",
	"typeOfTask":        "idTypeOfTask",
	"budgetCategory":    "idBudgetCategory",
	"unitOfMeasurement": "idUnitOfMeasurement",
	"productType":       "idProductType",
}

// Server is the fake backend.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	calls    []Call
	records  map[string][]map[string]any
	nextID   map[string]int64
	reports  map[string]any
	failures map[string]Failure
	tokens   map[string]string
	users    []map[string]any
}

// NewServer starts a fake backend closed at test cleanup.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		records:  make(map[string][]map[string]any),
		nextID:   make(map[string]int64),
		reports:  make(map[string]any),
		failures: make(map[string]Failure),
		tokens:   make(map[string]string),
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

// BaseURL returns the server URL with a trailing slash, like the console config.
func (s *Server) BaseURL() string {
	return s.Server.URL + "/"
}

func (s *Server) router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.record)
	r.HandleFunc("/authenticate", s.authenticate).Methods(http.MethodPost)
	r.HandleFunc("/users", s.register).Methods(http.MethodPost)

	api := r.NewRoute().Subrouter()
	api.Use(s.requireToken, s.scripted)
	api.HandleFunc("/{entity}", s.list).Methods(http.MethodGet)
	api.HandleFunc("/{entity}", s.insert).Methods(http.MethodPost)
	api.HandleFunc("/{entity}/byUser/{id:[0-9]+}", s.listByUser).Methods(http.MethodGet)
	api.HandleFunc("/{entity}/{id:[0-9]+}", s.update).Methods(http.MethodPut)
	api.HandleFunc("/{entity}/{id:[0-9]+}", s.remove).Methods(http.MethodDelete)
	api.HandleFunc("/{entity}/{report}/{id:[0-9]+}", s.report).Methods(http.MethodGet)
	return r
}

// Seed stores records for entity. Records are converted to JSON objects;
// missing identifiers are assigned.
func (s *Server) Seed(entity string, records ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		obj := toObject(rec)
		key := idKey(entity)
		if id := int64Of(obj[key]); id > 0 {
			if id > s.nextID[entity] {
				s.nextID[entity] = id
			}
		} else {
			s.nextID[entity]++
			obj[key] = s.nextID[entity]
		}
		s.records[entity] = append(s.records[entity], obj)
	}
}

// SetReport scripts the payload returned by GET /{entity}/{report}/{id}.
func (s *Server) SetReport(entity, report string, payload any) {
	s.mu.Lock()
	s.reports[entity+"/"+report] = payload
	s.mu.Unlock()
}

// FailNext makes the next request matching method and path fail.
func (s *Server) FailNext(method, path string, status int, body any) {
	s.mu.Lock()
	s.failures[method+" "+path] = Failure{Status: status, Body: body}
	s.mu.Unlock()
}

// IssueToken accepts username/password and answers with token.
func (s *Server) IssueToken(username, password, token string) {
	s.mu.Lock()
	s.tokens[username+"\x00"+password] = token
	s.mu.Unlock()
}

// Calls returns every recorded request.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallsTo returns recorded requests with the given method.
func (s *Server) CallsTo(method string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Writes returns recorded POST, PUT and DELETE requests.
func (s *Server) Writes() []Call {
	var out []Call
	for _, c := range s.Calls() {
		switch c.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			if c.Path == "/authenticate" {
				continue
			}
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded requests.
func (s *Server) Reset() {
	s.mu.Lock()
	s.calls = nil
	s.mu.Unlock()
}

// Records returns the stored objects of entity.
func (s *Server) Records(entity string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0, len(s.records[entity]))
	for _, obj := range s.records[entity] {
		out = append(out, cloneObject(obj))
	}
	return out
}

// Registrations returns the accounts posted to /users.
func (s *Server) Registrations() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.users...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))
		s.mu.Lock()
		s.calls = append(s.calls, Call{
			Method:    r.Method,
			Path:      r.URL.Path,
			Body:      body,
			Auth:      r.Header.Get("Authorization"),
			RequestID: r.Header.Get("X-Request-ID"),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "missing token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) scripted(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		failure, ok := s.failures[key]
		delete(s.failures, key)
		s.mu.Unlock()
		if ok {
			writeJSON(w, failure.Status, failure.Body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	s.mu.Lock()
	token, ok := s.tokens[creds.Username+"\x00"+creds.Password]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "bad credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"jwttoken": token})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var obj map[string]any
	if err := json.NewDecoder(r.Body).Decode(&obj); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u["username"] == obj["username"] {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "user exists"})
			return
		}
	}
	obj["idUser"] = len(s.users) + 1
	s.users = append(s.users, obj)
	writeJSON(w, http.StatusOK, obj)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Records(mux.Vars(r)["entity"]))
}

func (s *Server) listByUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	owner, _ := strconv.ParseInt(vars["id"], 10, 64)
	out := []map[string]any{}
	for _, obj := range s.Records(vars["entity"]) {
		if ownerOf(obj) == owner {
			out = append(out, obj)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) insert(w http.ResponseWriter, r *http.Request) {
	entity := mux.Vars(r)["entity"]
	var obj map[string]any
	if err := json.NewDecoder(r.Body).Decode(&obj); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if entity == "beneficiary" {
		for _, existing := range s.records[entity] {
			if int64Of(existing["dniBenefeciary"]) == int64Of(obj["dniBenefeciary"]) && active(existing) {
				writeJSON(w, http.StatusBadRequest, map[string]string{"message": "duplicate beneficiary"})
				return
			}
		}
		obj["active"] = true
	}
	s.nextID[entity]++
	obj[idKey(entity)] = s.nextID[entity]
	s.records[entity] = append(s.records[entity], obj)
	writeJSON(w, http.StatusOK, obj)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	entity := vars["entity"]
	id, _ := strconv.ParseInt(vars["id"], 10, 64)
	var obj map[string]any
	if err := json.NewDecoder(r.Body).Decode(&obj); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.records[entity] {
		if int64Of(existing[idKey(entity)]) != id {
			continue
		}
		obj[idKey(entity)] = id
		s.records[entity][i] = obj
		writeJSON(w, http.StatusOK, obj)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": fmt.Sprintf("%s %d not found", entity, id)})
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	entity := vars["entity"]
	id, _ := strconv.ParseInt(vars["id"], 10, 64)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.records[entity] {
		if int64Of(existing[idKey(entity)]) != id {
			continue
		}
		if entity == "beneficiary" {
			existing["active"] = false
		} else {
			s.records[entity] = append(s.records[entity][:i], s.records[entity][i+1:]...)
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": fmt.Sprintf("%s %d not found", entity, id)})
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	s.mu.Lock()
	payload, ok := s.reports[vars["entity"]+"/"+vars["report"]]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "unknown report"})
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Trace-ID", uuid.NewString())
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func idKey(entity string) string {
	if key, ok := idKeys[entity]; ok {
		return key
	}
	return "id"
}

func toObject(v any) map[string]any {
	if obj, ok := v.(map[string]any); ok {
		return cloneObject(obj)
	}
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("gatewaytest: encode seed: %v", err))
	}
	obj := map[string]any{}
	if err := json.Unmarshal(data, &obj); err != nil {
		panic(fmt.Sprintf("gatewaytest: seed must be an object: %v", err))
	}
	return obj
}

func cloneObject(obj map[string]any) map[string]any {
	data, _ := json.Marshal(obj)
	out := map[string]any{}
	_ = json.Unmarshal(data, &out)
	return out
}

func ownerOf(obj map[string]any) int64 {
	if users, ok := obj["users"].(map[string]any); ok {
		return int64Of(users["idUser"])
	}
	return int64Of(obj["user_id"])
}

func active(obj map[string]any) bool {
	v, ok := obj["active"].(bool)
	return !ok || v
}

func int64Of(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	default:
		return 0
	}
}

// SortedPaths returns the distinct recorded paths, for debugging failures.
func (s *Server) SortedPaths() []string {
	seen := map[string]struct{}{}
	for _, c := range s.Calls() {
		seen[c.Method+" "+c.Path] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
