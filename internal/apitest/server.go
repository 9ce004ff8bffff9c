// Package apitest runs an in-memory DoD Manager backend for tests.
package apitest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Makepad-fr/dod/internal/model"
)

const (
	BasePath = "/api/v1"
	secret   = "apitest-secret"
)

// Recorded is one request as the server received it.
type Recorded struct {
	Method        string
	Path          string
	Authorization string
	Body          []byte
}

// Decode unmarshals the recorded body into v.
func (r Recorded) Decode(v any) error { return json.Unmarshal(r.Body, v) }

type account struct {
	user     model.User
	password string
}

type failure struct {
	status int
	msg    string
}

type Server struct {
	srv *httptest.Server

	mu           sync.Mutex
	accounts     map[string]*account // by email
	tokens       map[string]uint
	projects     []model.Project
	participants []model.Participant
	dods         []model.DoD
	nextID       uint
	requests     []Recorded
	failures     map[string]failure
}

// NewServer starts a server closed by t.Cleanup.
func NewServer(t testing.TB) *Server {
	s := &Server{
		accounts: map[string]*account{},
		tokens:   map[string]uint{},
		failures: map[string]failure{},
	}
	s.srv = httptest.NewServer(s.routes())
	t.Cleanup(s.srv.Close)
	return s
}

// URL is the API base URL, including the /api/v1 prefix.
func (s *Server) URL() string { return s.srv.URL + BasePath }

// AddUser registers an account directly, bypassing the API.
func (s *Server) AddUser(username, email, password string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(username, email, password)
}

func (s *Server) addUserLocked(username, email, password string) model.User {
	s.nextID++
	u := model.User{ID: s.nextID, Username: username, Email: email}
	s.accounts[strings.ToLower(email)] = &account{user: u, password: password}
	return u
}

// IssueToken returns a valid signed token for u.
func (s *Server) IssueToken(u model.User) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(u)
}

func (s *Server) issueLocked(u model.User) string {
	claims := jwt.MapClaims{
		"user_id":  u.ID,
		"username": u.Username,
		"email":    u.Email,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
		"iat":      time.Now().Unix(),
		"jti":      uuid.NewString(),
		"iss":      "dod-backend",
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		panic(err)
	}
	s.tokens[tok] = u.ID
	return tok
}

// RevokeAll makes every issued token answer 401.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = map[string]uint{}
}

// Fail makes method+path (relative to the base path) answer status with msg.
// An empty msg sends a body without an "error" field.
func (s *Server) Fail(method, path string, status int, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, msg: msg}
}

// AddProject stores a project owned by owner and returns it.
func (s *Server) AddProject(owner model.User, name, description string) model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addProjectLocked(owner, name, description)
}

func (s *Server) addProjectLocked(owner model.User, name, description string) model.Project {
	s.nextID++
	o := owner
	p := model.Project{
		ID:          s.nextID,
		Name:        name,
		Description: description,
		OwnerID:     owner.ID,
		Owner:       &o,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	s.projects = append(s.projects, p)
	return p
}

// DoDs returns the DoDs stored for projectID.
func (s *Server) DoDs(projectID uint) []model.DoD {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.DoD
	for _, d := range s.dods {
		if d.ProjectID == projectID {
			out = append(out, d)
		}
	}
	return out
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Recorded, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request to method+path.
func (s *Server) LastRequest(method, path string) (Recorded, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		r := s.requests[i]
		if r.Method == method && r.Path == path {
			return r, true
		}
	}
	return Recorded{}, false
}

// Count returns how many requests hit method+path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Use(s.injectFailures)

	r.Route(BasePath, func(r chi.Router) {
		r.Post("/auth/login", s.login)
		r.Post("/auth/register", s.register)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Route("/projects", func(r chi.Router) {
				r.Get("/", s.listProjects)
				r.Post("/", s.createProject)
				r.Post("/{id}/participants", s.addParticipant)
				r.Get("/{id}/dods", s.listDoDs)
			})
			r.Route("/dods", func(r chi.Router) {
				r.Post("/", s.createDoD)
				r.Post("/{id}/items", s.addItem)
			})
		})
	})
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
		s.mu.Lock()
		s.requests = append(s.requests, Recorded{
			Method:        r.Method,
			Path:          strings.TrimPrefix(r.URL.Path, BasePath),
			Authorization: r.Header.Get("Authorization"),
			Body:          body,
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, ok := s.failures[r.Method+" "+strings.TrimPrefix(r.URL.Path, BasePath)]
		s.mu.Unlock()
		if ok {
			if f.msg == "" {
				respondWithJSON(w, f.status, map[string]string{})
				return
			}
			respondWithError(w, f.status, f.msg)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if h == "" {
			respondWithError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}
		tok := strings.TrimPrefix(h, "Bearer ")
		s.mu.Lock()
		_, ok := s.tokens[tok]
		s.mu.Unlock()
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) currentUser(r *http.Request) model.User {
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.tokens[tok]
	for _, a := range s.accounts {
		if a.user.ID == id {
			return a.user
		}
	}
	return model.User{ID: id}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[strings.ToLower(req.Email)]
	if !ok || a.password != req.Password {
		respondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"token": s.issueLocked(a.user), "user": a.user})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[strings.ToLower(req.Email)]; exists {
		respondWithError(w, http.StatusConflict, "User already exists")
		return
	}
	u := s.addUserLocked(req.Username, req.Email, req.Password)
	respondWithJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"token":   s.issueLocked(u),
		"user":    u,
	})
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	u := s.currentUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Project{}
	for _, p := range s.projects {
		if p.OwnerID == u.ID || s.isParticipantLocked(p.ID, u.ID) {
			out = append(out, p)
		}
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"projects": out})
}

func (s *Server) isParticipantLocked(projectID, userID uint) bool {
	for _, pp := range s.participants {
		if pp.ProjectID == projectID && pp.UserID == userID {
			return true
		}
	}
	return false
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		respondWithError(w, http.StatusBadRequest, "name is required")
		return
	}
	u := s.currentUser(r)
	s.mu.Lock()
	p := s.addProjectLocked(u, req.Name, req.Description)
	s.mu.Unlock()
	respondWithJSON(w, http.StatusCreated, map[string]any{"message": "Project created successfully", "project": p})
}

func (s *Server) addParticipant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Invalid project ID")
	if !ok {
		return
	}
	var req struct {
		Email string     `json:"email"`
		Role  model.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, found := s.accounts[strings.ToLower(req.Email)]
	if !found {
		respondWithError(w, http.StatusNotFound, "User not found")
		return
	}
	if s.isParticipantLocked(id, a.user.ID) {
		respondWithError(w, http.StatusConflict, "User already participant")
		return
	}
	s.nextID++
	u := a.user
	pp := model.Participant{ID: s.nextID, ProjectID: id, UserID: u.ID, User: &u, Role: req.Role}
	s.participants = append(s.participants, pp)
	respondWithJSON(w, http.StatusCreated, map[string]any{"message": "Participant added successfully", "participant": pp})
}

func (s *Server) listDoDs(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Invalid project ID")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.DoD{}
	for _, d := range s.dods {
		if d.ProjectID == id {
			out = append(out, d)
		}
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"dods": out})
}

func (s *Server) createDoD(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		ProjectID   uint   `json:"project_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		respondWithError(w, http.StatusBadRequest, "title is required")
		return
	}
	u := s.currentUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	d := model.DoD{
		ID:          s.nextID,
		Title:       req.Title,
		Description: req.Description,
		ProjectID:   req.ProjectID,
		CreatedBy:   u.ID,
		IsActive:    true,
		Creator:     &u,
		Items:       []model.Item{},
	}
	s.dods = append(s.dods, d)
	respondWithJSON(w, http.StatusCreated, map[string]any{"message": "DoD created successfully", "dod": d})
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Invalid DoD ID")
	if !ok {
		return
	}
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		IsRequired  bool   `json:"is_required"`
		Order       int    `json:"order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		respondWithError(w, http.StatusBadRequest, "title is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.dods {
		if s.dods[i].ID != id {
			continue
		}
		s.nextID++
		it := model.Item{
			ID:          s.nextID,
			DoDID:       id,
			Title:       req.Title,
			Description: req.Description,
			IsRequired:  req.IsRequired,
			Order:       req.Order,
		}
		s.dods[i].Items = append(s.dods[i].Items, it)
		respondWithJSON(w, http.StatusCreated, map[string]any{"message": "DoD item added successfully", "item": it})
		return
	}
	respondWithError(w, http.StatusNotFound, "DoD not found")
}

func pathID(w http.ResponseWriter, r *http.Request, msg string) (uint, bool) {
	n, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, msg)
		return 0, false
	}
	return uint(n), true
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, `{"error":%q}`, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
