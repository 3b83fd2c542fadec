// Package apitest provides an in-memory fake of the job board REST API for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/KhushiMandaliya2/RoleCall/internal/types"
)

// Route names, matching the operation names used by the api client.
const (
	RouteListPostings  = "list_postings"
	RouteCreatePosting = "create_posting"
	RouteUpdatePosting = "update_posting"
	RouteDeletePosting = "delete_posting"
	RouteListJobs      = "list_jobs"
	RouteGetJob        = "get_job"
	RouteApply         = "apply"
)

// Request is one request received by the fake.
type Request struct {
	Route     string
	Method    string
	Path      string
	UserID    string
	Auth      string
	RequestID string
}

// Override replaces the next response of a route.
type Override struct {
	Status int
	// Detail is sent as {"detail": Detail} when Body is empty.
	Detail string
	// Body is sent verbatim.
	Body string
	// Drop closes the connection without a response.
	Drop bool
}

// Server is a fake job board API backed by memory.
type Server struct {
	*httptest.Server

	mu           sync.Mutex
	postings     []types.JobPosting
	owners       map[string]string
	applications map[string]map[string]bool
	closed       map[string]string
	nextID       int
	requests     []Request
	overrides    map[string][]Override
	holds        map[string]chan struct{}
}

// New starts a fake server. Close it with s.Close().
func New() *Server {
	s := &Server{
		owners:       make(map[string]string),
		applications: make(map[string]map[string]bool),
		closed:       make(map[string]string),
		overrides:    make(map[string][]Override),
		holds:        make(map[string]chan struct{}),
		nextID:       1,
	}

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/job_postings/", s.route(RouteListPostings, s.listPostings))
		r.Post("/job_postings/", s.route(RouteCreatePosting, s.createPosting))
		r.Put("/job_postings/{id}", s.route(RouteUpdatePosting, s.updatePosting))
		r.Delete("/job_postings/{id}", s.route(RouteDeletePosting, s.deletePosting))
		r.Get("/jobs/", s.route(RouteListJobs, s.listJobs))
		r.Get("/jobs/{id}", s.route(RouteGetJob, s.getJob))
		r.Post("/jobs/{id}/apply", s.route(RouteApply, s.apply))
	})

	s.Server = httptest.NewServer(r)
	return s
}

// Seed adds a posting and returns it with its assigned ID.
func (s *Server) Seed(title, description string) types.JobPosting {
	return s.SeedOwned(title, description, "")
}

// SeedOwned adds a posting owned by ownerUserID.
func (s *Server) SeedOwned(title, description, ownerUserID string) types.JobPosting {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.insertLocked(title, description)
	if ownerUserID != "" {
		s.owners[p.ID] = ownerUserID
	}
	return p
}

// MarkApplied records an application made outside the client under test.
func (s *Server) MarkApplied(jobID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markAppliedLocked(jobID, userID)
}

// CloseJob rejects every further apply to jobID with reason.
func (s *Server) CloseJob(jobID, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed[jobID] = reason
}

// Postings returns the server-side postings.
func (s *Server) Postings() []types.JobPosting {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.JobPosting, len(s.postings))
	copy(out, s.postings)
	return out
}

// Applied reports whether userID has applied to jobID.
func (s *Server) Applied(jobID, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applications[jobID][userID]
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many requests hit route.
func (s *Server) Count(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Route == route {
			n++
		}
	}
	return n
}

// FailNext makes the next call of route answer with status and detail.
func (s *Server) FailNext(route string, status int, detail string) {
	s.OverrideNext(route, Override{Status: status, Detail: detail})
}

// OverrideNext queues an override for route.
func (s *Server) OverrideNext(route string, o Override) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[route] = append(s.overrides[route], o)
}

// Hold blocks every call of route after it has been recorded until the returned
// function is called. The returned channel receives once per held request.
func (s *Server) Hold(route string) (arrived <-chan struct{}, release func()) {
	gate := make(chan struct{})
	seen := make(chan struct{}, 16)
	s.mu.Lock()
	s.holds[route] = gate
	s.holds[route+"#seen"] = seen
	s.mu.Unlock()

	var once sync.Once
	return seen, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.holds, route)
			delete(s.holds, route+"#seen")
			s.mu.Unlock()
			close(gate)
		})
	}
}

func (s *Server) route(name string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Route:     name,
			Method:    r.Method,
			Path:      r.URL.Path,
			UserID:    r.URL.Query().Get("user_id"),
			Auth:      r.Header.Get("Authorization"),
			RequestID: r.Header.Get("X-Request-ID"),
		})
		gate := s.holds[name]
		seen := s.holds[name+"#seen"]
		var override *Override
		if queue := s.overrides[name]; len(queue) > 0 {
			override = &queue[0]
			s.overrides[name] = queue[1:]
		}
		s.mu.Unlock()

		if gate != nil {
			seen <- struct{}{}
			<-gate
		}

		if override != nil {
			s.writeOverride(w, *override)
			return
		}
		next(w, r)
	}
}

func (s *Server) writeOverride(w http.ResponseWriter, o Override) {
	if o.Drop {
		if hj, ok := w.(http.Hijacker); ok {
			if conn, _, err := hj.Hijack(); err == nil {
				_ = conn.Close()
				return
			}
		}
		panic(http.ErrAbortHandler)
	}
	status := o.Status
	if status == 0 {
		status = http.StatusOK
	}
	if o.Body != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(o.Body))
		return
	}
	if o.Detail != "" {
		writeJSON(w, status, map[string]string{"detail": o.Detail})
		return
	}
	w.WriteHeader(status)
}

func (s *Server) listPostings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Postings())
}

func (s *Server) createPosting(w http.ResponseWriter, r *http.Request) {
	var in types.PostingInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "Invalid request body"})
		return
	}

	s.mu.Lock()
	p := s.insertLocked(in.Title, in.Description)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, p)
}

func (s *Server) updatePosting(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in types.PostingInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "Invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.postings {
		if s.postings[i].ID == id {
			s.postings[i].Title = in.Title
			s.postings[i].Description = in.Description
			writeJSON(w, http.StatusOK, s.postings[i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Job posting not found"})
}

func (s *Server) deletePosting(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.postings {
		if s.postings[i].ID == id {
			s.postings = append(s.postings[:i], s.postings[i+1:]...)
			delete(s.owners, id)
			writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Job posting not found"})
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")

	s.mu.Lock()
	jobs := make([]types.JobListing, 0, len(s.postings))
	for _, p := range s.postings {
		jobs = append(jobs, s.listingLocked(p, userID))
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := r.URL.Query().Get("user_id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.postings {
		if p.ID == id {
			writeJSON(w, http.StatusOK, s.listingLocked(p, userID))
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Job not found"})
}

func (s *Server) apply(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if reason, ok := s.closed[id]; ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": reason})
		return
	}
	for _, p := range s.postings {
		if p.ID == id {
			s.markAppliedLocked(id, userID)
			writeJSON(w, http.StatusOK, types.ApplyResult{
				Message:  "Successfully applied to job: " + p.Title,
				JobID:    id,
				JobTitle: p.Title,
			})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Job not found"})
}

func (s *Server) insertLocked(title, description string) types.JobPosting {
	p := types.JobPosting{
		ID:          strconv.Itoa(s.nextID),
		Title:       title,
		Description: description,
	}
	s.nextID++
	s.postings = append(s.postings, p)
	return p
}

func (s *Server) markAppliedLocked(jobID, userID string) {
	if s.applications[jobID] == nil {
		s.applications[jobID] = make(map[string]bool)
	}
	s.applications[jobID][userID] = true
}

func (s *Server) listingLocked(p types.JobPosting, userID string) types.JobListing {
	l := types.JobListing{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		HasApplied:  userID != "" && s.applications[p.ID][userID],
	}
	if owner, ok := s.owners[p.ID]; ok {
		l.OwnerUserID = &owner
	}
	return l
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
