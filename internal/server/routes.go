package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lgmendez/diasync/internal/diagram"
)

// registerRoutes mounts the diagram REST surface.
func (s *Server) registerRoutes(r chi.Router) {
	r.Post("/users", s.createUserHandler)

	r.Group(func(r chi.Router) {
		r.Use(requireBearer)
		r.Get("/diagrams/user/{userID}", s.listDiagramsHandler)
		r.Post("/diagrams", s.createDiagramHandler)
		r.Put("/diagrams/{id}", s.updateDiagramHandler)
		r.Delete("/diagrams/{id}", s.deleteDiagramHandler)
		r.Post("/diagrams/{id}/participants", s.addParticipantHandler)
		r.Delete("/diagrams/{id}/participants/{userID}", s.removeParticipantHandler)
	})
}

// requireBearer rejects requests without a bearer credential. The
// reference server does not verify the token's contents; it exists so
// clients exercise the 401 path when misconfigured.
func requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") == "" {
			writeError(w, http.StatusUnauthorized, "missing or invalid credential")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) createUserHandler(w http.ResponseWriter, r *http.Request) {
	var u User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if u.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	if err := s.store.CreateUser(r.Context(), &u); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// listDiagramsHandler responds with the enveloped shape ({"data": [...]})
// that clients must tolerate.
func (s *Server) listDiagramsHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	diagrams, err := s.store.ListByUser(r.Context(), userID)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if diagrams == nil {
		diagrams = []diagram.Diagram{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": diagrams})
}

func (s *Server) createDiagramHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name  string `json:"name"`
		Owner string `json:"owner"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := diagram.ValidateName(body.Name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Owner == "" {
		writeError(w, http.StatusBadRequest, "owner is required")
		return
	}

	d, err := s.store.CreateDiagram(r.Context(), body.Name, body.Owner)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) updateDiagramHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch diagram.UpdatePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if patch.Name == nil {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}
	if err := diagram.ValidateName(*patch.Name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	d, err := s.store.RenameDiagram(r.Context(), id, *patch.Name)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.hub.Broadcast(id, d)
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) deleteDiagramHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	requester := r.URL.Query().Get("userId")
	if requester == "" {
		writeError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	if err := s.store.DeleteDiagram(r.Context(), id, requester); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addParticipantHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	d, err := s.store.AddParticipant(r.Context(), id, body.Email)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.hub.Broadcast(id, d)
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) removeParticipantHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := chi.URLParam(r, "userID")

	d, err := s.store.RemoveParticipant(r.Context(), id, userID)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.hub.Broadcast(id, d)
	writeJSON(w, http.StatusOK, d)
}

// writeStoreError maps store errors onto the REST status codes clients
// classify on.
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, ErrForbidden):
		writeError(w, http.StatusForbidden, "you do not own this diagram")
	case errors.Is(err, ErrConflict):
		writeError(w, http.StatusUnprocessableEntity, "user is already a participant")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
