package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/pratofeito/marmita-orders/internal/catalog"
)

type availabilityReq struct {
	Available bool `json:"available"`
}

func (s *Server) menu(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ds, err := s.Catalog.Menu(ctx, r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(ds))
}

func (s *Server) featured(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ds, err := s.Catalog.Featured(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(ds))
}

func (s *Server) categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	cs, err := s.Catalog.Categories(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(cs))
}

func (s *Server) dish(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	d, err := s.Catalog.Get(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) merchantDishes(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ds, err := s.Catalog.ListAll(ctx, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(ds))
}

func (s *Server) createDish(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	var in catalog.DishInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	d, err := s.Catalog.Create(ctx, p, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) updateDish(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in catalog.DishInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	d, err := s.Catalog.Update(ctx, p, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) deleteDish(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.Catalog.Delete(ctx, p, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setAvailability(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req availabilityReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.Catalog.SetAvailability(ctx, p, id, req.Available); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "available": req.Available})
}

// nonNil keeps empty lists as [] in responses.
func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
