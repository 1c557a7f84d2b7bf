package httpx

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/pratofeito/marmita-orders/internal/orders"
)

type transitionReq struct {
	Status orders.ItemStatus `json:"status"`
}

func (s *Server) kitchenItems(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	items, err := s.Kitchen.ListActive(ctx, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (s *Server) transitionItem(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req transitionReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	it, err := s.Kitchen.Transition(ctx, p, id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) comanda(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	d, err := s.Kitchen.OrderDetail(ctx, p, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) comandaQR(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	png, err := s.Kitchen.ComandaQR(ctx, p, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (s *Server) kitchenBoard(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	b, err := s.Kitchen.Board(ctx, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}
