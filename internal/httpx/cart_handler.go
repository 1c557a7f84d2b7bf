package httpx

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pratofeito/marmita-orders/internal/apperr"
	"github.com/pratofeito/marmita-orders/internal/cart"
)

type addItemReq struct {
	DishID   int64 `json:"dish_id"`
	Quantity *int  `json:"quantity,omitempty"`
}

type updateItemsReq struct {
	Quantities []int `json:"quantities"`
}

type cartResp struct {
	Entries []cart.Entry `json:"entries"`
	Total   string       `json:"total"`
}

func toCartResp(c cart.Cart) cartResp {
	return cartResp{Entries: nonNil(c.Entries), Total: c.Total().StringFixed(2)}
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := s.Cart.Get(ctx, sessionFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResp(c))
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := s.Cart.Clear(ctx, sessionFrom(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := s.Cart.Add(ctx, sessionFrom(r.Context()), req.DishID, qty)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResp(c))
}

func (s *Server) removeCartItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, r, apperr.ErrIndexOutOfRange)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := s.Cart.Remove(ctx, sessionFrom(r.Context()), index)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResp(c))
}

func (s *Server) updateCartItems(w http.ResponseWriter, r *http.Request) {
	var req updateItemsReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := s.Cart.UpdateQuantities(ctx, sessionFrom(r.Context()), req.Quantities)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResp(c))
}
