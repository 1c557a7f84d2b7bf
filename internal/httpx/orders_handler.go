package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/pratofeito/marmita-orders/internal/orders"
	log "github.com/sirupsen/logrus"
)

const HeaderIdempotencyKey = "Idempotency-Key"

type placeOrderReq struct {
	Address string `json:"address"`
	Note    string `json:"note"`
}

type placeOrderResp struct {
	OrderID int64  `json:"order_id"`
	Total   string `json:"total"`
}

func (s *Server) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderReq
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, _ := principalFrom(r.Context())
	sid := sessionFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := s.Cart.Get(ctx, sid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	o, err := s.Orders.PlaceOrder(ctx, p.ID, &c, orders.PlaceOrderInput{
		Address:        req.Address,
		Note:           req.Note,
		IdempotencyKey: r.Header.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	// The order is committed; a failure here only leaves a stale cart behind.
	if err := s.Cart.Save(ctx, sid, c); err != nil {
		log.WithError(err).WithField("order_id", o.ID).Warn("cart not cleared after order")
	}
	writeJSON(w, http.StatusCreated, placeOrderResp{OrderID: o.ID, Total: o.Total.StringFixed(2)})
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := s.Orders.ListOrders(ctx, p.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, _ := principalFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	d, err := s.Orders.GetOrderDetail(ctx, id, p.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
