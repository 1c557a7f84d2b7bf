package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pratofeito/marmita-orders/internal/accounts"
	"github.com/pratofeito/marmita-orders/internal/apperr"
	"github.com/pratofeito/marmita-orders/internal/cart"
	"github.com/pratofeito/marmita-orders/internal/catalog"
	"github.com/pratofeito/marmita-orders/internal/kitchen"
	"github.com/pratofeito/marmita-orders/internal/orders"
	"github.com/pratofeito/marmita-orders/internal/session"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAccounts struct {
	AccountService
	byLogin map[string]accounts.Account
}

func (s *stubAccounts) Authenticate(_ context.Context, login, password string) (accounts.Account, error) {
	acc, ok := s.byLogin[login]
	if !ok || password != "secret" {
		return accounts.Account{}, apperr.ErrInvalidCredentials
	}
	return acc, nil
}

func (s *stubAccounts) Lookup(_ context.Context, p accounts.Principal) (accounts.Account, error) {
	for _, acc := range s.byLogin {
		if acc.Principal() == p {
			return acc, nil
		}
	}
	return accounts.Account{}, apperr.ErrNotFound
}

type stubCatalog struct {
	CatalogService
	dishes map[int64]catalog.Dish
}

func (s *stubCatalog) Get(_ context.Context, id int64) (*catalog.Dish, error) {
	d, ok := s.dishes[id]
	if !ok {
		return nil, fmt.Errorf("dish %d: %w", id, apperr.ErrNotFound)
	}
	return &d, nil
}

func (s *stubCatalog) Menu(_ context.Context, _ string) ([]catalog.Dish, error) {
	var out []catalog.Dish
	for _, d := range s.dishes {
		if d.Available {
			out = append(out, d)
		}
	}
	return out, nil
}

type addressBook map[int64]string

func (a addressBook) CustomerAddress(_ context.Context, id int64) (string, error) {
	return a[id], nil
}

type harness struct {
	t       *testing.T
	handler http.Handler
	repo    *orders.MemoryRepo
	redis   *miniredis.Miniredis
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ana := &accounts.Customer{ID: 1, Username: "ana", Address: "Rua A, 1"}
	beto := &accounts.Customer{ID: 2, Username: "beto"}
	loja := &accounts.Merchant{ID: 1, Name: "Cozinha da Vila"}
	accs := &stubAccounts{byLogin: map[string]accounts.Account{
		"ana":             accounts.CustomerAccount(ana),
		"beto":            accounts.CustomerAccount(beto),
		"Cozinha da Vila": accounts.MerchantAccount(loja),
	}}

	cat := &stubCatalog{dishes: map[int64]catalog.Dish{
		1: {ID: 1, Name: "Marmita Fitness Frango", Price: decimal.RequireFromString("25.90"), Available: true},
		2: {ID: 2, Name: "Marmita Kids", Price: decimal.RequireFromString("20.90"), Available: false},
	}}

	repo := orders.NewMemoryRepo()
	srv := &Server{
		Service:  "test",
		Accounts: accs,
		Sessions: session.NewStore(rdb, time.Hour),
		Catalog:  cat,
		Cart:     cart.NewService(cat, cart.NewRedisStore(rdb, time.Hour)),
		Orders:   orders.NewService(repo, addressBook{1: ana.Address}, orders.NewRedisIdempotency(rdb), nil, "test"),
		Kitchen:  kitchen.NewService(repo, kitchen.NewRedisBoard(rdb), nil, "test", "http://localhost:8080"),
	}
	return &harness{t: t, handler: NewRouter(srv), repo: repo, redis: mr}
}

func (h *harness) do(method, path, session string, body any, headers ...string) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf *bytes.Buffer
	switch b := body.(type) {
	case nil:
		buf = &bytes.Buffer{}
	case string:
		buf = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(h.t, err)
		buf = bytes.NewBuffer(raw)
	}
	req := httptest.NewRequest(method, path, buf)
	if session != "" {
		req.Header.Set(HeaderSessionID, session)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	h.handler.ServeHTTP(rr, req)
	return rr
}

func (h *harness) login(name string) string {
	h.t.Helper()
	rr := h.do(http.MethodPost, "/auth/login", "", loginReq{Login: name, Password: "secret"})
	require.Equal(h.t, http.StatusOK, rr.Code, rr.Body.String())
	var resp loginResp
	require.NoError(h.t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(h.t, resp.SessionID)
	return resp.SessionID
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	rr := h.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestLogin(t *testing.T) {
	h := newHarness(t)

	rr := h.do(http.MethodPost, "/auth/login", "", loginReq{Login: "ana", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = h.do(http.MethodPost, "/auth/login", "", "not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	sid := h.login("ana")
	rr = h.do(http.MethodGet, "/profile", sid, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	acc := decode[accounts.Account](t, rr)
	assert.Equal(t, accounts.KindCustomer, acc.Kind)
	assert.Equal(t, "ana", acc.Customer.Username)

	rr = h.do(http.MethodPost, "/auth/logout", sid, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = h.do(http.MethodGet, "/profile", sid, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCartRequiresSession(t *testing.T) {
	h := newHarness(t)
	rr := h.do(http.MethodGet, "/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = h.do(http.MethodGet, "/cart", "no-such-session", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSessionStoreOutageIsServerError(t *testing.T) {
	h := newHarness(t)
	sid := h.login("ana")

	h.redis.SetError("ERR store unavailable")
	rr := h.do(http.MethodGet, "/cart", sid, nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	h.redis.SetError("")
	rr = h.do(http.MethodGet, "/cart", sid, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCartEndpoints(t *testing.T) {
	h := newHarness(t)
	sid := h.login("ana")

	rr := h.do(http.MethodPost, "/cart/items", sid, map[string]any{"dish_id": 1})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rr = h.do(http.MethodPost, "/cart/items", sid, map[string]any{"dish_id": 1})
	require.Equal(t, http.StatusOK, rr.Code)
	c := decode[cartResp](t, rr)
	require.Len(t, c.Entries, 1)
	assert.Equal(t, 2, c.Entries[0].Quantity)
	assert.Equal(t, "51.80", c.Total)

	rr = h.do(http.MethodPost, "/cart/items", sid, map[string]any{"dish_id": 2})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	rr = h.do(http.MethodPost, "/cart/items", sid, map[string]any{"dish_id": 99})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = h.do(http.MethodPost, "/cart/items", sid, map[string]any{"dish_id": 1, "quantity": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = h.do(http.MethodPut, "/cart/items", sid, updateItemsReq{Quantities: []int{5}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "129.50", decode[cartResp](t, rr).Total)

	rr = h.do(http.MethodDelete, "/cart/items/3", sid, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	rr = h.do(http.MethodDelete, "/cart/items/0", sid, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[cartResp](t, rr).Entries)

	rr = h.do(http.MethodDelete, "/cart", sid, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestPlaceOrderFlow(t *testing.T) {
	h := newHarness(t)
	ana := h.login("ana")

	rr := h.do(http.MethodPost, "/orders", ana, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code, "empty cart")

	rr = h.do(http.MethodPost, "/cart/items", ana, map[string]any{"dish_id": 1, "quantity": 2})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = h.do(http.MethodPost, "/orders", ana, placeOrderReq{Note: "sem cebola"}, HeaderIdempotencyKey, "abc")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	placed := decode[placeOrderResp](t, rr)
	assert.Equal(t, "51.80", placed.Total)

	rr = h.do(http.MethodGet, "/cart", ana, nil)
	assert.Empty(t, decode[cartResp](t, rr).Entries)

	// replay with the same key returns the same order
	rr = h.do(http.MethodPost, "/orders", ana, placeOrderReq{}, HeaderIdempotencyKey, "abc")
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, placed.OrderID, decode[placeOrderResp](t, rr).OrderID)

	rr = h.do(http.MethodGet, "/orders", ana, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]orders.Order](t, rr), 1)

	path := fmt.Sprintf("/orders/%d", placed.OrderID)
	rr = h.do(http.MethodGet, path, ana, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	d := decode[orders.Detail](t, rr)
	require.Len(t, d.Items, 1)
	assert.Equal(t, orders.ItemSentToKitchen, d.Items[0].Status)
	assert.Equal(t, "sem cebola", d.Items[0].Note)

	beto := h.login("beto")
	rr = h.do(http.MethodGet, path, beto, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = h.do(http.MethodGet, "/orders/999", ana, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPlaceOrderEmptyChunkedBody(t *testing.T) {
	h := newHarness(t)
	ana := h.login("ana")

	rr := h.do(http.MethodPost, "/cart/items", ana, map[string]any{"dish_id": 1})
	require.Equal(t, http.StatusOK, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(""))
	req.ContentLength = -1
	req.Header.Set(HeaderSessionID, ana)
	rr = httptest.NewRecorder()
	h.handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "25.90", decode[placeOrderResp](t, rr).Total)

	rr = h.do(http.MethodPost, "/orders", ana, "{not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPlaceOrderMissingAddress(t *testing.T) {
	h := newHarness(t)
	beto := h.login("beto")

	rr := h.do(http.MethodPost, "/cart/items", beto, map[string]any{"dish_id": 1})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = h.do(http.MethodPost, "/orders", beto, placeOrderReq{})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	rr = h.do(http.MethodGet, "/cart", beto, nil)
	assert.Len(t, decode[cartResp](t, rr).Entries, 1)

	rr = h.do(http.MethodPost, "/orders", beto, placeOrderReq{Address: "Rua B, 2"})
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestOrdersRejectMerchant(t *testing.T) {
	h := newHarness(t)
	loja := h.login("Cozinha da Vila")
	rr := h.do(http.MethodGet, "/orders", loja, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestKitchenFlow(t *testing.T) {
	h := newHarness(t)
	ana := h.login("ana")
	loja := h.login("Cozinha da Vila")

	rr := h.do(http.MethodPost, "/cart/items", ana, map[string]any{"dish_id": 1})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = h.do(http.MethodPost, "/orders", ana, nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	orderID := decode[placeOrderResp](t, rr).OrderID

	rr = h.do(http.MethodGet, "/kitchen/items", ana, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = h.do(http.MethodGet, "/kitchen/items", loja, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	items := decode[[]orders.LineItem](t, rr)
	require.Len(t, items, 1)
	itemPath := fmt.Sprintf("/kitchen/items/%d/status", items[0].ID)

	rr = h.do(http.MethodPost, itemPath, loja, transitionReq{Status: "bogus"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = h.do(http.MethodPost, itemPath, loja, transitionReq{Status: orders.ItemDone})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, orders.ItemDone, decode[orders.LineItem](t, rr).Status)

	rr = h.do(http.MethodGet, "/kitchen/items", loja, nil)
	assert.Empty(t, decode[[]orders.LineItem](t, rr))

	rr = h.do(http.MethodPost, "/kitchen/items/999/status", loja, transitionReq{Status: orders.ItemDone})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = h.do(http.MethodGet, fmt.Sprintf("/kitchen/orders/%d", orderID), loja, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[orders.Detail](t, rr).Items, 1)

	rr = h.do(http.MethodGet, fmt.Sprintf("/kitchen/orders/%d/qrcode", orderID), loja, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("\x89PNG")))

	rr = h.do(http.MethodGet, "/kitchen/board", loja, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, decode[map[string]int64](t, rr), "sent_to_kitchen")
}

func TestMenu(t *testing.T) {
	h := newHarness(t)
	rr := h.do(http.MethodGet, "/menu", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]catalog.Dish](t, rr), 1)

	rr = h.do(http.MethodGet, "/dishes/2", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decode[catalog.Dish](t, rr).Available)

	rr = h.do(http.MethodGet, "/dishes/abc", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("order 1: %w", apperr.ErrNotFound), http.StatusNotFound},
		{apperr.ErrForbidden, http.StatusForbidden},
		{apperr.ErrUnauthenticated, http.StatusUnauthorized},
		{apperr.ErrInvalidCredentials, http.StatusUnauthorized},
		{apperr.ErrDuplicateAccount, http.StatusConflict},
		{apperr.ErrEmptyCart, http.StatusUnprocessableEntity},
		{apperr.ErrMissingAddress, http.StatusUnprocessableEntity},
		{apperr.ErrInvalidStatus, http.StatusUnprocessableEntity},
		{apperr.ErrInvalidPrice, http.StatusUnprocessableEntity},
		{errBadJSON, http.StatusBadRequest},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, testCase := range tests {
		assert.Equal(t, testCase.want, statusFor(testCase.err), testCase.err.Error())
	}
}
