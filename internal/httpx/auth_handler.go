package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/pratofeito/marmita-orders/internal/accounts"
	log "github.com/sirupsen/logrus"
)

type loginReq struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResp struct {
	SessionID string           `json:"session_id"`
	Account   accounts.Account `json:"account"`
}

func (s *Server) registerCustomer(w http.ResponseWriter, r *http.Request) {
	var in accounts.CustomerInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := s.Accounts.RegisterCustomer(ctx, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) registerMerchant(w http.ResponseWriter, r *http.Request) {
	var in accounts.MerchantInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	m, err := s.Accounts.RegisterMerchant(ctx, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	acc, err := s.Accounts.Authenticate(ctx, req.Login, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := s.Sessions.Create(ctx, acc.Principal())
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.WithFields(log.Fields{"kind": acc.Kind, "account": acc.DisplayName()}).Info("logged in")
	writeJSON(w, http.StatusOK, loginResp{SessionID: id, Account: acc})
}

// logout drops the session and the cart stored with it.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := s.Sessions.Destroy(ctx, sessionFrom(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	acc, err := s.Accounts.Lookup(ctx, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	var in accounts.ProfileInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := s.Accounts.UpdateProfile(ctx, p, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
