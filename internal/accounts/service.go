package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pratofeito/marmita-orders/internal/apperr"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type Repository interface {
	CustomerExists(ctx context.Context, username, email string) (bool, error)
	InsertCustomer(ctx context.Context, c *Customer) error
	CustomerByUsername(ctx context.Context, username string) (*Customer, error)
	CustomerByID(ctx context.Context, id int64) (*Customer, error)
	UpdateCustomerProfile(ctx context.Context, id int64, in ProfileInput) error
	MerchantExists(ctx context.Context, name, email string) (bool, error)
	InsertMerchant(ctx context.Context, m *Merchant) error
	MerchantByName(ctx context.Context, name string) (*Merchant, error)
	MerchantByID(ctx context.Context, id int64) (*Merchant, error)
}

var _ Repository = (*Repo)(nil)

type Service struct {
	repo Repository
	cost int
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, cost: bcrypt.DefaultCost}
}

func (s *Service) RegisterCustomer(ctx context.Context, in CustomerInput) (*Customer, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("username, email and password are required: %w", apperr.ErrInvalidInput)
	}

	exists, err := s.repo.CustomerExists(ctx, in.Username, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.ErrDuplicateAccount
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, err
	}
	c := &Customer{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Address:      strings.TrimSpace(in.Address),
		Phone:        strings.TrimSpace(in.Phone),
	}
	if err := s.repo.InsertCustomer(ctx, c); err != nil {
		return nil, err
	}
	log.WithField("customer_id", c.ID).Info("customer registered")
	return c, nil
}

func (s *Service) RegisterMerchant(ctx context.Context, in MerchantInput) (*Merchant, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("name, email and password are required: %w", apperr.ErrInvalidInput)
	}

	exists, err := s.repo.MerchantExists(ctx, in.Name, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.ErrDuplicateAccount
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, err
	}
	m := &Merchant{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Address:      strings.TrimSpace(in.Address),
	}
	if err := s.repo.InsertMerchant(ctx, m); err != nil {
		return nil, err
	}
	log.WithField("merchant_id", m.ID).Info("merchant registered")
	return m, nil
}

// Authenticate checks the login against customers by username first and
// then against merchants by store name.
func (s *Service) Authenticate(ctx context.Context, login, password string) (Account, error) {
	c, err := s.repo.CustomerByUsername(ctx, login)
	switch {
	case err == nil:
		if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil {
			return CustomerAccount(c), nil
		}
	case !errors.Is(err, apperr.ErrNotFound):
		return Account{}, err
	}

	m, err := s.repo.MerchantByName(ctx, login)
	switch {
	case err == nil:
		if bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(password)) == nil {
			return MerchantAccount(m), nil
		}
	case !errors.Is(err, apperr.ErrNotFound):
		return Account{}, err
	}
	return Account{}, apperr.ErrInvalidCredentials
}

func (s *Service) Lookup(ctx context.Context, p Principal) (Account, error) {
	switch p.Kind {
	case KindCustomer:
		c, err := s.repo.CustomerByID(ctx, p.ID)
		if err != nil {
			return Account{}, err
		}
		return CustomerAccount(c), nil
	case KindMerchant:
		m, err := s.repo.MerchantByID(ctx, p.ID)
		if err != nil {
			return Account{}, err
		}
		return MerchantAccount(m), nil
	}
	return Account{}, fmt.Errorf("account kind %q: %w", p.Kind, apperr.ErrNotFound)
}

// CustomerAddress returns the stored delivery address, possibly empty.
func (s *Service) CustomerAddress(ctx context.Context, customerID int64) (string, error) {
	c, err := s.repo.CustomerByID(ctx, customerID)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(c.Address), nil
}

func (s *Service) UpdateProfile(ctx context.Context, p Principal, in ProfileInput) (*Customer, error) {
	if !p.IsCustomer() {
		return nil, apperr.ErrForbidden
	}
	in.Address = strings.TrimSpace(in.Address)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := s.repo.UpdateCustomerProfile(ctx, p.ID, in); err != nil {
		return nil, err
	}
	return s.repo.CustomerByID(ctx, p.ID)
}
