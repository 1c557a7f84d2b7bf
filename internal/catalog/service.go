package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/pratofeito/marmita-orders/internal/accounts"
	"github.com/pratofeito/marmita-orders/internal/apperr"
	log "github.com/sirupsen/logrus"
)

type Filter struct {
	OnlyAvailable bool
	Category      string
	Limit         int
}

type Repository interface {
	Insert(ctx context.Context, d *Dish) error
	Update(ctx context.Context, d *Dish) error
	SetAvailability(ctx context.Context, id int64, available bool) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*Dish, error)
	List(ctx context.Context, f Filter) ([]Dish, error)
	Categories(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
}

var _ Repository = (*Repo)(nil)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Menu lists orderable dishes, optionally restricted to one category.
func (s *Service) Menu(ctx context.Context, category string) ([]Dish, error) {
	return s.repo.List(ctx, Filter{OnlyAvailable: true, Category: strings.TrimSpace(category)})
}

func (s *Service) Featured(ctx context.Context) ([]Dish, error) {
	return s.repo.List(ctx, Filter{OnlyAvailable: true, Limit: FeaturedLimit})
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*Dish, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListAll(ctx context.Context, p accounts.Principal) ([]Dish, error) {
	if !p.IsMerchant() {
		return nil, apperr.ErrForbidden
	}
	return s.repo.List(ctx, Filter{})
}

func (s *Service) Create(ctx context.Context, p accounts.Principal, in DishInput) (*Dish, error) {
	if !p.IsMerchant() {
		return nil, apperr.ErrForbidden
	}
	d := Dish{Available: true}
	if err := apply(&d, in); err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, &d); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"dish_id": d.ID, "merchant_id": p.ID}).Info("dish created")
	return &d, nil
}

func (s *Service) Update(ctx context.Context, p accounts.Principal, id int64, in DishInput) (*Dish, error) {
	if !p.IsMerchant() {
		return nil, apperr.ErrForbidden
	}
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(d, in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) SetAvailability(ctx context.Context, p accounts.Principal, id int64, available bool) error {
	if !p.IsMerchant() {
		return apperr.ErrForbidden
	}
	return s.repo.SetAvailability(ctx, id, available)
}

// Delete removes the dish. Line items that reference it keep their own
// price and name snapshot.
func (s *Service) Delete(ctx context.Context, p accounts.Principal, id int64) error {
	if !p.IsMerchant() {
		return apperr.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.WithFields(log.Fields{"dish_id": id, "merchant_id": p.ID}).Info("dish deleted")
	return nil
}

// SeedSamples inserts the sample menu when the dishes table is empty.
func (s *Service) SeedSamples(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil || n > 0 {
		return 0, err
	}
	samples := sampleDishes()
	for i := range samples {
		if err := s.repo.Insert(ctx, &samples[i]); err != nil {
			return i, fmt.Errorf("seed %q: %w", samples[i].Name, err)
		}
	}
	return len(samples), nil
}

func apply(d *Dish, in DishInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return fmt.Errorf("dish name is required: %w", apperr.ErrInvalidInput)
	}
	if in.Price.IsNegative() {
		return apperr.ErrInvalidPrice
	}
	d.Name = name
	d.Description = strings.TrimSpace(in.Description)
	d.Price = in.Price.Round(2)
	d.Category = strings.TrimSpace(in.Category)
	d.Size = strings.TrimSpace(in.Size)
	d.ImageURL = strings.TrimSpace(in.ImageURL)
	if in.Available != nil {
		d.Available = *in.Available
	}
	return nil
}
