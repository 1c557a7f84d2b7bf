package catalog

import "github.com/shopspring/decimal"

type Dish struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Size        string          `json:"size"`
	ImageURL    string          `json:"image_url"`
	Available   bool            `json:"available"`
}

type DishInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Size        string          `json:"size"`
	ImageURL    string          `json:"image_url"`
	Available   *bool           `json:"available,omitempty"`
}

// FeaturedLimit is how many dishes the storefront front page shows.
const FeaturedLimit = 6

func sampleDishes() []Dish {
	d := func(name, desc, price, category, size string) Dish {
		return Dish{
			Name:        name,
			Description: desc,
			Price:       decimal.RequireFromString(price),
			Category:    category,
			Size:        size,
			Available:   true,
		}
	}
	return []Dish{
		d("Marmita Fitness Frango", "Frango grelhado, arroz integral, brócolis e batata doce", "25.90", "fitness", "media"),
		d("Marmita Vegetariana", "Quinoa, grão-de-bico, legumes assados e salada", "22.50", "vegetariana", "media"),
		d("Marmita Low Carb", "Carne moída, abobrinha refogada, salada verde", "28.90", "lowcarb", "media"),
		d("Marmita Fitness Peixe", "Filé de peixe grelhado, arroz integral, legumes no vapor", "27.90", "fitness", "media"),
		d("Marmita Vegana", "Lentilha, abóbora assada, couve e quinoa", "24.90", "vegana", "media"),
		d("Marmita Kids", "Arroz, feijão, carne moída e batata frita", "20.90", "kids", "pequena"),
	}
}
