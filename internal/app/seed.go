package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/leathric/storefront/internal/domain"
)

const seedImageBaseURL = "http://localhost:8080/uploads/products/"

// SeedDemoData заполняет пустой каталог демо-товарами кожевенной
// мастерской и заводит демо-пользователя. Повторный запуск ничего не делает.
func SeedDemoData(ctx context.Context, deps *Dependencies, logger *log.Entry) error {
	existing, _, err := deps.Products.List(ctx, 1, 1)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	now := time.Now().UTC()
	products := []domain.Product{
		seedProduct("Leather Jacket", "Classic full-grain leather jacket with durable stitching.", "219.99", "sample-leather-jacket.png", now),
		seedProduct("Leather Wallet", "Minimal bi-fold wallet made from premium vegetable tanned leather.", "49.99", "sample-leather-wallet.png", now),
		seedProduct("Leather Boots", "Rugged leather boots designed for comfort and all-day wear.", "149.99", "sample-leather-boots.png", now),
		seedProduct("Leather Belt", "Polished leather belt with brushed metal buckle.", "34.99", "sample-leather-belt.png", now),
		seedProduct("Leather Bag", "Spacious leather carry bag for daily essentials.", "179.99", "sample-leather-bag.png", now),
		seedProduct("Leather Gloves", "Soft leather gloves with warm inner lining.", "39.99", "sample-leather-gloves.png", now),
	}
	for _, product := range products {
		if err := deps.Products.Create(ctx, product); err != nil {
			return err
		}
	}

	demoUser := domain.User{
		ID:        "demo-user",
		Email:     "demo@leathric.local",
		FullName:  "Demo Customer",
		CreatedAt: now,
	}
	if _, err := deps.Users.GetByEmail(ctx, demoUser.Email); errors.Is(err, domain.ErrUserNotFound) {
		if err := deps.Users.Create(ctx, demoUser); err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
			return err
		}
	} else if err != nil {
		return err
	}

	logger.WithField("products", len(products)).Info("seeded demo catalog")
	return nil
}

func seedProduct(name, description, price, imageFile string, now time.Time) domain.Product {
	return domain.Product{
		ID:            uuid.NewString(),
		Name:          name,
		Description:   description,
		Price:         decimal.RequireFromString(price),
		StockQuantity: 25,
		ImageURL:      seedImageBaseURL + imageFile,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
