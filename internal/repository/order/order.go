package order

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/karen-369/spark/pkg/model"
	"github.com/shopspring/decimal"
)

// OrderRecord is a row of the orders table. Prices are NULL while they
// cannot be computed.
type OrderRecord struct {
	ID           string              `db:"id"`
	BaseAsset    string              `db:"base_asset"`
	QuoteAsset   string              `db:"quote_asset"`
	Price        decimal.NullDecimal `db:"price"`
	ReversePrice decimal.NullDecimal `db:"reverse_price"`
	Amount       decimal.Decimal     `db:"amount"`
	Total        decimal.Decimal     `db:"total"`
	AmountLeft   decimal.Decimal     `db:"amount_left"`
	TotalLeft    decimal.Decimal     `db:"total_left"`
	IsActive     bool                `db:"is_active"`
	CreatedAt    time.Time           `db:"created_at"`
}

func (r OrderRecord) ToModel() model.Order {
	return model.Order{
		ID:           r.ID,
		BaseAsset:    model.AssetID(r.BaseAsset),
		QuoteAsset:   model.AssetID(r.QuoteAsset),
		Price:        model.PriceFromNullDecimal(r.Price),
		ReversePrice: model.PriceFromNullDecimal(r.ReversePrice),
		Amount:       r.Amount,
		Total:        r.Total,
		AmountLeft:   r.AmountLeft,
		TotalLeft:    r.TotalLeft,
	}
}

type OrderRepository interface {
	// ListActiveOrders returns every active order, oldest first.
	ListActiveOrders(ctx context.Context) ([]model.Order, error)
}

type orderRepositoryImpl struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) OrderRepository {
	return &orderRepositoryImpl{db: db}
}

const selectOrder = `SELECT id, base_asset, quote_asset, price, reverse_price,
       amount, total, amount_left, total_left, is_active, created_at
  FROM orders`

func (r *orderRepositoryImpl) ListActiveOrders(ctx context.Context) ([]model.Order, error) {
	var records []OrderRecord
	err := r.db.SelectContext(ctx, &records,
		selectOrder+` WHERE is_active=true ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list active orders: %w", err)
	}

	orders := make([]model.Order, len(records))
	for i, rec := range records {
		orders[i] = rec.ToModel()
	}
	return orders, nil
}
