package main

import (
	"encoding/json"
	"os"

	"github.com/karen-369/spark/internal/engine"
	assetRepository "github.com/karen-369/spark/internal/repository/asset"
	"github.com/karen-369/spark/pkg/model"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// prints the compact and expanded views of a small hand-made book
func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	assets, err := assetRepository.NewAssetRepository(assetRepository.DefaultAssets)
	if err != nil {
		logger.Fatal().Err(err).Msg("asset registry")
	}
	pair, err := assets.ResolvePair("BTC", "USDC")
	if err != nil {
		logger.Fatal().Err(err).Msg("resolve pair")
	}

	orders := []model.Order{
		sample("1", "btc", "usdc", "20000.123456", "", "0.5"),
		sample("2", "btc", "usdc", "", "", "0.1"),
		sample("3", "btc", "usdc", "19950", "", "1.2"),
		sample("4", "usdc", "btc", "", "20100.5", "0.3"),
		sample("5", "usdc", "btc", "", "20075", "0.8"),
		sample("6", "eth", "usdc", "1500", "", "4"),
	}

	eng := engine.New(engine.DefaultRowCounts())
	for _, filter := range []engine.Filter{engine.FilterBoth, engine.FilterBidsOnly} {
		view := eng.Rebuild(orders, engine.Params{Pair: pair, Filter: filter, Precision: 2})
		b, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			logger.Fatal().Err(err).Msg("marshal view")
		}
		logger.Info().
			Str("filter", filter.String()).
			Str("spread", view.SpreadLabel).
			Msg("rebuilt ladder")
		os.Stdout.Write(append(b, '\n'))
	}
}

func sample(id, base, quote, price, reversePrice, amount string) model.Order {
	a := decimal.RequireFromString(amount)
	o := model.Order{
		ID:           id,
		BaseAsset:    model.AssetID(base),
		QuoteAsset:   model.AssetID(quote),
		Price:        model.MustPrice(price),
		ReversePrice: model.MustPrice(reversePrice),
		Amount:       a,
		AmountLeft:   a,
	}
	if p, ok := o.Price.Decimal(); ok {
		o.Total = p.Mul(a)
		o.TotalLeft = o.Total
	}
	if p, ok := o.ReversePrice.Decimal(); ok {
		o.Total = p.Mul(a)
		o.TotalLeft = o.Total
	}
	return o
}
