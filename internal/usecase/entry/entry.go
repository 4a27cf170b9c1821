package entry

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/karen-369/spark/internal/engine"
	"github.com/karen-369/spark/pkg/model"
	"github.com/karen-369/spark/pkg/util"
)

// Draft is the order being prepared by one wallet. BuyPrice and SellPrice
// are atomic units of QuoteAsset as integer strings; the Display fields are
// the same prices scaled back by the asset's decimals.
type Draft struct {
	Wallet           string    `json:"wallet"`
	QuoteAsset       string    `json:"quoteAsset,omitempty"`
	BuyPrice         string    `json:"buyPrice,omitempty"`
	BuyPriceDisplay  string    `json:"buyPriceDisplay,omitempty"`
	BuyConfirmed     bool      `json:"buyConfirmed"`
	SellPrice        string    `json:"sellPrice,omitempty"`
	SellPriceDisplay string    `json:"sellPriceDisplay,omitempty"`
	SellConfirmed    bool      `json:"sellConfirmed"`
	UpdatedAt        time.Time `json:"updatedAt,omitzero"`
}

type EntryUseCase interface {
	// For returns the order entry of a wallet pricing in quote, for
	// engine.SelectRow.
	For(wallet string, quote model.Asset) engine.OrderEntry
	GetDraft(ctx context.Context, wallet string) Draft
	ResetDraft(ctx context.Context, wallet string)
}

type draft struct {
	quote                       model.Asset
	buy, sell                   *big.Int
	buyConfirmed, sellConfirmed bool
	updatedAt                   time.Time
}

type entryUseCaseImpl struct {
	mu     sync.Mutex
	drafts map[string]*draft
	now    func() time.Time
}

func NewEntryUseCase() EntryUseCase {
	return &entryUseCaseImpl{
		drafts: make(map[string]*draft),
		now:    time.Now,
	}
}

func (eu *entryUseCaseImpl) For(wallet string, quote model.Asset) engine.OrderEntry {
	return walletEntry{uc: eu, wallet: wallet, quote: quote}
}

func (eu *entryUseCaseImpl) GetDraft(ctx context.Context, wallet string) Draft {
	eu.mu.Lock()
	defer eu.mu.Unlock()

	out := Draft{Wallet: wallet}
	d, ok := eu.drafts[wallet]
	if !ok {
		return out
	}
	out.QuoteAsset = d.quote.Symbol
	if d.buy != nil {
		out.BuyPrice = d.buy.String()
		out.BuyPriceDisplay = util.FromAtomicUnits(d.buy, d.quote.Decimals).String()
	}
	if d.sell != nil {
		out.SellPrice = d.sell.String()
		out.SellPriceDisplay = util.FromAtomicUnits(d.sell, d.quote.Decimals).String()
	}
	out.BuyConfirmed = d.buyConfirmed
	out.SellConfirmed = d.sellConfirmed
	out.UpdatedAt = d.updatedAt
	return out
}

func (eu *entryUseCaseImpl) ResetDraft(ctx context.Context, wallet string) {
	eu.mu.Lock()
	delete(eu.drafts, wallet)
	eu.mu.Unlock()
}

// update applies fn to the wallet's draft. A draft priced in another quote
// asset starts over, since its units are no longer comparable.
func (eu *entryUseCaseImpl) update(wallet string, quote model.Asset, fn func(d *draft)) {
	eu.mu.Lock()
	defer eu.mu.Unlock()
	d, ok := eu.drafts[wallet]
	if !ok || d.quote.ID != quote.ID {
		d = &draft{quote: quote}
		eu.drafts[wallet] = d
	}
	fn(d)
	d.updatedAt = eu.now()
}

type walletEntry struct {
	uc     *entryUseCaseImpl
	wallet string
	quote  model.Asset
}

func (w walletEntry) SetBuyPrice(units *big.Int, confirmed bool) {
	w.uc.update(w.wallet, w.quote, func(d *draft) {
		d.buy = new(big.Int).Set(units)
		d.buyConfirmed = confirmed
	})
}

func (w walletEntry) SetSellPrice(units *big.Int, confirmed bool) {
	w.uc.update(w.wallet, w.quote, func(d *draft) {
		d.sell = new(big.Int).Set(units)
		d.sellConfirmed = confirmed
	})
}
