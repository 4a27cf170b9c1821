package asset

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/karen-369/spark/pkg/model"
	"gopkg.in/yaml.v3"
)

var ErrUnknownAsset = errors.New("unknown asset")

// DefaultAssets is used when no assets file is configured.
var DefaultAssets = []model.Asset{
	{ID: "usdc", Symbol: "USDC", Decimals: 6},
	{ID: "btc", Symbol: "BTC", Decimals: 8},
	{ID: "eth", Symbol: "ETH", Decimals: 9},
	{ID: "uni", Symbol: "UNI", Decimals: 9},
}

type AssetRepository interface {
	BySymbol(symbol string) (model.Asset, error)
	ByID(id model.AssetID) (model.Asset, error)
	// ResolvePair resolves base and quote symbols into a pair.
	ResolvePair(base, quote string) (model.Pair, error)
	List() []model.Asset
}

type assetRepositoryImpl struct {
	assets   []model.Asset
	bySymbol map[string]model.Asset
	byID     map[model.AssetID]model.Asset
}

type assetsFile struct {
	Assets []model.Asset `yaml:"assets"`
}

// LoadFile reads a registry of the form
//
//	assets:
//	  - id: btc
//	    symbol: BTC
//	    decimals: 8
func LoadFile(path string) (AssetRepository, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading assets file: %w", err)
	}
	var f assetsFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parsing assets file %s: %w", path, err)
	}
	return NewAssetRepository(f.Assets)
}

func NewAssetRepository(assets []model.Asset) (AssetRepository, error) {
	r := &assetRepositoryImpl{
		bySymbol: make(map[string]model.Asset, len(assets)),
		byID:     make(map[model.AssetID]model.Asset, len(assets)),
	}
	for _, a := range assets {
		if a.ID == "" || a.Symbol == "" {
			return nil, fmt.Errorf("asset %+v: id and symbol are required", a)
		}
		if a.Decimals < 0 {
			return nil, fmt.Errorf("asset %s: negative decimals", a.Symbol)
		}
		key := strings.ToUpper(a.Symbol)
		if _, dup := r.bySymbol[key]; dup {
			return nil, fmt.Errorf("asset %s: duplicate symbol", a.Symbol)
		}
		if _, dup := r.byID[a.ID]; dup {
			return nil, fmt.Errorf("asset %s: duplicate id %s", a.Symbol, a.ID)
		}
		r.bySymbol[key] = a
		r.byID[a.ID] = a
		r.assets = append(r.assets, a)
	}
	return r, nil
}

func (r *assetRepositoryImpl) BySymbol(symbol string) (model.Asset, error) {
	a, ok := r.bySymbol[strings.ToUpper(symbol)]
	if !ok {
		return model.Asset{}, fmt.Errorf("%w: %s", ErrUnknownAsset, symbol)
	}
	return a, nil
}

func (r *assetRepositoryImpl) ByID(id model.AssetID) (model.Asset, error) {
	a, ok := r.byID[id]
	if !ok {
		return model.Asset{}, fmt.Errorf("%w: id %s", ErrUnknownAsset, id)
	}
	return a, nil
}

func (r *assetRepositoryImpl) ResolvePair(base, quote string) (model.Pair, error) {
	b, err := r.BySymbol(base)
	if err != nil {
		return model.Pair{}, err
	}
	q, err := r.BySymbol(quote)
	if err != nil {
		return model.Pair{}, err
	}
	if b.ID == q.ID {
		return model.Pair{}, fmt.Errorf("%w: pair %s/%s uses the same asset twice", ErrUnknownAsset, base, quote)
	}
	return model.Pair{Base: b, Quote: q}, nil
}

func (r *assetRepositoryImpl) List() []model.Asset {
	out := make([]model.Asset, len(r.assets))
	copy(out, r.assets)
	return out
}

// ParsePairs resolves "BASE/QUOTE" entries, as found in the PAIRS setting.
func ParsePairs(r AssetRepository, specs []string) ([]model.Pair, error) {
	pairs := make([]model.Pair, 0, len(specs))
	for _, s := range specs {
		base, quote, ok := strings.Cut(s, "/")
		if !ok {
			return nil, fmt.Errorf("pair %q: expected BASE/QUOTE", s)
		}
		p, err := r.ResolvePair(strings.TrimSpace(base), strings.TrimSpace(quote))
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}
