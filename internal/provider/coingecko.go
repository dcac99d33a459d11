package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/portwatch/reconciler/internal/domain"
)

// CoinGeckoDataSource is the data-source name CoinGecko-matched profiles carry.
const CoinGeckoDataSource = "COINGECKO"

// CoinGeckoClient matches identifiers against the CoinGecko search API.
type CoinGeckoClient struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
}

// NewCoinGeckoClient creates a CoinGecko search client.
func NewCoinGeckoClient(baseURL string, maxRetries int, baseDelay time.Duration) *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

// Name implements symbol.Matcher.
func (c *CoinGeckoClient) Name() string { return CoinGeckoDataSource }

type coinGeckoSearchResponse struct {
	Coins []struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	} `json:"coins"`
}

// Match implements symbol.Matcher against the CoinGecko search endpoint. Every
// candidate is a cryptocurrency quoted in USD.
func (c *CoinGeckoClient) Match(ctx context.Context, identifier domain.PartialSymbolIdentifier) ([]domain.SymbolProfile, error) {
	path := fmt.Sprintf("/search?query=%s", url.QueryEscape(identifier.Identifier))

	body, err := getWithRetry(ctx, c.httpClient, c.baseURL+path, c.maxRetries, c.baseDelay)
	if err != nil {
		return nil, fmt.Errorf("querying coingecko search: %w", err)
	}

	var parsed coinGeckoSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing coingecko search response: %w", err)
	}

	profiles := make([]domain.SymbolProfile, 0, len(parsed.Coins))
	for _, coin := range parsed.Coins {
		if coin.Symbol == "" {
			continue
		}
		profiles = append(profiles, domain.SymbolProfile{
			Symbol:        coin.Symbol + "-USD",
			DataSource:    CoinGeckoDataSource,
			Name:          coin.Name,
			Currency:      "USD",
			AssetClass:    domain.AssetClassLiquidity,
			AssetSubClass: domain.SubClassCryptocurrency,
			Identifiers:   []domain.PartialSymbolIdentifier{domain.NewIdentifier(coin.ID)},
		})
	}
	return profiles, nil
}
