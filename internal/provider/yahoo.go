// Package provider contains the concrete symbol matchers backed by external
// market data APIs.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/portwatch/reconciler/internal/domain"
)

// YahooDataSource is the data-source name Yahoo-matched profiles carry.
const YahooDataSource = "YAHOO"

// YahooClient matches identifiers against the Yahoo Finance search endpoint.
type YahooClient struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
}

// NewYahooClient creates a Yahoo Finance search client.
func NewYahooClient(baseURL string, maxRetries int, baseDelay time.Duration) *YahooClient {
	return &YahooClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

// Name implements symbol.Matcher.
func (c *YahooClient) Name() string { return YahooDataSource }

type yahooSearchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		QuoteType string `json:"quoteType"`
		Currency  string `json:"currency"`
	} `json:"quotes"`
}

// Match implements symbol.Matcher against the Yahoo search endpoint.
func (c *YahooClient) Match(ctx context.Context, identifier domain.PartialSymbolIdentifier) ([]domain.SymbolProfile, error) {
	path := fmt.Sprintf("/v1/finance/search?q=%s&quotesCount=10&newsCount=0",
		url.QueryEscape(identifier.Identifier))

	body, err := getWithRetry(ctx, c.httpClient, c.baseURL+path, c.maxRetries, c.baseDelay)
	if err != nil {
		return nil, fmt.Errorf("querying yahoo search: %w", err)
	}

	var parsed yahooSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing yahoo search response: %w", err)
	}

	profiles := make([]domain.SymbolProfile, 0, len(parsed.Quotes))
	for _, q := range parsed.Quotes {
		if q.Symbol == "" {
			continue
		}
		name := q.LongName
		if name == "" {
			name = q.ShortName
		}
		class, subClass := classifyQuoteType(q.QuoteType)
		profiles = append(profiles, domain.SymbolProfile{
			Symbol:        q.Symbol,
			DataSource:    YahooDataSource,
			Name:          name,
			Currency:      q.Currency,
			AssetClass:    class,
			AssetSubClass: subClass,
		})
	}
	return profiles, nil
}

func classifyQuoteType(quoteType string) (domain.AssetClass, domain.AssetSubClass) {
	switch quoteType {
	case "EQUITY":
		return domain.AssetClassEquity, domain.SubClassStock
	case "ETF":
		return domain.AssetClassEquity, domain.SubClassEtf
	case "MUTUALFUND":
		return domain.AssetClassEquity, domain.SubClassMutualFund
	case "CRYPTOCURRENCY":
		return domain.AssetClassLiquidity, domain.SubClassCryptocurrency
	case "BOND":
		return domain.AssetClassFixedIncome, domain.SubClassBond
	default:
		return domain.AssetClassUndefined, domain.SubClassUndefined
	}
}

// getWithRetry performs a GET request with exponential backoff on 429.
func getWithRetry(ctx context.Context, client *http.Client, url string, maxRetries int, baseDelay time.Duration) ([]byte, error) {
	var lastErr error
	for attempt := range maxRetries + 1 {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("executing request: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("HTTP 429 at %s (attempt %d/%d)", url, attempt+1, maxRetries+1)
			if attempt < maxRetries {
				delay := baseDelay * time.Duration(1<<uint(attempt))
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(delay):
				}
				continue
			}
			return nil, lastErr
		}

		return nil, fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, url, string(body))
	}

	return nil, lastErr
}
