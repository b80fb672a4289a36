package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultPortfolioBaseURL = "https://papi.binance.com"

// PortfolioClient implements PortfolioSource against the Binance
// portfolio-margin API. The endpoints it needs have no upstream client
// library, so requests are signed here: the query string gets a millisecond
// timestamp and an HMAC-SHA256 signature, and the API key travels in the
// X-MBX-APIKEY header.
type PortfolioClient struct {
	baseURL    string
	apiKey     string
	secretKey  string
	httpClient *http.Client
}

// NewPortfolioClient creates a portfolio-margin client for one API-key pair.
func NewPortfolioClient(apiKey, secretKey string) *PortfolioClient {
	return &PortfolioClient{
		baseURL:    defaultPortfolioBaseURL,
		apiKey:     apiKey,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type portfolioBalancePayload struct {
	Asset               string `json:"asset"`
	TotalWalletBalance  string `json:"totalWalletBalance"`
	CrossMarginBorrowed string `json:"crossMarginBorrowed"`
	UMWalletBalance     string `json:"umWalletBalance"`
	UMUnrealizedPNL     string `json:"umUnrealizedPNL"`
	CMWalletBalance     string `json:"cmWalletBalance"`
	CMUnrealizedPNL     string `json:"cmUnrealizedPNL"`
}

type portfolioPositionPayload struct {
	Symbol           string `json:"symbol"`
	PositionAmt      string `json:"positionAmt"`
	UnRealizedProfit string `json:"unRealizedProfit"`
	Notional         string `json:"notional"`
	NotionalValue    string `json:"notionalValue"`
}

// FetchPortfolioBalances returns the per-asset portfolio-margin balances.
func (c *PortfolioClient) FetchPortfolioBalances(ctx context.Context) ([]PortfolioBalance, error) {
	var payload []portfolioBalancePayload
	if err := c.getJSON(ctx, "/papi/v1/balance", &payload); err != nil {
		return nil, err
	}

	balances := make([]PortfolioBalance, 0, len(payload))
	for _, p := range payload {
		b := PortfolioBalance{Asset: p.Asset}
		var err error
		if b.TotalWalletBalance, err = parseDecimal("totalWalletBalance", p.TotalWalletBalance); err != nil {
			return nil, err
		}
		if b.CrossMarginBorrowed, err = parseDecimal("crossMarginBorrowed", p.CrossMarginBorrowed); err != nil {
			return nil, err
		}
		if b.UMWalletBalance, err = parseDecimal("umWalletBalance", p.UMWalletBalance); err != nil {
			return nil, err
		}
		if b.UMUnrealizedPNL, err = parseDecimal("umUnrealizedPNL", p.UMUnrealizedPNL); err != nil {
			return nil, err
		}
		if b.CMWalletBalance, err = parseDecimal("cmWalletBalance", p.CMWalletBalance); err != nil {
			return nil, err
		}
		if b.CMUnrealizedPNL, err = parseDecimal("cmUnrealizedPNL", p.CMUnrealizedPNL); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, nil
}

// FetchUMPositions returns the USDT-margined position risk entries.
func (c *PortfolioClient) FetchUMPositions(ctx context.Context) ([]FuturesPosition, error) {
	return c.fetchPositions(ctx, "/papi/v1/um/positionRisk")
}

// FetchCMPositions returns the coin-margined position risk entries.
func (c *PortfolioClient) FetchCMPositions(ctx context.Context) ([]FuturesPosition, error) {
	return c.fetchPositions(ctx, "/papi/v1/cm/positionRisk")
}

func (c *PortfolioClient) fetchPositions(ctx context.Context, path string) ([]FuturesPosition, error) {
	var payload []portfolioPositionPayload
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return nil, err
	}

	positions := make([]FuturesPosition, 0, len(payload))
	for _, p := range payload {
		pos := FuturesPosition{Symbol: p.Symbol}
		var err error
		if pos.PositionAmt, err = parseDecimal("positionAmt", p.PositionAmt); err != nil {
			return nil, err
		}
		if pos.UnrealizedProfit, err = parseDecimal("unRealizedProfit", p.UnRealizedProfit); err != nil {
			return nil, err
		}
		// UM position risk reports notional, CM reports notionalValue.
		notional := p.Notional
		if notional == "" {
			notional = p.NotionalValue
		}
		if pos.Notional, err = parseDecimal("notional", notional); err != nil {
			return nil, err
		}
		positions = append(positions, pos)
	}
	return positions, nil
}

// getJSON performs a signed GET request and unmarshals the JSON response.
func (c *PortfolioClient) getJSON(ctx context.Context, path string, dest any) error {
	q := url.Values{}
	q.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	q.Set("recvWindow", "5000")
	query := q.Encode()

	reqURL := c.baseURL + path + "?" + query + "&signature=" + c.sign(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-MBX-APIKEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, path, string(body))
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("parsing JSON from %s: %w", path, err)
	}
	return nil
}

func (c *PortfolioClient) sign(query string) string {
	mac := hmac.New(sha256.New, []byte(c.secretKey))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}
