package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fundgate/fundgate/internal/model"
	"github.com/fundgate/fundgate/internal/pkg/apperrors"
	"github.com/shopspring/decimal"
)

// Client queries a chain gateway over HTTP. Every method is a single
// point query; there is no streaming or subscription surface.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.New(apperrors.ErrUpstream, "oracle query failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return apperrors.NotFound(fmt.Sprintf("oracle record not found: %s", path))
	}
	if resp.StatusCode != http.StatusOK {
		return apperrors.New(apperrors.ErrUpstream,
			fmt.Sprintf("oracle returned status %d for %s", resp.StatusCode, path), nil)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) SpotMarket(ctx context.Context, marketID string) (*model.SpotMarket, error) {
	var out model.SpotMarket
	if err := c.get(ctx, "/spot_markets/"+marketID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DerivativeMarket(ctx context.Context, marketID string) (*model.DerivativeMarket, error) {
	var out model.DerivativeMarket
	if err := c.get(ctx, "/derivative_markets/"+marketID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SubaccountDeposit(ctx context.Context, subaccountID, denom string) (decimal.Decimal, error) {
	var out struct {
		TotalBalance decimal.Decimal `json:"total_balance"`
	}
	q := url.Values{"denom": {denom}}
	if err := c.get(ctx, "/subaccounts/"+subaccountID+"/deposits", q, &out); err != nil {
		return decimal.Zero, err
	}
	return out.TotalBalance, nil
}

func (c *Client) SubaccountPosition(ctx context.Context, marketID, subaccountID string) (*model.DerivativePosition, error) {
	var out struct {
		State *model.DerivativePosition `json:"state"`
	}
	q := url.Values{"market_id": {marketID}}
	if err := c.get(ctx, "/subaccounts/"+subaccountID+"/positions", q, &out); err != nil {
		return nil, err
	}
	return out.State, nil
}

func (c *Client) OraclePrice(ctx context.Context, source, baseDenom, quoteDenom string) (decimal.Decimal, error) {
	var out struct {
		Price decimal.Decimal `json:"price"`
	}
	q := url.Values{
		"source": {source},
		"base":   {baseDenom},
		"quote":  {quoteDenom},
	}
	if err := c.get(ctx, "/oracle/price", q, &out); err != nil {
		return decimal.Zero, err
	}
	return out.Price, nil
}

func (c *Client) DenomDecimals(ctx context.Context, denoms []string) (map[string]uint32, error) {
	var out struct {
		DenomDecimals []struct {
			Denom    string `json:"denom"`
			Decimals uint32 `json:"decimals"`
		} `json:"denom_decimals"`
	}
	q := url.Values{"denoms": {strings.Join(denoms, ",")}}
	if err := c.get(ctx, "/denom_decimals", q, &out); err != nil {
		return nil, err
	}

	decimals := make(map[string]uint32, len(out.DenomDecimals))
	for _, d := range out.DenomDecimals {
		decimals[d.Denom] = d.Decimals
	}
	return decimals, nil
}
