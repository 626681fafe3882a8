package settlement

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fundgate/fundgate/internal/model"
	"github.com/fundgate/fundgate/internal/pkg/apperrors"
	"github.com/fundgate/fundgate/internal/pkg/logger"
)

// Client posts settlement instructions to a chain gateway over HTTP.
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

func (c *Client) post(ctx context.Context, path string, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.New(apperrors.ErrUpstream, "settlement submit failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return apperrors.New(apperrors.ErrUpstream,
			fmt.Sprintf("settlement returned status %d for %s", resp.StatusCode, path), nil)
	}
	return nil
}

func (c *Client) SendCash(ctx context.Context, transfer model.CashTransfer) error {
	return c.post(ctx, "/transfers/cash", transfer)
}

func (c *Client) TransferPosition(ctx context.Context, transfer model.PositionTransfer) error {
	return c.post(ctx, "/transfers/position", transfer)
}

func (c *Client) SubmitCommands(ctx context.Context, commands []model.OrderCommand) error {
	return c.post(ctx, "/commands", map[string]any{"commands": commands})
}

// LogSink is a Sink that only logs instructions. Used when no settlement
// endpoint is configured (dev and replay runs).
type LogSink struct{}

func (LogSink) SendCash(ctx context.Context, transfer model.CashTransfer) error {
	logger.Info("settlement: cash transfer",
		"to", transfer.ToAddress, "denom", transfer.Denom, "amount", transfer.Amount.String())
	return nil
}

func (LogSink) TransferPosition(ctx context.Context, transfer model.PositionTransfer) error {
	logger.Info("settlement: position transfer",
		"market_id", transfer.MarketID,
		"source", transfer.SourceSubaccountID,
		"destination", transfer.DestinationSubaccountID,
		"quantity", transfer.Quantity.String())
	return nil
}

func (LogSink) SubmitCommands(ctx context.Context, commands []model.OrderCommand) error {
	logger.Info("settlement: command batch", "count", len(commands))
	return nil
}
