package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

const defaultStockBaseURL = "https://www.alphavantage.co/query"

// stockZeroPrice is the stock tool's failure sentinel. A price of "0" never
// occurs for a real listed quote, so it doubles as the not-found marker.
const stockZeroPrice = "0"

type stockTool struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func newStockTool(apiKey, baseURL string, client *http.Client) Tool {
	s := &stockTool{apiKey: apiKey, baseURL: baseURL, client: client}
	return Tool{
		Definition: mcptypes.NewTool(NameStock,
			mcptypes.WithDescription("Get current stock price for a symbol"),
			mcptypes.WithString("symbol",
				mcptypes.Required(),
				mcptypes.Description("Stock symbol like AAPL or GOOGL"),
			),
		),
		Execute: s.execute,
	}
}

func (s *stockTool) execute(ctx context.Context, args map[string]any) map[string]any {
	symbol := stringArg(args, "symbol")

	fail := func(reason string) map[string]any {
		return map[string]any{
			"symbol": symbol,
			"price":  stockZeroPrice,
			"error":  reason,
		}
	}

	q := url.Values{}
	q.Set("function", "GLOBAL_QUOTE")
	q.Set("symbol", symbol)
	q.Set("apikey", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return fail("Failed to fetch stock")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fail("Failed to fetch stock")
	}
	defer resp.Body.Close()

	// Alpha Vantage keys its fields by numbered labels like "05. price".
	var data struct {
		Quote map[string]string `json:"Global Quote"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return fail("Failed to fetch stock")
	}

	price, err := strconv.ParseFloat(data.Quote["05. price"], 64)
	if err != nil {
		return fail("Stock not found")
	}

	change, _ := strconv.ParseFloat(data.Quote["09. change"], 64)

	return map[string]any{
		"symbol":        data.Quote["01. symbol"],
		"price":         fmt.Sprintf("%.2f", price),
		"change":        fmt.Sprintf("%.2f", change),
		"changePercent": data.Quote["10. change percent"],
	}
}
