// Package tools declares the assistant's callable tools, executes them, and
// defines the failure vocabulary their results can carry.
//
// Tool failures are not errors: an executor that cannot produce data returns
// a normal-shaped payload carrying a designated sentinel value (for example
// condition "Unknown Location"), so failed results flow through the same
// storage and rendering paths as successful ones. Failed is the single
// predicate that recognizes those sentinels; both the render policy and the
// persistence filter use it, never a private copy.
package tools

import (
	"context"
	"net/http"
	"time"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// Tool names as the completion engine sees them.
const (
	NameWeather = "getWeather"
	NameStock   = "getStockPrice"
	NameRace    = "getF1Race"
)

// Executor runs one tool invocation. It never returns a Go error: transport
// and parse failures inside an executor are converted to the tool's failure
// sentinel payload before they can reach the model-visible layer.
type Executor func(ctx context.Context, args map[string]any) map[string]any

// Tool pairs a schema declaration with its executor.
type Tool struct {
	Definition mcptypes.Tool
	Execute    Executor
}

// Config carries the API credentials the executors need.
type Config struct {
	WeatherAPIKey string
	StockAPIKey   string

	// HTTPClient is used for all outbound tool requests. Defaults to a
	// client with a 10s timeout.
	HTTPClient *http.Client
}

// Registry is the immutable set of tools handed to the completion engine.
// It is constructed once at startup and passed explicitly into generation
// calls; there is no ambient singleton.
type Registry struct {
	tools  []Tool
	byName map[string]Tool
}

// NewRegistry builds the registry with the three data tools.
func NewRegistry(cfg Config) *Registry {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}

	r := &Registry{byName: make(map[string]Tool)}
	r.register(newWeatherTool(cfg.WeatherAPIKey, defaultWeatherBaseURL, cfg.HTTPClient))
	r.register(newStockTool(cfg.StockAPIKey, defaultStockBaseURL, cfg.HTTPClient))
	r.register(newRaceTool(defaultRaceBaseURL, cfg.HTTPClient))
	return r
}

func (r *Registry) register(t Tool) {
	r.tools = append(r.tools, t)
	r.byName[t.Definition.Name] = t
}

// Definitions returns the tool declarations in registration order.
func (r *Registry) Definitions() []mcptypes.Tool {
	defs := make([]mcptypes.Tool, len(r.tools))
	for i, t := range r.tools {
		defs[i] = t.Definition
	}
	return defs
}

// Execute runs the named tool. An unknown tool name produces an error
// payload rather than a Go error, matching the executor contract.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) map[string]any {
	t, ok := r.byName[name]
	if !ok {
		return map[string]any{"error": "unknown tool: " + name}
	}
	return t.Execute(ctx, args)
}

// stringArg extracts a string argument, tolerating absent or mistyped values.
func stringArg(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	s, _ := args[key].(string)
	return s
}
