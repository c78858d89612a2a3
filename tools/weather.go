package tools

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/url"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

const defaultWeatherBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// weatherUnknownLocation is the weather tool's failure sentinel: a lookup
// that cannot produce data reports this as its condition.
const weatherUnknownLocation = "Unknown Location"

type weatherTool struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func newWeatherTool(apiKey, baseURL string, client *http.Client) Tool {
	w := &weatherTool{apiKey: apiKey, baseURL: baseURL, client: client}
	return Tool{
		Definition: mcptypes.NewTool(NameWeather,
			mcptypes.WithDescription("Get current weather for a location"),
			mcptypes.WithString("location",
				mcptypes.Required(),
				mcptypes.Description("City name like London or Mumbai"),
			),
		),
		Execute: w.execute,
	}
}

// weatherResponse is the subset of the OpenWeather payload we read. cod is
// a number on success but a string on error responses, hence json.Number
// via the any type.
type weatherResponse struct {
	Cod  any    `json:"cod"`
	Name string `json:"name"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

func (w *weatherTool) execute(ctx context.Context, args map[string]any) map[string]any {
	location := stringArg(args, "location")

	fail := func(reason string) map[string]any {
		return map[string]any{
			"location":  location,
			"condition": weatherUnknownLocation,
			"error":     reason,
		}
	}

	q := url.Values{}
	q.Set("q", location)
	q.Set("appid", w.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return fail("Failed to fetch weather")
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fail("Failed to fetch weather")
	}
	defer resp.Body.Close()

	var data weatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return fail("Failed to fetch weather")
	}

	if !codOK(data.Cod) || len(data.Weather) == 0 {
		return fail("Location not found")
	}

	return map[string]any{
		"location":    data.Name,
		"temperature": int(math.Round(data.Main.Temp)),
		"condition":   data.Weather[0].Main,
		"humidity":    data.Main.Humidity,
		"wind":        int(math.Round(data.Wind.Speed * 3.6)),
	}
}

// codOK accepts the 200 status OpenWeather reports either numerically or as
// the string "200".
func codOK(cod any) bool {
	switch v := cod.(type) {
	case float64:
		return v == 200
	case string:
		return v == "200"
	}
	return false
}
