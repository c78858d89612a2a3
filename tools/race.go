package tools

import (
	"context"
	"encoding/json"
	"net/http"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

const defaultRaceBaseURL = "https://ergast.com/api/f1/current/next.json"

// Race tool failure sentinels: "Unknown Race" when the calendar has no
// upcoming race, "API Error" when the fetch itself fails.
const (
	raceUnknown  = "Unknown Race"
	raceAPIError = "API Error"
)

type raceTool struct {
	baseURL string
	client  *http.Client
}

func newRaceTool(baseURL string, client *http.Client) Tool {
	r := &raceTool{baseURL: baseURL, client: client}
	return Tool{
		Definition: mcptypes.NewTool(NameRace,
			mcptypes.WithDescription("Get information about the next F1 race"),
		),
		Execute: r.execute,
	}
}

type raceResponse struct {
	MRData struct {
		RaceTable struct {
			Races []struct {
				RaceName string `json:"raceName"`
				Round    string `json:"round"`
				Date     string `json:"date"`
				Time     string `json:"time"`
				Circuit  struct {
					CircuitName string `json:"circuitName"`
					Location    struct {
						Locality string `json:"locality"`
						Country  string `json:"country"`
					} `json:"Location"`
				} `json:"Circuit"`
			} `json:"Races"`
		} `json:"RaceTable"`
	} `json:"MRData"`
}

func (r *raceTool) execute(ctx context.Context, _ map[string]any) map[string]any {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL, nil)
	if err != nil {
		return map[string]any{"raceName": raceAPIError, "error": "Failed to fetch F1 data"}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return map[string]any{"raceName": raceAPIError, "error": "Failed to fetch F1 data"}
	}
	defer resp.Body.Close()

	var data raceResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return map[string]any{"raceName": raceAPIError, "error": "Failed to fetch F1 data"}
	}

	races := data.MRData.RaceTable.Races
	if len(races) == 0 {
		return map[string]any{"raceName": raceUnknown, "error": "No upcoming race found"}
	}

	race := races[0]
	raceTime := race.Time
	if raceTime == "" {
		raceTime = "TBA"
	}

	return map[string]any{
		"raceName": race.RaceName,
		"circuit":  race.Circuit.CircuitName,
		"location": race.Circuit.Location.Locality,
		"country":  race.Circuit.Location.Country,
		"date":     race.Date,
		"time":     raceTime,
		"round":    race.Round,
	}
}
