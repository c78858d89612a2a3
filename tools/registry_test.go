package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// testRegistry builds a registry whose executors all hit the fixture server.
func testRegistry(t *testing.T, handler http.Handler) (*Registry, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	r := &Registry{byName: make(map[string]Tool)}
	r.register(newWeatherTool("test-weather-key", srv.URL+"/weather", srv.Client()))
	r.register(newStockTool("test-stock-key", srv.URL+"/stock", srv.Client()))
	r.register(newRaceTool(srv.URL+"/race", srv.Client()))
	return r, srv
}

func TestRegistryDefinitionsOrder(t *testing.T) {
	r := NewRegistry(Config{})

	defs := r.Definitions()
	if len(defs) != 3 {
		t.Fatalf("Definitions() = %d tools, want 3", len(defs))
	}
	want := []string{NameWeather, NameStock, NameRace}
	for i, def := range defs {
		if def.Name != want[i] {
			t.Errorf("definition %d = %s, want %s", i, def.Name, want[i])
		}
	}
}

func TestExecuteUnknownTool(t *testing.T) {
	r := NewRegistry(Config{})

	result := r.Execute(context.Background(), "getHoroscope", nil)
	if result["error"] == nil {
		t.Errorf("unknown tool result = %v, want error payload", result)
	}
}

func TestWeatherExecutor(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		wantCondition string
	}{
		{
			"success",
			`{"cod":200,"name":"London","main":{"temp":14.4,"humidity":82},"weather":[{"main":"Clouds"}],"wind":{"speed":4.1}}`,
			"Clouds",
		},
		{
			"not found reports sentinel",
			`{"cod":"404","message":"city not found"}`,
			"Unknown Location",
		},
		{
			"malformed body reports sentinel",
			`<html>gateway timeout</html>`,
			"Unknown Location",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := testRegistry(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				w.Write([]byte(tt.body))
			}))

			result := r.Execute(context.Background(), NameWeather, map[string]any{"location": "London"})
			if result["condition"] != tt.wantCondition {
				t.Errorf("condition = %v, want %v", result["condition"], tt.wantCondition)
			}
		})
	}
}

func TestWeatherExecutorSuccessFields(t *testing.T) {
	r, _ := testRegistry(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{"cod":200,"name":"London","main":{"temp":14.6,"humidity":82},"weather":[{"main":"Clouds"}],"wind":{"speed":4.0}}`))
	}))

	result := r.Execute(context.Background(), NameWeather, map[string]any{"location": "london"})

	if result["location"] != "London" {
		t.Errorf("location = %v, want London", result["location"])
	}
	if result["temperature"] != 15 {
		t.Errorf("temperature = %v, want rounded 15", result["temperature"])
	}
	if result["wind"] != 14 { // 4.0 m/s -> 14.4 km/h, rounded
		t.Errorf("wind = %v, want 14", result["wind"])
	}
}

func TestStockExecutor(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantPrice string
	}{
		{
			"success formats price",
			`{"Global Quote":{"01. symbol":"AAPL","05. price":"212.5000","09. change":"1.2345","10. change percent":"0.58%"}}`,
			"212.50",
		},
		{
			"missing quote reports zero sentinel",
			`{"Global Quote":{}}`,
			"0",
		},
		{
			"malformed body reports zero sentinel",
			`rate limited`,
			"0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := testRegistry(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				w.Write([]byte(tt.body))
			}))

			result := r.Execute(context.Background(), NameStock, map[string]any{"symbol": "AAPL"})
			if result["price"] != tt.wantPrice {
				t.Errorf("price = %v, want %v", result["price"], tt.wantPrice)
			}
		})
	}
}

func TestRaceExecutor(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantName string
		wantTime string
	}{
		{
			"success",
			`{"MRData":{"RaceTable":{"Races":[{"raceName":"Monaco Grand Prix","round":"8","date":"2026-05-24","time":"13:00:00Z","Circuit":{"circuitName":"Circuit de Monaco","Location":{"locality":"Monte-Carlo","country":"Monaco"}}}]}}}`,
			"Monaco Grand Prix",
			"13:00:00Z",
		},
		{
			"missing time defaults to TBA",
			`{"MRData":{"RaceTable":{"Races":[{"raceName":"Monaco Grand Prix","round":"8","date":"2026-05-24","Circuit":{"circuitName":"Circuit de Monaco","Location":{"locality":"Monte-Carlo","country":"Monaco"}}}]}}}`,
			"Monaco Grand Prix",
			"TBA",
		},
		{
			"empty calendar reports unknown race",
			`{"MRData":{"RaceTable":{"Races":[]}}}`,
			"Unknown Race",
			"",
		},
		{
			"malformed body reports api error",
			`oops`,
			"API Error",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := testRegistry(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				w.Write([]byte(tt.body))
			}))

			result := r.Execute(context.Background(), NameRace, nil)
			if result["raceName"] != tt.wantName {
				t.Errorf("raceName = %v, want %v", result["raceName"], tt.wantName)
			}
			if tt.wantTime != "" && result["time"] != tt.wantTime {
				t.Errorf("time = %v, want %v", result["time"], tt.wantTime)
			}
		})
	}
}

// Every sentinel an executor can emit must be recognized by Failed; an
// unrecognized sentinel would leak failed results into storage.
func TestExecutorSentinelsAgreeWithFailed(t *testing.T) {
	r, _ := testRegistry(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))

	for _, name := range []string{NameWeather, NameStock, NameRace} {
		result := r.Execute(context.Background(), name, map[string]any{"location": "x", "symbol": "x"})
		inv := completed(name, result)
		if !Failed(inv) {
			t.Errorf("%s failure payload %v not recognized by Failed", name, result)
		}
	}
}
