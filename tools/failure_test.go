package tools

import (
	"testing"

	"rudra/model"
)

func completed(name string, result map[string]any) model.ToolInvocation {
	return model.ToolInvocation{
		ToolCallID: "t1",
		ToolName:   name,
		State:      model.InvocationResult,
		Result:     result,
	}
}

func TestFailed(t *testing.T) {
	tests := []struct {
		name string
		inv  model.ToolInvocation
		want bool
	}{
		{
			"pending invocation never fails",
			model.ToolInvocation{ToolName: NameWeather, State: model.InvocationPending},
			false,
		},
		{
			"weather unknown location sentinel",
			completed(NameWeather, map[string]any{"location": "Atlantis", "condition": "Unknown Location"}),
			true,
		},
		{
			"weather success",
			completed(NameWeather, map[string]any{"location": "London", "condition": "Clouds", "temperature": 14}),
			false,
		},
		{
			"stock absent price",
			completed(NameStock, map[string]any{"symbol": "NOPE"}),
			true,
		},
		{
			"stock zero string price",
			completed(NameStock, map[string]any{"symbol": "NOPE", "price": "0"}),
			true,
		},
		{
			"stock zero decimal string price",
			completed(NameStock, map[string]any{"symbol": "NOPE", "price": "0.00"}),
			true,
		},
		{
			"stock numeric zero price",
			completed(NameStock, map[string]any{"symbol": "NOPE", "price": float64(0)}),
			true,
		},
		{
			"stock success",
			completed(NameStock, map[string]any{"symbol": "AAPL", "price": "212.50"}),
			false,
		},
		{
			"race unknown race sentinel",
			completed(NameRace, map[string]any{"raceName": "Unknown Race"}),
			true,
		},
		{
			"race api error sentinel",
			completed(NameRace, map[string]any{"raceName": "API Error"}),
			true,
		},
		{
			"race success",
			completed(NameRace, map[string]any{"raceName": "Monaco Grand Prix", "round": "8"}),
			false,
		},
		{
			"unknown tool never fails",
			completed("getHoroscope", map[string]any{"sign": "aries"}),
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Failed(tt.inv); got != tt.want {
				t.Errorf("Failed(%+v) = %v, want %v", tt.inv, got, tt.want)
			}
		})
	}
}
