package tools

import "rudra/model"

// Failed reports whether a completed tool invocation carries its tool's
// failure sentinel. Pending invocations never count as failed.
//
// This is the single source of truth for tool success/failure: the live
// render policy and the server-side persistence filter both call it, so the
// two can never disagree about the same payload.
func Failed(inv model.ToolInvocation) bool {
	if !inv.Completed() {
		return false
	}

	res := inv.Result
	switch inv.ToolName {
	case NameWeather:
		return res["condition"] == weatherUnknownLocation
	case NameStock:
		return stockPriceMissing(res["price"])
	case NameRace:
		return res["raceName"] == raceUnknown || res["raceName"] == raceAPIError
	}
	return false
}

// stockPriceMissing treats an absent price, numeric zero, and the strings
// "0"/"0.00" as the stock tool's failure sentinel.
func stockPriceMissing(price any) bool {
	switch p := price.(type) {
	case nil:
		return true
	case string:
		return p == "" || p == "0" || p == "0.00"
	case float64:
		return p == 0
	case int:
		return p == 0
	}
	return false
}
