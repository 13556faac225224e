package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func doJSON(t *testing.T, method, url string, body interface{}) *http.Response {
	t.Helper()

	var reqBody []byte
	if body != nil {
		var err error
		reqBody, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, bytes.NewBuffer(reqBody))
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to make %s request: %v", method, err)
	}
	return resp
}

func TestStatus(t *testing.T) {
	base := baseURL(t)

	resp, err := http.Get(base + "/api/status")
	if err != nil {
		t.Fatalf("Failed to make GET request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var status StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if status.Threshold == "" {
		t.Error("Threshold should not be empty")
	}
	if status.Symbol == "" {
		t.Error("Symbol should not be empty")
	}
	if status.Interval <= 0 {
		t.Errorf("Expected positive interval, got %d", status.Interval)
	}

	t.Logf("Monitor running=%v at block %d with %d whales", status.Running, status.CurrentBlock, status.WhalesCount)
}

func TestSettingsRoundTrip(t *testing.T) {
	base := baseURL(t)

	resp, err := http.Get(base + "/api/settings")
	if err != nil {
		t.Fatalf("Failed to make GET request: %v", err)
	}
	var original SettingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&original); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	resp.Body.Close()

	timeframe := "day"
	resp = doJSON(t, http.MethodPut, base+"/api/settings", SettingsRequest{Timeframe: &timeframe})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var updated SettingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if updated.Timeframe != "day" {
		t.Errorf("Expected timeframe 'day', got '%s'", updated.Timeframe)
	}
	if updated.Threshold != original.Threshold {
		t.Errorf("Partial update changed threshold from %s to %s", original.Threshold, updated.Threshold)
	}
	if updated.APIKeySet && !strings.HasSuffix(updated.APIKey, "*******") {
		t.Errorf("API key should be masked, got '%s'", updated.APIKey)
	}

	restore := original.Timeframe
	doJSON(t, http.MethodPut, base+"/api/settings", SettingsRequest{Timeframe: &restore}).Body.Close()
}

func TestAliasLifecycle(t *testing.T) {
	base := baseURL(t)
	aliasURL := base + "/api/aliases/" + TestWhaleAddress

	resp := doJSON(t, http.MethodPut, aliasURL, AliasRequest{Alias: "Integration Whale"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		json.NewDecoder(resp.Body).Decode(&errorResp)
		t.Fatalf("Expected status 200, got %d. Error: %s - %s", resp.StatusCode, errorResp.Error, errorResp.Message)
	}

	var alias AliasResponse
	if err := json.NewDecoder(resp.Body).Decode(&alias); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if alias.Address != strings.ToLower(TestWhaleAddress) {
		t.Errorf("Expected lowercase address, got '%s'", alias.Address)
	}

	listResp, err := http.Get(base + "/api/aliases")
	if err != nil {
		t.Fatalf("Failed to make GET request: %v", err)
	}
	defer listResp.Body.Close()

	var aliases []AliasResponse
	if err := json.NewDecoder(listResp.Body).Decode(&aliases); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	found := false
	for _, a := range aliases {
		if a.Address == alias.Address && a.Alias == "Integration Whale" {
			found = true
		}
	}
	if !found {
		t.Errorf("Alias not listed: %+v", aliases)
	}

	deleteResp := doJSON(t, http.MethodDelete, aliasURL, nil)
	defer deleteResp.Body.Close()
	if deleteResp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", deleteResp.StatusCode)
	}
}

func TestRequestValidation(t *testing.T) {
	base := baseURL(t)

	tests := []struct {
		name           string
		method         string
		path           string
		body           interface{}
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "InvalidFeedLimit",
			method:         http.MethodGet,
			path:           "/api/feed?limit=abc",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid_limit",
		},
		{
			name:           "InvalidTimeframe",
			method:         http.MethodGet,
			path:           "/api/chart/candles?timeframe=week",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid_timeframe",
		},
		{
			name:           "InvalidAliasAddress",
			method:         http.MethodPut,
			path:           "/api/aliases/0x123",
			body:           AliasRequest{Alias: "nope"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid_address",
		},
		{
			name:           "MalformedSettings",
			method:         http.MethodPut,
			path:           "/api/settings",
			body:           "not an object",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid_request",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			resp := doJSON(t, test.method, base+test.path, test.body)
			defer resp.Body.Close()

			if resp.StatusCode != test.expectedStatus {
				t.Errorf("Expected status %d, got %d", test.expectedStatus, resp.StatusCode)
			}

			var errorResp ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&errorResp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}

			if errorResp.Error != test.expectedError {
				t.Errorf("Expected error '%s', got '%s'", test.expectedError, errorResp.Error)
			}
		})
	}
}

func TestFeedAndCandles(t *testing.T) {
	base := baseURL(t)

	resp, err := http.Get(base + "/api/feed?limit=10")
	if err != nil {
		t.Fatalf("Failed to make GET request: %v", err)
	}
	defer resp.Body.Close()

	var feed FeedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if feed.Count != len(feed.Entries) || feed.Count > 10 {
		t.Errorf("Unexpected feed size: count %d, entries %d", feed.Count, len(feed.Entries))
	}
	for _, entry := range feed.Entries {
		if !strings.Contains(entry.ExplorerURL, entry.TxHash) {
			t.Errorf("Explorer URL %s does not reference %s", entry.ExplorerURL, entry.TxHash)
		}
		if !strings.HasSuffix(entry.FromURL, "/address/"+entry.From) {
			t.Errorf("From URL %s does not reference %s", entry.FromURL, entry.From)
		}
	}

	candlesResp, err := http.Get(base + "/api/chart/candles?timeframe=hour")
	if err != nil {
		t.Fatalf("Failed to make GET request: %v", err)
	}
	defer candlesResp.Body.Close()

	var candles CandlesResponse
	if err := json.NewDecoder(candlesResp.Body).Decode(&candles); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if candles.Timeframe != "hour" {
		t.Errorf("Expected timeframe 'hour', got '%s'", candles.Timeframe)
	}
	t.Logf("Fetched %d hourly candles", len(candles.Candles))
}
