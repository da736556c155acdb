package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// sampleResponse returns a valid Al Adhan API response for testing.
func sampleResponse() Response {
	return Response{
		Code:   200,
		Status: "OK",
		Data: Data{
			Timings: Timings{
				Fajr:    "05:17",
				Sunrise: "06:48",
				Dhuhr:   "12:13",
				Asr:     "15:02",
				Maghrib: "17:39",
				Isha:    "19:10",
			},
			Date: DateInfo{
				Readable:  "28 Feb 2026",
				Timestamp: "1772262000",
				Gregorian: GregorianDate{Date: "28-02-2026", Day: "28"},
			},
			Meta: Meta{
				Latitude:  51.5074,
				Longitude: -0.1278,
				Timezone:  "Europe/London",
				Method:    MethodInfo{ID: 2, Name: "ISNA"},
				School:    "STANDARD",
			},
		},
	}
}

func londonQuery() Query {
	return Query{Latitude: 51.5074, Longitude: -0.1278, Method: 2, School: 1, Timezone: "UTC"}
}

func noPreferenceQuery() Query {
	return Query{Latitude: 51.5, Longitude: -0.1, Method: -1, School: -1}
}

func TestNewClient(t *testing.T) {
	c := NewClient()
	if c == nil {
		t.Fatal("NewClient returned nil")
	}
	if c.BaseURL != defaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", c.BaseURL, defaultBaseURL)
	}
}

func TestFetchByCoordinates_Success(t *testing.T) {
	resp := sampleResponse()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify the request path contains /timings/ and date format DD-MM-YYYY.
		if !strings.Contains(r.URL.Path, "/timings/28-02-2026") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("latitude") == "" {
			t.Error("missing latitude param")
		}
		if q.Get("longitude") == "" {
			t.Error("missing longitude param")
		}
		if q.Get("method") != "2" {
			t.Errorf("method = %q, want %q", q.Get("method"), "2")
		}
		if q.Get("school") != "1" {
			t.Errorf("school = %q, want %q", q.Get("school"), "1")
		}
		if q.Get("timezonestring") != "UTC" {
			t.Errorf("timezonestring = %q, want %q", q.Get("timezonestring"), "UTC")
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	c := NewClient()
	c.BaseURL = server.URL

	date := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	got, err := c.FetchByCoordinates(context.Background(), date, londonQuery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Data.Timings.Fajr != "05:17" {
		t.Errorf("Fajr = %q, want %q", got.Data.Timings.Fajr, "05:17")
	}
	if got.Data.Meta.Timezone != "Europe/London" {
		t.Errorf("Timezone = %q, want %q", got.Data.Meta.Timezone, "Europe/London")
	}
}

func TestFetchByCoordinates_NoMethodOrSchool(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		// Negative method and school should not be sent.
		for _, key := range []string{"method", "school", "timezonestring"} {
			if q.Get(key) != "" {
				t.Errorf("%s should not be set, got %q", key, q.Get(key))
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sampleResponse())
	}))
	defer server.Close()

	c := NewClient()
	c.BaseURL = server.URL

	date := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	_, err := c.FetchByCoordinates(context.Background(), date, noPreferenceQuery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFetchByCoordinates_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewClient()
	c.BaseURL = server.URL

	date := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	_, err := c.FetchByCoordinates(context.Background(), date, noPreferenceQuery())
	if err == nil {
		t.Fatal("expected error for HTTP 503, got nil")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("error should mention 503, got: %v", err)
	}
}

func TestFetchByCoordinates_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	c := NewClient()
	c.BaseURL = server.URL

	date := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	_, err := c.FetchByCoordinates(context.Background(), date, noPreferenceQuery())
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
	if !strings.Contains(err.Error(), "decode") {
		t.Errorf("error should mention decode, got: %v", err)
	}
}

func TestFetchByCoordinates_APIErrorCode(t *testing.T) {
	resp := Response{Code: 400, Status: "Bad Request"}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	c := NewClient()
	c.BaseURL = server.URL

	date := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	_, err := c.FetchByCoordinates(context.Background(), date, noPreferenceQuery())
	if err == nil {
		t.Fatal("expected error for API code 400, got nil")
	}
	if !strings.Contains(err.Error(), "400") {
		t.Errorf("error should mention 400, got: %v", err)
	}
}

func TestFetchByCoordinates_ConnectionRefused(t *testing.T) {
	c := NewClient()
	c.BaseURL = "http://127.0.0.1:1" // nothing listening

	date := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	_, err := c.FetchByCoordinates(context.Background(), date, noPreferenceQuery())
	if err == nil {
		t.Fatal("expected error for connection refused, got nil")
	}
}

func TestFetchByCoordinates_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(sampleResponse())
	}))
	defer server.Close()

	c := NewClient()
	c.BaseURL = server.URL

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.FetchByCoordinates(ctx, time.Now(), noPreferenceQuery())
	if err == nil {
		t.Fatal("expected error for cancelled context, got nil")
	}
}

// ---------------------------------------------------------------------------
// Calendar endpoint tests
// ---------------------------------------------------------------------------

// sampleCalendarResponse returns a month of days whose Fajr minute is the
// day of the month, so tests can tell days apart.
func sampleCalendarResponse(year int, month time.Month, days int) CalendarResponse {
	data := make([]Data, days)
	for i := 0; i < days; i++ {
		day := i + 1
		data[i] = Data{
			Timings: Timings{
				Fajr:    fmt.Sprintf("05:%02d", day),
				Sunrise: "06:48 (GMT)",
				Dhuhr:   "12:13",
				Asr:     "15:02",
				Maghrib: "17:39",
				Isha:    "19:10",
			},
			Date: DateInfo{
				Gregorian: GregorianDate{
					Date: fmt.Sprintf("%02d-%02d-%04d", day, int(month), year),
					Day:  fmt.Sprintf("%02d", day),
				},
				Hijri: HijriDate{
					Day:   fmt.Sprintf("%d", day),
					Month: HijriMonth{Number: 9, En: "Ramaḍān"},
					Year:  "1447",
				},
			},
		}
	}
	return CalendarResponse{Code: 200, Status: "OK", Data: data}
}

func TestFetchCalendarByCoordinates_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/calendar/2026/2" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("method") != "2" {
			t.Errorf("method = %q, want %q", r.URL.Query().Get("method"), "2")
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sampleCalendarResponse(2026, time.February, 28))
	}))
	defer server.Close()

	c := NewClient()
	c.BaseURL = server.URL

	got, err := c.FetchCalendarByCoordinates(context.Background(), 2026, time.February, londonQuery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Data) != 28 {
		t.Fatalf("got %d days, want 28", len(got.Data))
	}
	if got.Data[27].Timings.Fajr != "05:28" {
		t.Errorf("last Fajr = %q, want %q", got.Data[27].Timings.Fajr, "05:28")
	}
}

func TestFetchCalendarByCoordinates_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient()
	c.BaseURL = server.URL

	_, err := c.FetchCalendarByCoordinates(context.Background(), 2026, time.February, noPreferenceQuery())
	if err == nil {
		t.Fatal("expected error for HTTP 500, got nil")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error should mention 500, got: %v", err)
	}
}

func TestFetchCalendarByCoordinates_APIErrorCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(CalendarResponse{Code: 400, Status: "Bad Request"})
	}))
	defer server.Close()

	c := NewClient()
	c.BaseURL = server.URL

	_, err := c.FetchCalendarByCoordinates(context.Background(), 2026, time.February, noPreferenceQuery())
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("expected API code 400 error, got %v", err)
	}
}
