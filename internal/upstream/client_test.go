package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

func TestRequest_SetsAuthHeaders(t *testing.T) {
	var gotAuth, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{"user":{"displayName":"Ada"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	body, err := client.Request(context.Background(), "at-1", "/user/-/profile.json")
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	if gotAuth != "Bearer at-1" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer at-1")
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q, want application/json", gotAccept)
	}
	if !strings.Contains(string(body), "Ada") {
		t.Errorf("body passed through incorrectly: %s", body)
	}
}

func TestRequest_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"errors":[{"errorType":"rate_limit"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Request(context.Background(), "at-1", "/user/-/profile.json")

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected *RequestError, got %T: %v", err, err)
	}
	if reqErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", reqErr.StatusCode)
	}
	if !strings.Contains(reqErr.Body, "rate_limit") {
		t.Errorf("body %q missing provider error", reqErr.Body)
	}
}

func TestDailySummary_AllSucceed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/1d/1min"):
			w.Write([]byte(`{"activities-heart-intraday":{"dataset":[{"time":"08:00:00","value":62}]}}`))
		case strings.Contains(r.URL.Path, "/heart/"):
			w.Write([]byte(`{"activities-heart":[{"value":{"restingHeartRate":58}}]}`))
		case strings.Contains(r.URL.Path, "/sleep/"):
			w.Write([]byte(`{"summary":{"totalMinutesAsleep":420}}`))
		default:
			w.Write([]byte(`{"summary":{"steps":10234}}`))
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	summary := client.DailySummary(context.Background(), "at-1", "2024-06-01")

	if len(summary.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", summary.Errors)
	}
	if summary.Date != "2024-06-01" {
		t.Errorf("date = %q", summary.Date)
	}
	if !strings.Contains(string(summary.Activities), "10234") {
		t.Errorf("activities = %s", summary.Activities)
	}
	if !strings.Contains(string(summary.HeartRate), "restingHeartRate") {
		t.Errorf("heart rate = %s", summary.HeartRate)
	}
	// Intraday section is unwrapped from its response envelope.
	if !strings.HasPrefix(string(summary.HeartRateIntraday), `{"dataset"`) {
		t.Errorf("intraday not unwrapped: %s", summary.HeartRateIntraday)
	}
	if !strings.Contains(string(summary.Sleep), "420") {
		t.Errorf("sleep = %s", summary.Sleep)
	}
}

func TestDailySummary_PartialFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/sleep/") {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"errors":[{"errorType":"server_error"}]}`))
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	summary := client.DailySummary(context.Background(), "at-1", "today")

	if want := []string{"sleep"}; !reflect.DeepEqual(summary.Errors, want) {
		t.Fatalf("errors = %v, want %v", summary.Errors, want)
	}
	if summary.Sleep != nil {
		t.Errorf("failed sub-fetch should leave sleep empty, got %s", summary.Sleep)
	}
	if summary.Activities == nil {
		t.Error("successful sub-fetch missing from summary")
	}
}
