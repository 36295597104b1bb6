package ner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestExtractFiltersAndDedupes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"entities": [
			{"text": "Sheikh Hasina", "label": "PERSON"},
			{"text": "Dhaka", "label": "GPE"},
			{"text": "Sheikh Hasina", "label": "PERSON"},
			{"text": "Friday", "label": "DATE"},
			{"text": "42", "label": "CARDINAL"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	got, err := c.Extract(context.Background(), "some article text")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := []string{"Sheikh Hasina", "Dhaka"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestExtractDisabledClient(t *testing.T) {
	c := NewClient("", time.Second)
	got, err := c.Extract(context.Background(), "text")
	if err != nil || got != nil {
		t.Fatalf("expected nil/nil from disabled client, got %v / %v", got, err)
	}

	var nilClient *Client
	got, err = nilClient.Extract(context.Background(), "text")
	if err != nil || got != nil {
		t.Fatalf("expected nil/nil from nil client, got %v / %v", got, err)
	}
}

func TestExtractEmptyTextIsNoop(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if got, err := c.Extract(context.Background(), ""); err != nil || got != nil {
		t.Fatalf("expected nil/nil for empty text, got %v / %v", got, err)
	}
	if called {
		t.Fatalf("expected no request for empty text")
	}
}

func TestExtractNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if _, err := c.Extract(context.Background(), "text"); err == nil {
		t.Fatalf("expected error on 503")
	}
}
