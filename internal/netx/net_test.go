package netx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPostJSON(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var gotBody map[string]string
		var gotCT, gotAuth, gotMethod string

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotCT = r.Header.Get("Content-Type")
			gotAuth = r.Header.Get("Authorization")
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			_, _ = w.Write([]byte(`{"answer":"42"}`))
		}))
		defer ts.Close()

		var out struct{ Answer string }
		h := http.Header{"Authorization": {"Bearer k"}}
		if err := PostJSON(context.Background(), ts.Client(), ts.URL, h, map[string]string{"q": "life"}, &out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotMethod != http.MethodPost {
			t.Fatalf("method = %q, want POST", gotMethod)
		}
		if gotCT != "application/json" || gotAuth != "Bearer k" {
			t.Fatalf("headers: ct=%q auth=%q", gotCT, gotAuth)
		}
		if gotBody["q"] != "life" || out.Answer != "42" {
			t.Fatalf("body=%v out=%+v", gotBody, out)
		}
	})

	t.Run("non-2xx -> StatusError", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"loading"}`))
		}))
		defer ts.Close()

		err := PostJSON(context.Background(), ts.Client(), ts.URL, nil, struct{}{}, nil)
		var se *StatusError
		if !errors.As(err, &se) {
			t.Fatalf("want *StatusError, got %v", err)
		}
		if se.Code != http.StatusServiceUnavailable || !strings.Contains(se.Body, "loading") {
			t.Fatalf("unexpected %+v", se)
		}
	})

	t.Run("bad json", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer ts.Close()

		var out map[string]any
		err := PostJSON(context.Background(), ts.Client(), ts.URL, nil, struct{}{}, &out)
		if err == nil || !strings.Contains(err.Error(), "decode response") {
			t.Fatalf("expected decode error, got %v", err)
		}
	})

	t.Run("network error", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		ts.Close()

		err := PostJSON(context.Background(), http.DefaultClient, ts.URL, nil, struct{}{}, nil)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		var se *StatusError
		if errors.As(err, &se) {
			t.Fatalf("got wrong kind of error: %v", err)
		}
	})
}
