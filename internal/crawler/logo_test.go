package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestCandidateDomains(t *testing.T) {
	got := CandidateDomains("Sony Ericsson")
	want := []string{"sonyericsson.com", "sonyericssonmobile.com", "sonyericssonphones.com", "sonyericssonelectronics.com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v", got)
	}
	if CandidateDomains("  &! ") != nil {
		t.Error("expected no candidates for a name without letters")
	}
}

func TestLogoClientResolve(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		seen = append(seen, r.URL.Path)
		if r.URL.Path == "/acmephones.com" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewLogoClient(srv.URL+"/", "secret", 0, nil)
	got := c.Resolve(context.Background(), "Acme")
	if got != srv.URL+"/acmephones.com" {
		t.Errorf("logo = %q", got)
	}
	if len(seen) != 3 {
		t.Errorf("probed %v, want stop at the first hit", seen)
	}
}

func TestLogoClientNoCandidateResponds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewLogoClient(srv.URL, "", 0, nil)
	if got := c.Resolve(context.Background(), "Nobody"); got != "" {
		t.Errorf("logo = %q, want empty", got)
	}
}
