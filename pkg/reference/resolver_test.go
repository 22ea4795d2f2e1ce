package reference

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"

	sberrors "shopbridge/pkg/errors"
	"shopbridge/pkg/shopware"
)

type staticTokenProvider struct{}

func (staticTokenProvider) AccessToken(ctx context.Context) (string, error) {
	return "tok-1", nil
}

// referenceServer serves the currency and tax search endpoints and counts
// lookups per entity.
type referenceServer struct {
	Server        *httptest.Server
	CurrencyCalls int
	TaxCalls      int

	LastCriteria shopware.Criteria
	Empty        bool // respond with zero results
}

func newReferenceServer(t *testing.T) *referenceServer {
	t.Helper()
	rs := &referenceServer{}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/search/currency", func(w http.ResponseWriter, r *http.Request) {
		rs.CurrencyCalls++
		rs.respond(w, r, "cur")
	})
	mux.HandleFunc("/api/search/tax", func(w http.ResponseWriter, r *http.Request) {
		rs.TaxCalls++
		rs.respond(w, r, "tax")
	})

	rs.Server = httptest.NewServer(mux)
	t.Cleanup(rs.Server.Close)
	return rs
}

func (rs *referenceServer) respond(w http.ResponseWriter, r *http.Request, prefix string) {
	json.NewDecoder(r.Body).Decode(&rs.LastCriteria)

	w.Header().Set("Content-Type", "application/json")
	if rs.Empty {
		w.Write([]byte(`{"total":0,"data":[]}`))
		return
	}

	id := fmt.Sprintf("%s-%v", prefix, rs.LastCriteria.Filter[0].Value)
	fmt.Fprintf(w, `{"total":1,"data":[{"id":"%s"}]}`, id)
}

func newResolver(rs *referenceServer) *Resolver {
	log := logrus.New()
	log.SetOutput(io.Discard)

	client := shopware.NewClient(rs.Server.URL,
		shopware.WithLogger(log),
		shopware.WithTokenProvider(staticTokenProvider{}),
	)
	return NewResolver(client)
}

func TestCurrencyIDCachedPerKey(t *testing.T) {
	rs := newReferenceServer(t)
	resolver := newResolver(rs)
	ctx := context.Background()

	first, err := resolver.CurrencyID(ctx, "EUR")
	if err != nil {
		t.Fatal(err)
	}
	if first != "cur-EUR" {
		t.Fatalf("unexpected id %q", first)
	}

	second, err := resolver.CurrencyID(ctx, "EUR")
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Errorf("expected cached id, got %q", second)
	}
	if rs.CurrencyCalls != 1 {
		t.Errorf("expected one search for a repeated key, got %d", rs.CurrencyCalls)
	}

	if _, err := resolver.CurrencyID(ctx, "USD"); err != nil {
		t.Fatal(err)
	}
	if rs.CurrencyCalls != 2 {
		t.Errorf("expected a fresh search per distinct key, got %d", rs.CurrencyCalls)
	}
}

func TestCurrencyIDDefaultsToEUR(t *testing.T) {
	rs := newReferenceServer(t)
	resolver := newResolver(rs)

	id, err := resolver.CurrencyID(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if id != "cur-EUR" {
		t.Errorf("expected EUR default, got %q", id)
	}
}

func TestCurrencyIDSearchCriteria(t *testing.T) {
	rs := newReferenceServer(t)
	resolver := newResolver(rs)

	if _, err := resolver.CurrencyID(context.Background(), "EUR"); err != nil {
		t.Fatal(err)
	}

	c := rs.LastCriteria
	if c.Limit != 1 {
		t.Errorf("expected limit 1, got %d", c.Limit)
	}
	if len(c.Filter) != 1 || c.Filter[0].Type != "equals" || c.Filter[0].Field != "isoCode" || c.Filter[0].Value != "EUR" {
		t.Errorf("unexpected filter: %+v", c.Filter)
	}
	if len(c.Includes["currency"]) == 0 {
		t.Errorf("expected currency field projection, got %v", c.Includes)
	}
}

func TestTaxIDCachedPerRate(t *testing.T) {
	rs := newReferenceServer(t)
	resolver := newResolver(rs)
	ctx := context.Background()

	first, err := resolver.TaxID(ctx, 19)
	if err != nil {
		t.Fatal(err)
	}
	if first != "tax-19" {
		t.Fatalf("unexpected id %q", first)
	}

	if _, err := resolver.TaxID(ctx, 19); err != nil {
		t.Fatal(err)
	}
	if rs.TaxCalls != 1 {
		t.Errorf("expected one search for a repeated rate, got %d", rs.TaxCalls)
	}

	if _, err := resolver.TaxID(ctx, 7); err != nil {
		t.Fatal(err)
	}
	if rs.TaxCalls != 2 {
		t.Errorf("expected a fresh search for a new rate, got %d", rs.TaxCalls)
	}
}

func TestResolverNoResults(t *testing.T) {
	rs := newReferenceServer(t)
	rs.Empty = true
	resolver := newResolver(rs)

	_, err := resolver.CurrencyID(context.Background(), "XXX")
	if err == nil {
		t.Fatal("expected error for zero search results")
	}
	if !sberrors.Is(err, sberrors.ErrResolution) {
		t.Errorf("expected ErrResolution, got %v", err)
	}
}

func TestResolverEmptyID(t *testing.T) {
	rs := newReferenceServer(t)
	resolver := newResolver(rs)

	// Serve a hit whose id is empty.
	rs.Server.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"total":1,"data":[{"id":""}]}`))
	})

	_, err := resolver.TaxID(context.Background(), 19)
	if !sberrors.Is(err, sberrors.ErrResolution) {
		t.Errorf("expected ErrResolution for empty id, got %v", err)
	}
}

func TestResolverErrorNotCached(t *testing.T) {
	rs := newReferenceServer(t)
	rs.Empty = true
	resolver := newResolver(rs)
	ctx := context.Background()

	if _, err := resolver.CurrencyID(ctx, "EUR"); err == nil {
		t.Fatal("expected resolution error")
	}

	rs.Empty = false
	id, err := resolver.CurrencyID(ctx, "EUR")
	if err != nil {
		t.Fatal(err)
	}
	if id != "cur-EUR" {
		t.Errorf("expected retry after failed resolution, got %q", id)
	}
	if rs.CurrencyCalls != 2 {
		t.Errorf("expected two searches, got %d", rs.CurrencyCalls)
	}
}
