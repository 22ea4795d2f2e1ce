// Package reference resolves human-meaningful identifiers (currency ISO
// code, tax rate) to the opaque IDs Shopware assigns them. Reference data is
// assumed stable for the process lifetime, so every distinct key is looked
// up once and cached.
package reference

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	sberrors "shopbridge/pkg/errors"
	"shopbridge/pkg/shopware"
)

// Resolver looks up currency and tax IDs through the admin client.
type Resolver struct {
	client *shopware.Client

	mu         sync.Mutex
	currencies map[string]string
	taxes      map[string]string
}

// NewResolver creates a resolver with empty caches.
func NewResolver(client *shopware.Client) *Resolver {
	return &Resolver{
		client:     client,
		currencies: make(map[string]string),
		taxes:      make(map[string]string),
	}
}

// CurrencyID resolves an ISO currency code (default EUR) to its ID.
// The mutex is held across the lookup so concurrent first calls for the
// same code collapse into one search.
func (r *Resolver) CurrencyID(ctx context.Context, isoCode string) (string, error) {
	if isoCode == "" {
		isoCode = "EUR"
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.currencies[isoCode]; ok {
		return id, nil
	}

	id, err := r.lookup(ctx, "currency",
		shopware.EqualsFilter("isoCode", isoCode),
		map[string][]string{"currency": {"id", "isoCode"}},
		fmt.Sprintf("isoCode=%s", isoCode),
	)
	if err != nil {
		return "", err
	}

	r.currencies[isoCode] = id
	return id, nil
}

// TaxID resolves a tax rate (default 19) to its ID.
func (r *Resolver) TaxID(ctx context.Context, rate float64) (string, error) {
	if rate == 0 {
		rate = 19
	}
	key := strconv.FormatFloat(rate, 'f', -1, 64)

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.taxes[key]; ok {
		return id, nil
	}

	id, err := r.lookup(ctx, "tax",
		shopware.EqualsFilter("taxRate", rate),
		map[string][]string{"tax": {"id", "taxRate"}},
		fmt.Sprintf("taxRate=%s", key),
	)
	if err != nil {
		return "", err
	}

	r.taxes[key] = id
	return id, nil
}

// lookup runs a limit-1 equals search and returns the first hit's ID.
func (r *Resolver) lookup(ctx context.Context, entity string, filter shopware.Filter, includes map[string][]string, what string) (string, error) {
	res, err := r.client.RequestOrFail(ctx, http.MethodPost, shopware.SearchPath(entity), shopware.RequestOptions{
		JSON: shopware.Criteria{
			Limit:    1,
			Filter:   []shopware.Filter{filter},
			Includes: includes,
		},
		Authenticated: true,
	})
	if err != nil {
		return "", err
	}

	id := firstID(res.Body)
	if id == "" {
		return "", sberrors.WrapError(
			fmt.Errorf("search returned no usable %s id for %s", entity, what),
			sberrors.ErrResolution,
			"resolve "+entity,
		)
	}

	return id, nil
}

// firstID digs data[0].id out of a search response envelope.
func firstID(body map[string]interface{}) string {
	data, ok := body["data"].([]interface{})
	if !ok || len(data) == 0 {
		return ""
	}

	first, ok := data[0].(map[string]interface{})
	if !ok {
		return ""
	}

	id, _ := first["id"].(string)
	return id
}
