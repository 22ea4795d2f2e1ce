// Package product reconciles product drafts against the Shopware catalog:
// create when the product number is unknown, patch the name when it exists.
package product

import (
	"context"
	"net/http"

	"shopbridge/pkg/reference"
	"shopbridge/pkg/shopware"
)

// Draft is the minimal caller-supplied description of a product. The
// product number is the externally assigned business key.
type Draft struct {
	ProductNumber string `csv:"product_number" json:"productNumber"`
	Name          string `csv:"name" json:"name"`
}

// Action is the outcome of an upsert.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
)

// Catalog defaults for fields a draft does not carry.
const (
	defaultStock = 10
	defaultGross = 9.99
	defaultNet   = 8.39
)

// Service performs product upserts keyed by product number.
type Service struct {
	client   *shopware.Client
	resolver *reference.Resolver
	currency string
	taxRate  float64
}

// NewService wires the upsert service. currency and taxRate fill the price
// entry of created products.
func NewService(client *shopware.Client, resolver *reference.Resolver, currency string, taxRate float64) *Service {
	return &Service{
		client:   client,
		resolver: resolver,
		currency: currency,
		taxRate:  taxRate,
	}
}

// FindByProductNumber searches for a product by exact product number.
// Not finding one is a normal outcome, not an error.
func (s *Service) FindByProductNumber(ctx context.Context, productNumber string) (string, bool, error) {
	res, err := s.client.RequestOrFail(ctx, http.MethodPost, shopware.SearchPath("product"), shopware.RequestOptions{
		JSON: shopware.Criteria{
			Limit:   1,
			Filter:  []shopware.Filter{shopware.EqualsFilter("productNumber", productNumber)},
			Include: []string{"id", "productNumber", "translated"},
		},
		Authenticated: true,
	})
	if err != nil {
		return "", false, err
	}

	data, ok := res.Body["data"].([]interface{})
	if !ok || len(data) == 0 {
		return "", false, nil
	}

	first, ok := data[0].(map[string]interface{})
	if !ok {
		return "", false, nil
	}

	id, _ := first["id"].(string)
	if id == "" {
		return "", false, nil
	}

	return id, true, nil
}

// Upsert reconciles a draft by product number: read, then write. This is a
// best-effort sequence, not a transaction; two callers upserting the same
// number concurrently may both see "not found" and create a duplicate
// unless the remote system enforces the business key's uniqueness.
func (s *Service) Upsert(ctx context.Context, draft Draft, dryRun bool) (Action, error) {
	existingID, found, err := s.FindByProductNumber(ctx, draft.ProductNumber)
	if err != nil {
		return "", err
	}

	if !found {
		if dryRun {
			return ActionCreate, nil
		}
		if err := s.create(ctx, draft); err != nil {
			return "", err
		}
		return ActionCreate, nil
	}

	if dryRun {
		return ActionUpdate, nil
	}

	// Partial update: only the name changes.
	_, err = s.client.RequestOrFail(ctx, http.MethodPatch, "/api/product/"+existingID, shopware.RequestOptions{
		JSON:          map[string]interface{}{"name": draft.Name},
		Authenticated: true,
	})
	if err != nil {
		return "", err
	}

	return ActionUpdate, nil
}

func (s *Service) create(ctx context.Context, draft Draft) error {
	currencyID, err := s.resolver.CurrencyID(ctx, s.currency)
	if err != nil {
		return err
	}

	taxID, err := s.resolver.TaxID(ctx, s.taxRate)
	if err != nil {
		return err
	}

	payload := map[string]interface{}{
		"name":          draft.Name,
		"productNumber": draft.ProductNumber,
		"stock":         defaultStock,
		"price": []map[string]interface{}{{
			"currencyId": currencyID,
			"gross":      defaultGross,
			"net":        defaultNet,
			"linked":     false,
		}},
		"taxId": taxID,
	}

	// Shopware answers 204 No Content or a body depending on setup; any 2xx is fine.
	_, err = s.client.RequestOrFail(ctx, http.MethodPost, "/api/product", shopware.RequestOptions{
		JSON:          payload,
		Authenticated: true,
	})
	return err
}
