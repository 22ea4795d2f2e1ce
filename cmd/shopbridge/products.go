package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"shopbridge/pkg/product"
	"shopbridge/pkg/reference"
	"shopbridge/pkg/shopware"
)

// runCreate creates a single product with explicit pricing flags.
func runCreate(args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	configPath := addConfigFlag(fs)
	name := fs.String("name", "Testprodukt", "Product name")
	number := fs.String("number", "TEST-"+uuid.NewString()[:8], "Product number")
	stock := fs.Int("stock", 10, "Stock")
	gross := fs.Float64("gross", 19.99, "Gross price")
	net := fs.Float64("net", 16.80, "Net price")
	currency := fs.String("currency", "", "Currency ISO code (default from config)")
	taxRate := fs.Float64("tax-rate", 0, "Tax rate (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	client := buildClient(cfg)
	resolver := reference.NewResolver(client)
	ctx := context.Background()

	iso := strings.ToUpper(*currency)
	if iso == "" {
		iso = cfg.DefaultCurrency
	}
	rate := *taxRate
	if rate == 0 {
		rate = cfg.DefaultTaxRate
	}

	currencyID, err := resolver.CurrencyID(ctx, iso)
	if err != nil {
		return err
	}
	taxID, err := resolver.TaxID(ctx, rate)
	if err != nil {
		return err
	}

	if *stock < 0 {
		*stock = 0
	}

	payload := map[string]interface{}{
		"name":          *name,
		"productNumber": *number,
		"stock":         *stock,
		"taxId":         taxID,
		"price": []map[string]interface{}{{
			"currencyId": currencyID,
			"gross":      *gross,
			"net":        *net,
			"linked":     false,
		}},
	}

	res, err := client.RequestOrFail(ctx, http.MethodPost, "/api/product", shopware.RequestOptions{
		JSON:          payload,
		Authenticated: true,
	})
	if err != nil {
		return err
	}

	fmt.Println("Product created successfully.")
	fmt.Printf("productNumber: %s\n", *number)
	fmt.Printf("currencyId: %s\n", currencyID)
	fmt.Printf("taxId: %s\n", taxID)
	fmt.Printf("status: %d\n", res.Status)

	return nil
}

// runList prints the first products from the catalog.
func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	configPath := addConfigFlag(fs)
	limit := fs.Int("limit", 5, "Number of products to show")
	page := fs.Int("page", 1, "Page number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	client := buildClient(cfg)

	if *limit < 1 {
		*limit = 1
	}
	if *page < 1 {
		*page = 1
	}

	res, err := client.RequestOrFail(context.Background(), http.MethodPost, shopware.SearchPath("product"), shopware.RequestOptions{
		JSON: shopware.Criteria{
			Limit:    *limit,
			Page:     *page,
			Includes: map[string][]string{"product": {"id", "productNumber", "translated"}},
		},
		Authenticated: true,
	})
	if err != nil {
		return err
	}

	fmt.Printf("total: %s\n", totalText(res.Body))
	fmt.Printf("limit: %d, page: %d\n", *limit, *page)

	items, _ := res.Body["data"].([]interface{})
	if len(items) == 0 {
		fmt.Println("No products returned.")
		return nil
	}

	fmt.Println("sample:")
	for _, item := range items {
		row, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		fmt.Printf("- %s | %s | %s\n",
			stringOr(row, "n/a", "id"),
			stringOr(row, "n/a", "attributes", "productNumber"),
			stringOr(row, "n/a", "attributes", "translated", "name"),
		)
	}

	return nil
}

// runImport upserts a batch of drafts. One failing product never aborts the
// batch; failures are counted and reported in the summary.
func runImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := addConfigFlag(fs)
	dryRun := fs.Bool("dry-run", false, "Do not change anything, only show what would happen")
	file := fs.String("file", "", "CSV file with product_number,name columns (default: built-in sample drafts)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	client := buildClient(cfg)
	resolver := reference.NewResolver(client)
	service := product.NewService(client, resolver, cfg.DefaultCurrency, cfg.DefaultTaxRate)
	ctx := context.Background()

	drafts := []product.Draft{
		{ProductNumber: "IMP-001", Name: "Imported product 001"},
		{ProductNumber: "IMP-002", Name: "Imported product 002"},
		{ProductNumber: "IMP-003", Name: "Imported product 003"},
	}
	if *file != "" {
		drafts, err = product.LoadDrafts(*file)
		if err != nil {
			return err
		}
	}

	suffix := ""
	if *dryRun {
		suffix = " (dry-run)"
	}
	fmt.Printf("Importing %d products%s\n", len(drafts), suffix)

	var created, updated, failed int
	for _, draft := range drafts {
		action, err := service.Upsert(ctx, draft, *dryRun)
		if err != nil {
			failed++
			fmt.Printf("error: %s | %s (%v)\n", draft.ProductNumber, draft.Name, err)
			continue
		}

		switch action {
		case product.ActionCreate:
			created++
		case product.ActionUpdate:
			updated++
		}
		fmt.Printf("%s: %s | %s\n", action, draft.ProductNumber, draft.Name)
	}

	fmt.Printf("Summary: created=%d, updated=%d, failed=%d%s\n", created, updated, failed, suffix)

	if failed > 0 {
		return fmt.Errorf("%d of %d products failed", failed, len(drafts))
	}
	return nil
}

// totalText pulls the result count from either envelope shape the API uses.
func totalText(body map[string]interface{}) string {
	if total, ok := body["total"].(float64); ok {
		return fmt.Sprintf("%d", int(total))
	}
	if meta, ok := body["meta"].(map[string]interface{}); ok {
		if total, ok := meta["total"].(float64); ok {
			return fmt.Sprintf("%d", int(total))
		}
	}
	return "n/a"
}

// stringOr walks nested maps and returns the string at the path, or fallback.
func stringOr(m map[string]interface{}, fallback string, path ...string) string {
	var current interface{} = m
	for _, key := range path {
		currentMap, ok := current.(map[string]interface{})
		if !ok {
			return fallback
		}
		current, ok = currentMap[key]
		if !ok {
			return fallback
		}
	}

	s, ok := current.(string)
	if !ok || s == "" {
		return fallback
	}
	return s
}
