package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"

	"shopbridge/pkg/shopware"
)

// runPing checks that the Admin API is reachable. The health-check must
// succeed; the version endpoint may answer 401/403, which still proves
// reachability.
func runPing(args []string) error {
	fs := flag.NewFlagSet("ping", flag.ExitOnError)
	configPath := addConfigFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	client := buildClient(cfg)
	ctx := context.Background()

	health, err := client.RequestOrFail(ctx, http.MethodGet, "/api/_info/health-check", shopware.RequestOptions{})
	if err != nil {
		return err
	}
	printPingResult("health-check", health)

	version, err := client.Request(ctx, http.MethodGet, "/api/_info/version", shopware.RequestOptions{})
	if err != nil {
		return err
	}
	printPingResult("version", version)

	return nil
}

func printPingResult(label string, res *shopware.Response) {
	switch {
	case res.Status >= 200 && res.Status < 300:
		fmt.Printf("%s: %d (OK)\n", label, res.Status)
	case res.Status == http.StatusUnauthorized || res.Status == http.StatusForbidden:
		fmt.Printf("%s: %d (reachable, auth required)\n", label, res.Status)
	default:
		fmt.Printf("%s: %d\n", label, res.Status)
		if snippet := res.Snippet(250); snippet != "" {
			fmt.Printf("  %s\n", snippet)
		}
	}
}
