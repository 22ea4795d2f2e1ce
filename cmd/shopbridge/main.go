package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"shopbridge/pkg/config"
	"shopbridge/pkg/shopware"
)

const usageText = `shopbridge - Shopware Admin API bridge

Usage:
  shopbridge <command> [flags]

Commands:
  ping     Ping the Admin API (health-check + optional version)
  create   Create a product
  list     List the first products
  import   Import products (upsert by product number)
  help     Show this help

Run "shopbridge <command> -h" for command flags.
`

func main() {
	// .env is optional; real config may come from the environment directly.
	_ = godotenv.Load()

	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "ping":
		err = runPing(args[1:])
	case "create":
		err = runCreate(args[1:])
	case "list":
		err = runList(args[1:])
	case "import":
		err = runImport(args[1:])
	case "help", "-h", "--help":
		fmt.Print(usageText)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// addConfigFlag registers the shared -config flag on a command flag set.
func addConfigFlag(fs *flag.FlagSet) *string {
	return fs.String("config", "", "YAML config file (default: SHOPWARE_* environment)")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	cfg := config.FromEnv()
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %v", errs)
	}
	return cfg, nil
}

// buildClient wires the shared HTTP client, token provider and admin client
// from one config.
func buildClient(cfg *config.Config) *shopware.Client {
	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	httpClient := shopware.NewHTTPClient(cfg)

	tokens := shopware.NewOAuthTokenProvider(
		cfg.BaseURL,
		cfg.ClientID,
		cfg.ClientSecret,
		shopware.WithTokenHTTPClient(httpClient),
	)

	return shopware.NewClient(cfg.BaseURL,
		shopware.WithHTTPClient(httpClient),
		shopware.WithTokenProvider(tokens),
		shopware.WithLogger(log),
	)
}
