// Records JSON response fixtures from a live backend for use in tests.
// Credentials come from EXCHANGE_USERNAME / EXCHANGE_PASSWORD.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/fttech/exchange-client/internal/exchange/api"
)

func main() {
	base := flag.String("base", "http://localhost:8090/api", "API base URL")
	outDir := flag.String("output", "", "Output directory (default: internal/exchange/feed/testdata/fixtures)")
	flag.Parse()

	_ = godotenv.Load()
	username := os.Getenv("EXCHANGE_USERNAME")
	password := os.Getenv("EXCHANGE_PASSWORD")
	if username == "" || password == "" {
		fmt.Println("Set EXCHANGE_USERNAME and EXCHANGE_PASSWORD first.")
		os.Exit(1)
	}

	dir := *outDir
	if dir == "" {
		dir = filepath.Join("internal", "exchange", "feed", "testdata", "fixtures")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Printf("Error creating directory: %v\n", err)
		os.Exit(1)
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	client, err := api.NewClient(*base, api.WithLogger(log))
	if err != nil {
		fmt.Printf("Error creating client: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if _, err := client.Login(ctx, api.LoginRequest{Username: username, Password: password}); err != nil {
		fmt.Printf("Login failed: %v\n", err)
		os.Exit(1)
	}

	wallet, err := client.Wallet(ctx)
	if err != nil {
		fmt.Printf("Wallet fetch failed: %v\n", err)
		os.Exit(1)
	}
	write(dir, "wallet", wallet)

	txns, err := client.Transactions(ctx, "ALL")
	if err != nil {
		fmt.Printf("Transactions fetch failed: %v\n", err)
		os.Exit(1)
	}
	write(dir, "transactions", txns)

	fmt.Printf("Fixtures written to %s\n", dir)
}

func write(dir, name string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Error encoding %s: %v\n", name, err)
		os.Exit(1)
	}
	path := filepath.Join(dir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Printf("Error writing %s: %v\n", path, err)
		os.Exit(1)
	}
}
