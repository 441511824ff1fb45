// Command exchange-cli is an interactive terminal client for the fttech
// exchange service: login/register, wallet, deposits, withdrawals, currency
// exchange and the transaction feed.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fttech/exchange-client/internal/exchange/account"
	"github.com/fttech/exchange-client/internal/exchange/api"
	"github.com/fttech/exchange-client/internal/exchange/config"
	"github.com/fttech/exchange-client/internal/exchange/feed"
	"github.com/fttech/exchange-client/internal/exchange/identity"
	"github.com/fttech/exchange-client/internal/exchange/money"
	"github.com/fttech/exchange-client/internal/exchange/session"
	"github.com/fttech/exchange-client/internal/exchange/workflow"
)

type app struct {
	cfg       *config.Config
	client    *api.Client
	store     *session.Store
	accounts  *account.Service
	exchanger *workflow.Exchanger
	feed      *feed.Service

	mu       sync.Mutex
	location string
}

func (a *app) Location() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.location
}

func (a *app) setLocation(loc string) {
	a.mu.Lock()
	a.location = loc
	a.mu.Unlock()
}

func main() {
	baseFlag := flag.String("base", "", "API base URL (overrides EXCHANGE_API_URL)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if *baseFlag != "" {
		cfg.BaseURL = *baseFlag
		cfg.BaseURLDefaulted = false
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	if cfg.BaseURLDefaulted {
		log.Warn().Str("base_url", cfg.BaseURL).Msg("EXCHANGE_API_URL is not set, falling back to localhost")
	}

	a := &app{cfg: cfg, location: "/login"}
	cache := identity.NewFile(cfg.StateDir)

	client, err := api.NewClient(cfg.BaseURL,
		api.WithLogger(log),
		api.WithTimeout(cfg.RequestTimeout),
		api.WithRateLimit(cfg.RequestsPerSecond),
		api.WithIdentityCache(cache),
		api.WithLocationFunc(a.Location),
		api.WithSignOutHandler(a.onForcedSignOut),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create API client")
	}
	if err := client.RestoreSession(cfg.StateDir); err != nil {
		log.Warn().Err(err).Msg("Could not restore previous session")
	}

	a.client = client
	a.store = session.NewStore(client, cache, log)
	a.accounts = account.NewService(client, log)
	a.exchanger = workflow.NewExchanger(client, log)
	a.feed = feed.NewService(client)

	ctx := context.Background()

	// Startup reconciliation: do we still have a valid server session?
	_ = a.store.Check(ctx)
	if st := a.store.State(); st.IsAuthenticated {
		a.setLocation("/account")
		fmt.Printf("Welcome back, %s.\n", st.Identity.Username)
	} else {
		fmt.Println("Not logged in. Type 'login' or 'register' to get started.")
	}

	a.repl(ctx)

	if err := client.SaveSession(cfg.StateDir); err != nil {
		log.Warn().Err(err).Msg("Could not persist session")
	}
}

func (a *app) onForcedSignOut(reason string) {
	a.store.ForceSignOut()
	a.setLocation("/login")
	fmt.Printf("\nSigned out: %s. Please login again.\n", reason)
}

func (a *app) repl(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		cmd, args := fields[0], fields[1:]
		switch cmd {
		case "help":
			printHelp()
		case "login":
			a.login(ctx, scanner)
		case "register":
			a.register(ctx, scanner)
		case "logout":
			a.logout(ctx)
		case "wallet":
			a.wallet(ctx)
		case "deposit", "withdraw":
			a.mutate(ctx, cmd, args)
		case "exchange":
			a.exchange(ctx, args)
		case "transactions":
			a.transactions(ctx, args)
		case "quit", "exit":
			return
		default:
			fmt.Printf("Unknown command %q. Type 'help'.\n", cmd)
		}
	}
}

func printHelp() {
	fmt.Println(`Commands:
  login                          authenticate
  register                       create an account
  logout                         end the session
  wallet                         show balances
  deposit <currency> <amount>    deposit into a balance
  withdraw <currency> <amount>   withdraw from a balance
  exchange <from> <to> <amount>  convert between currencies
  transactions [currency|ALL]    show the transaction feed
  quit`)
}

func prompt(scanner *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}

func (a *app) login(ctx context.Context, scanner *bufio.Scanner) {
	a.store.ResetError()
	username := prompt(scanner, "Username: ")
	password := prompt(scanner, "Password: ")
	if username == "" || password == "" {
		fmt.Println("Username and password are required.")
		return
	}

	if err := a.store.Login(ctx, api.LoginRequest{Username: username, Password: password}); err != nil {
		fmt.Printf("Login not started: %v\n", err)
		return
	}

	st := a.store.State()
	if !st.IsAuthenticated {
		fmt.Printf("Login failed: %s\n", st.LastError)
		return
	}
	a.setLocation("/account")
	fmt.Printf("Logged in as %s.\n", st.Identity.Username)
}

func (a *app) register(ctx context.Context, scanner *bufio.Scanner) {
	username := prompt(scanner, "Username: ")
	email := prompt(scanner, "Email (optional): ")
	password := prompt(scanner, "Password: ")
	confirm := prompt(scanner, "Confirm password: ")
	if username == "" || password == "" {
		fmt.Println("Username and password are required.")
		return
	}
	if password != confirm {
		fmt.Println("Passwords do not match.")
		return
	}

	msg, err := a.store.Register(ctx, api.RegisterRequest{Username: username, Password: password, Email: email})
	if err != nil {
		fmt.Printf("Registration failed: %v\n", err)
		return
	}
	// Registration does not log you in; the session is untouched.
	fmt.Println(msg)
}

func (a *app) logout(ctx context.Context) {
	if err := a.store.Logout(ctx); err != nil {
		fmt.Printf("Logout not started: %v\n", err)
		return
	}
	api.ClearSession(a.cfg.StateDir)
	a.setLocation("/login")
	fmt.Println("Logged out.")
}

func (a *app) requireAuth() (string, bool) {
	st := a.store.State()
	if !st.IsAuthenticated {
		fmt.Println("Please login first.")
		return "", false
	}
	return st.Identity.Username, true
}

func (a *app) wallet(ctx context.Context) {
	if _, ok := a.requireAuth(); !ok {
		return
	}
	wallet, err := a.accounts.Refresh(ctx)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, acc := range wallet {
		fmt.Printf("  %-6s %s\n", acc.CurrencyType, money.Format(acc.Balance, acc.CurrencyType))
	}
}

func (a *app) mutate(ctx context.Context, kind string, args []string) {
	username, ok := a.requireAuth()
	if !ok {
		return
	}
	if len(args) != 2 {
		fmt.Printf("Usage: %s <currency> <amount>\n", kind)
		return
	}
	currency, amount := strings.ToUpper(args[0]), args[1]

	// Withdrawals check against the last snapshot; make sure there is one.
	if _, err := a.accounts.Refresh(ctx); err != nil {
		fmt.Println(err)
		return
	}

	var err error
	if kind == "withdraw" {
		err = a.accounts.Withdraw(ctx, username, currency, amount)
	} else {
		err = a.accounts.Deposit(ctx, username, currency, amount)
	}
	if err != nil {
		fmt.Println(err)
		return
	}

	balance, _ := a.accounts.Balance(currency)
	fmt.Printf("%s complete. New %s balance: %s\n", kind, currency, money.Format(balance, currency))
}

func (a *app) exchange(ctx context.Context, args []string) {
	if _, ok := a.requireAuth(); !ok {
		return
	}
	if len(args) != 3 {
		fmt.Println("Usage: exchange <from> <to> <amount>")
		return
	}

	outcome, err := a.exchanger.Execute(ctx, workflow.Form{
		FromCurrency:    strings.ToUpper(args[0]),
		ToCurrency:      strings.ToUpper(args[1]),
		Amount:          args[2],
		TransactionType: "exchange",
	})
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("%s: %s\n", outcome.Status, outcome.Message)
	if outcome.Status == api.ExchangeStatusSuccess {
		fmt.Printf("  %s -> %s at %v\n",
			money.Format(outcome.FromAmount, outcome.FromCurrency),
			money.Format(outcome.ToAmount, outcome.ToCurrency),
			outcome.ExecutedPrice)
	}
}

func (a *app) transactions(ctx context.Context, args []string) {
	if _, ok := a.requireAuth(); !ok {
		return
	}
	filter := "ALL"
	if len(args) > 0 {
		filter = strings.ToUpper(args[0])
	}

	txns, err := a.feed.Fetch(ctx, filter)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, txn := range txns {
		line := fmt.Sprintf("  #%d %-13s %s %s", txn.TransactionID, txn.TransactionType,
			money.Format(txn.Amount, txn.CurrencyType), txn.Timestamp)
		if txn.FromCurrency != "" {
			line += fmt.Sprintf(" (%s -> %s)", txn.FromCurrency, txn.ToCurrency)
		}
		fmt.Println(line)
	}
}
