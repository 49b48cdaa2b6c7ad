package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/iho/trustledger/internal/infrastructure/config"
	"github.com/iho/trustledger/internal/infrastructure/postgres"
)

var (
	baseURL string
	firmID  string
	actorID string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "trustledger-cli",
		Short: "Trust ledger CLI tool",
		Long:  `A command line interface for operating the trust accounting ledger.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the trust ledger API")
	rootCmd.PersistentFlags().StringVar(&firmID, "firm", "", "Acting firm ID")
	rootCmd.PersistentFlags().StringVar(&actorID, "actor", "", "Acting user ID")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(balanceCmd())
	rootCmd.AddCommand(verifyCmd())
	rootCmd.AddCommand(reconcileCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	var path string
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Run: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				fmt.Printf("Failed to load configuration: %v\n", err)
				os.Exit(1)
			}

			if down {
				err = postgres.RunMigrationsDown(cfg.DatabaseURL, path)
			} else {
				err = postgres.RunMigrations(cfg.DatabaseURL, path)
			}
			if err != nil {
				fmt.Printf("Migration failed: %v\n", err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVar(&path, "path", "migrations", "Path to migration files")
	cmd.Flags().BoolVar(&down, "down", false, "Roll back the last migration")

	return cmd
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <ledger-id>",
		Short: "Show a client ledger balance",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			result := request(http.MethodGet, "/api/v1/ledgers/"+args[0]+"/balance", nil)
			fmt.Printf("Ledger:  %s\nBalance: %s\n", result["id"], result["balance"])
		},
	}
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <ledger-id>",
		Short: "Recompute a ledger balance from its transaction rows",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			result := request(http.MethodPost, "/api/v1/ledgers/"+args[0]+"/verify", map[string]any{})
			fmt.Printf("Verification PASSED\nLedger:  %s\nBalance: %s\n", result["id"], result["balance"])
		},
	}
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile <trust-account-id> <statement-id>",
		Short: "Reconcile a trust account against a bank statement",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			result := request(http.MethodPost, "/api/v1/trust-accounts/"+args[0]+"/reconciliations", map[string]any{
				"bank_statement_id": args[1],
			})

			fmt.Printf("Reconciliation %s\n", result["id"])
			fmt.Printf("Status:                %s\n", result["status"])
			fmt.Printf("Book balance:          %s\n", result["book_balance"])
			fmt.Printf("Bank balance:          %s\n", result["bank_balance"])
			fmt.Printf("Adjusted bank balance: %s\n", result["adjusted_bank_balance"])
			fmt.Printf("Delta:                 %s\n", result["delta"])

			if items, ok := result["items"].([]any); ok && len(items) > 0 {
				fmt.Printf("Unreconciled items:    %d\n", len(items))
			}
		},
	}
}

func request(method, path string, body any) map[string]any {
	client := &http.Client{Timeout: timeout}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			fmt.Printf("Failed to encode request: %v\n", err)
			os.Exit(1)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		fmt.Printf("Failed to build request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	if firmID != "" {
		req.Header.Set("X-Firm-ID", firmID)
	}
	if actorID != "" {
		req.Header.Set("X-Actor-ID", actorID)
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(data))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	return result
}
