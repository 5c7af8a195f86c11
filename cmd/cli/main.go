package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkosiv/shardpay/internal/sharding"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "shardpay-cli",
		Short: "ShardPay CLI tool",
		Long:  `A command line interface for interacting with the ShardPay API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ShardPay API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	// Transaction commands
	txCmd := &cobra.Command{
		Use:   "tx",
		Short: "Transaction operations",
	}

	var (
		accountID    string
		counterparty string
		key          string
		currency     string
		amount       string
	)
	submitCmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a transaction",
		Run: func(cmd *cobra.Command, args []string) {
			submitTransaction(accountID, counterparty, key, currency, amount)
		},
	}
	submitCmd.Flags().StringVar(&accountID, "account", "", "Account ID (required)")
	submitCmd.Flags().StringVar(&counterparty, "counterparty", "", "Counterparty account ID")
	submitCmd.Flags().StringVar(&key, "key", "", "Idempotency key (required)")
	submitCmd.Flags().StringVar(&currency, "currency", "USD", "Currency code")
	submitCmd.Flags().StringVar(&amount, "amount", "", "Amount (required)")
	submitCmd.MarkFlagRequired("account")
	submitCmd.MarkFlagRequired("key")
	submitCmd.MarkFlagRequired("amount")

	getCmd := &cobra.Command{
		Use:   "get <transaction-id>",
		Short: "Get a transaction by ID",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/transactions/" + args[0])
		},
	}

	enrichCmd := &cobra.Command{
		Use:   "enrich <transaction-id>",
		Short: "Get a transaction enriched with identity data",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/transactions/" + args[0] + "/enriched")
		},
	}

	listCmd := &cobra.Command{
		Use:   "list <account-id>",
		Short: "List transactions for an account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/accounts/" + args[0] + "/transactions")
		},
	}

	txCmd.AddCommand(submitCmd, getCmd, enrichCmd, listCmd)
	rootCmd.AddCommand(txCmd)

	// Shard commands
	shardCmd := &cobra.Command{
		Use:   "shard",
		Short: "Shard topology operations",
	}

	var topologyPath string
	resolveCmd := &cobra.Command{
		Use:   "resolve <account-id>",
		Short: "Resolve the shard owning an account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			resolveShard(topologyPath, args[0])
		},
	}
	resolveCmd.Flags().StringVar(&topologyPath, "topology", "shards.yaml", "Path to the shard topology file")

	shardCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(shardCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func submitTransaction(accountID, counterparty, key, currency, amount string) {
	payload, _ := json.Marshal(map[string]string{
		"account_id":              accountID,
		"counterparty_account_id": counterparty,
		"idempotency_key":         key,
		"currency":                currency,
		"amount":                  amount,
	})

	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+"/api/v1/transactions", "application/json", bytes.NewReader(payload))
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		fmt.Printf("Submit FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	printPretty(body)
}

func getJSON(path string) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	printPretty(body)
}

func resolveShard(topologyPath, accountID string) {
	topology, err := sharding.LoadTopology(topologyPath)
	if err != nil {
		fmt.Printf("Failed to load topology: %v\n", err)
		os.Exit(1)
	}

	router := sharding.NewRouter(topology)
	shardID, err := router.Resolve(accountID)
	if err != nil {
		fmt.Printf("Failed to resolve: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Account: %s\nBucket: %d\nShard: %s\n", accountID, router.Bucket(accountID), shardID)
}

func printPretty(body []byte) {
	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}
	fmt.Println(out.String())
}
