package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := newRootCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tokenledger-cli",
		Short: "Token ledger CLI tool",
		Long:  `A command line interface for interacting with the token ledger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the token ledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	var ownerID, email string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account with the initial grant",
		Run: func(cmd *cobra.Command, args []string) {
			createAccount(ownerID, email)
		},
	}
	createCmd.Flags().StringVar(&ownerID, "owner", "", "Owner id")
	createCmd.Flags().StringVar(&email, "email", "", "Account email")
	createCmd.MarkFlagRequired("owner")
	createCmd.MarkFlagRequired("email")

	getCmd := &cobra.Command{
		Use:   "get ID",
		Short: "Show current account state",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getAccount(args[0])
		},
	}

	var limit int
	var cursor string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Run: func(cmd *cobra.Command, args []string) {
			listAccounts(limit, cursor)
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 0, "Page size")
	listCmd.Flags().StringVar(&cursor, "cursor", "", "Continuation cursor from a previous page")

	creditCmd := &cobra.Command{
		Use:   "credit ID AMOUNT",
		Short: "Add tokens to an account",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			adjustAccount(args[0], "credit", args[1])
		},
	}

	debitCmd := &cobra.Command{
		Use:   "debit ID AMOUNT",
		Short: "Remove tokens from an account",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			adjustAccount(args[0], "debit", args[1])
		},
	}

	accountCmd.AddCommand(createCmd, getCmd, listCmd, creditCmd, debitCmd)
	rootCmd.AddCommand(accountCmd)

	return rootCmd
}

func createAccount(ownerID, email string) {
	body, _ := json.Marshal(map[string]string{
		"owner_id": ownerID,
		"email":    email,
	})

	resp := doRequest(http.MethodPost, "/api/v1/accounts", body)
	printResponse(resp, http.StatusCreated)
}

func getAccount(id string) {
	resp := doRequest(http.MethodGet, "/api/v1/accounts/"+id, nil)
	printResponse(resp, http.StatusOK)
}

func listAccounts(limit int, cursor string) {
	path := "/api/v1/accounts?limit=" + strconv.Itoa(limit)
	if cursor != "" {
		path += "&cursor=" + cursor
	}

	resp := doRequest(http.MethodGet, path, nil)
	printResponse(resp, http.StatusOK)
}

func adjustAccount(id, op, rawAmount string) {
	amount, err := strconv.ParseInt(rawAmount, 10, 64)
	if err != nil {
		fmt.Printf("invalid amount %q: %v\n", rawAmount, err)
		os.Exit(1)
	}

	body, _ := json.Marshal(map[string]int64{"amount": amount})

	resp := doRequest(http.MethodPost, "/api/v1/accounts/"+id+"/"+op, body)
	printResponse(resp, http.StatusOK)
}

func doRequest(method, path string, body []byte) *http.Response {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(method, baseURL+path, bytes.NewReader(body))
	if err != nil {
		fmt.Printf("failed to build request: %v\n", err)
		os.Exit(1)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("request failed: %v\n", err)
		os.Exit(1)
	}

	return resp
}

func printResponse(resp *http.Response, wantStatus int) {
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != wantStatus {
		fmt.Printf("request failed (status %d)\n%s\n", resp.StatusCode, indentJSON(body))
		os.Exit(1)
	}

	fmt.Println(indentJSON(body))
}

func indentJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
