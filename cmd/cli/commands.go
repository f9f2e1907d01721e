package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/iho/ledgerd/internal/adapter/http/dto"
)

func (c *cli) idCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "id",
		Short: "Allocate a new time-ordered identifier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.IDResponse
			if err := c.client().do(cmd.Context(), http.MethodGet, "/id", nil, &resp); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), resp.ID)
			return err
		},
	}
}

func (c *cli) accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account operations",
	}

	var (
		file  string
		input dto.AccountInput
	)
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create accounts from --file or from flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.CreateAccountsRequest{Accounts: []dto.AccountInput{input}}
			if file != "" {
				req = dto.CreateAccountsRequest{}
				if err := readJSON(cmd.InOrStdin(), file, &req); err != nil {
					return err
				}
			}
			if _, err := req.ToDomain(); err != nil {
				return err
			}

			var resp dto.CreateResultsResponse
			if err := c.client().do(cmd.Context(), http.MethodPost, "/accounts/create", &req, &resp); err != nil {
				return err
			}
			return c.render(cmd.OutOrStdout(), &resp)
		},
	}
	f := createCmd.Flags()
	f.StringVarP(&file, "file", "f", "", "JSON request body ({\"accounts\": [...]}), - for stdin")
	f.StringVar(&input.ID, "id", "", "Account id (hex)")
	f.Uint32Var(&input.Ledger, "ledger", 0, "Ledger")
	f.Uint16Var(&input.Code, "code", 0, "Account code")
	f.StringVar(&input.UserData128, "user-data-128", "", "Opaque 128-bit user data (hex)")
	f.Uint64Var(&input.UserData64, "user-data-64", 0, "Opaque 64-bit user data")
	f.Uint32Var(&input.UserData32, "user-data-32", 0, "Opaque 32-bit user data")
	f.BoolVar(&input.Flags.DebitsMustNotExceedCredits, "debits-must-not-exceed-credits", false, "Reject debits beyond credits")
	f.BoolVar(&input.Flags.CreditsMustNotExceedDebits, "credits-must-not-exceed-debits", false, "Reject credits beyond debits")
	f.BoolVar(&input.Flags.History, "history", false, "Record balance history")

	lookupCmd := &cobra.Command{
		Use:   "lookup <id>...",
		Short: "Look up accounts by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.LookupAccountsRequest{AccountIDs: args}
			if _, err := req.ToDomain(); err != nil {
				return err
			}

			var resp dto.AccountsResponse
			if err := c.client().do(cmd.Context(), http.MethodPost, "/accounts/lookup", &req, &resp); err != nil {
				return err
			}
			return c.render(cmd.OutOrStdout(), &resp)
		},
	}

	var query dto.QueryFilter
	queryCmd := &cobra.Command{
		Use:   "query",
		Short: "Query accounts by user data, ledger and code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.QueryFilterRequest{Filter: query}
			if _, err := req.ToDomain(); err != nil {
				return err
			}

			var resp dto.AccountsResponse
			if err := c.client().do(cmd.Context(), http.MethodPost, "/accounts/query", &req, &resp); err != nil {
				return err
			}
			return c.render(cmd.OutOrStdout(), &resp)
		},
	}
	queryFlags(queryCmd, &query)

	cmd.AddCommand(createCmd, lookupCmd, queryCmd)
	return cmd
}

func (c *cli) transfersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfers",
		Short: "Transfer operations",
	}

	var (
		file  string
		input dto.TransferInput
	)
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create transfers from --file or from flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.CreateTransfersRequest{Transfers: []dto.TransferInput{input}}
			if file != "" {
				req = dto.CreateTransfersRequest{}
				if err := readJSON(cmd.InOrStdin(), file, &req); err != nil {
					return err
				}
			}
			if _, err := req.ToDomain(); err != nil {
				return err
			}

			var resp dto.CreateResultsResponse
			if err := c.client().do(cmd.Context(), http.MethodPost, "/transfers/create", &req, &resp); err != nil {
				return err
			}
			return c.render(cmd.OutOrStdout(), &resp)
		},
	}
	f := createCmd.Flags()
	f.StringVarP(&file, "file", "f", "", "JSON request body ({\"transfers\": [...]}), - for stdin")
	f.StringVar(&input.ID, "id", "", "Transfer id (hex)")
	f.StringVar(&input.DebitAccountID, "debit", "", "Debit account id (hex)")
	f.StringVar(&input.CreditAccountID, "credit", "", "Credit account id (hex)")
	f.StringVar(&input.Amount, "amount", "", "Amount as a decimal integer")
	f.StringVar(&input.PendingID, "pending-id", "", "Pending transfer to post or void (hex)")
	f.Uint32Var(&input.Ledger, "ledger", 0, "Ledger")
	f.Uint16Var(&input.Code, "code", 0, "Transfer code")
	f.StringVar(&input.UserData128, "user-data-128", "", "Opaque 128-bit user data (hex)")
	f.Uint64Var(&input.UserData64, "user-data-64", 0, "Opaque 64-bit user data")
	f.Uint32Var(&input.UserData32, "user-data-32", 0, "Opaque 32-bit user data")
	f.BoolVar(&input.Flags.Pending, "pending", false, "Reserve the amount as a two-phase transfer")
	f.BoolVar(&input.Flags.PostPendingTransfer, "post", false, "Post the transfer named by --pending-id")
	f.BoolVar(&input.Flags.VoidPendingTransfer, "void", false, "Void the transfer named by --pending-id")
	f.BoolVar(&input.Flags.BalancingDebit, "balancing-debit", false, "Clamp the amount to the debit account's balance")
	f.BoolVar(&input.Flags.BalancingCredit, "balancing-credit", false, "Clamp the amount to the credit account's balance")

	lookupCmd := &cobra.Command{
		Use:   "lookup <id>...",
		Short: "Look up transfers by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.LookupTransfersRequest{TransferIDs: args}
			if _, err := req.ToDomain(); err != nil {
				return err
			}

			var resp dto.TransfersResponse
			if err := c.client().do(cmd.Context(), http.MethodPost, "/transfers/lookup", &req, &resp); err != nil {
				return err
			}
			return c.render(cmd.OutOrStdout(), &resp)
		},
	}

	var query dto.QueryFilter
	queryCmd := &cobra.Command{
		Use:   "query",
		Short: "Query transfers by user data, ledger and code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.QueryFilterRequest{Filter: query}
			if _, err := req.ToDomain(); err != nil {
				return err
			}

			var resp dto.TransfersResponse
			if err := c.client().do(cmd.Context(), http.MethodPost, "/transfers/query", &req, &resp); err != nil {
				return err
			}
			return c.render(cmd.OutOrStdout(), &resp)
		},
	}
	queryFlags(queryCmd, &query)

	cmd.AddCommand(createCmd, lookupCmd, queryCmd)
	return cmd
}

func (c *cli) accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Per-account history",
	}

	var transfersFilter dto.AccountFilter
	transfersCmd := &cobra.Command{
		Use:   "transfers <account-id>",
		Short: "List transfers touching an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			transfersFilter.AccountID = args[0]
			req := dto.AccountFilterRequest{Filter: transfersFilter}
			if _, err := req.ToDomain(); err != nil {
				return err
			}

			var resp dto.TransfersResponse
			if err := c.client().do(cmd.Context(), http.MethodPost, "/account/transfers", &req, &resp); err != nil {
				return err
			}
			return c.render(cmd.OutOrStdout(), &resp)
		},
	}
	accountFilterFlags(transfersCmd, &transfersFilter)

	var balancesFilter dto.AccountFilter
	balancesCmd := &cobra.Command{
		Use:   "balances <account-id>",
		Short: "List historical balances of an account with history enabled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			balancesFilter.AccountID = args[0]
			req := dto.AccountFilterRequest{Filter: balancesFilter}
			if _, err := req.ToDomain(); err != nil {
				return err
			}

			var resp dto.AccountBalancesResponse
			if err := c.client().do(cmd.Context(), http.MethodPost, "/account/balances", &req, &resp); err != nil {
				return err
			}
			return c.render(cmd.OutOrStdout(), &resp)
		},
	}
	accountFilterFlags(balancesCmd, &balancesFilter)

	cmd.AddCommand(transfersCmd, balancesCmd)
	return cmd
}

func (c *cli) ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check that debits equal credits in every ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ConsistencyResponse
			err := c.client().do(cmd.Context(), http.MethodGet, "/ledger/consistency", nil, &resp)

			var apiErr *apiError
			if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
				if jsonErr := json.Unmarshal(apiErr.Body, &resp); jsonErr != nil {
					return err
				}
				if renderErr := c.render(cmd.OutOrStdout(), &resp); renderErr != nil {
					return renderErr
				}
				return errors.New("consistency check FAILED")
			}
			if err != nil {
				return err
			}

			return c.render(cmd.OutOrStdout(), &resp)
		},
	}

	cmd.AddCommand(consistencyCmd)
	return cmd
}

func queryFlags(cmd *cobra.Command, q *dto.QueryFilter) {
	f := cmd.Flags()
	f.StringVar(&q.UserData128, "user-data-128", "", "Match user_data_128 (hex)")
	f.Uint64Var(&q.UserData64, "user-data-64", 0, "Match user_data_64")
	f.Uint32Var(&q.UserData32, "user-data-32", 0, "Match user_data_32")
	f.Uint32Var(&q.Ledger, "ledger", 0, "Match ledger")
	f.Uint16Var(&q.Code, "code", 0, "Match code")
	f.Uint32Var(&q.Limit, "limit", 10, "Maximum number of results")
	f.BoolVar(&q.Flags.Reversed, "reversed", false, "Newest first")
	timeWindowFlags(cmd, &q.TimeWindow)
}

func accountFilterFlags(cmd *cobra.Command, af *dto.AccountFilter) {
	f := cmd.Flags()
	f.Uint32Var(&af.Limit, "limit", 10, "Maximum number of results")
	f.BoolVar(&af.Flags.Debits, "debits", false, "Include transfers debiting the account")
	f.BoolVar(&af.Flags.Credits, "credits", false, "Include transfers crediting the account")
	f.BoolVar(&af.Flags.Reversed, "reversed", false, "Newest first")
	timeWindowFlags(cmd, &af.TimeWindow)
}

// pagingHelp is appended to every command that takes a time window.
const pagingHelp = `Both bounds are inclusive. To fetch the next page pass the last
returned timestamp plus one as --from, or minus one as --to with --reversed.`

func timeWindowFlags(cmd *cobra.Command, w *dto.TimeWindow) {
	f := cmd.Flags()
	f.StringVar(&w.TimestampMinTime, "from", "", "Inclusive lower bound (RFC3339Nano or nanoseconds); next page starts at last timestamp + 1")
	f.StringVar(&w.TimestampMaxTime, "to", "", "Inclusive upper bound (RFC3339Nano or nanoseconds); with --reversed the next page ends at last timestamp - 1")
	cmd.Long = cmd.Short + "\n\n" + pagingHelp
}

// readJSON decodes path, or stdin when path is "-", into dst.
func readJSON(stdin io.Reader, path string, dst any) error {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
