package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"

	"github.com/iho/ledgerd/internal/adapter/http/dto"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// scaleAmount shifts an integer amount string by scale decimal places.
// Values that do not parse are returned unchanged.
func scaleAmount(amount string, scale int32) string {
	if scale <= 0 {
		return amount
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return amount
	}
	return d.Shift(-scale).StringFixed(scale)
}

func renderTable(w io.Writer, data pterm.TableData) error {
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

// render writes v as JSON, or as a table when requested and v has a
// tabular form.
func (c *cli) render(w io.Writer, v any) error {
	if !c.table {
		return printJSON(w, v)
	}

	var data pterm.TableData
	switch r := v.(type) {
	case *dto.CreateResultsResponse:
		data = pterm.TableData{{"Index", "Result"}}
		for _, item := range r.Results {
			data = append(data, []string{strconv.Itoa(item.Index), item.Result})
		}
	case *dto.AccountsResponse:
		data = pterm.TableData{{"ID", "Ledger", "Code", "Debits Posted", "Credits Posted", "Debits Pending", "Credits Pending", "Created"}}
		for _, a := range r.Accounts {
			data = append(data, []string{
				truncate(a.ID, 34),
				strconv.FormatUint(uint64(a.Ledger), 10),
				strconv.FormatUint(uint64(a.Code), 10),
				scaleAmount(a.DebitsPosted, c.scale),
				scaleAmount(a.CreditsPosted, c.scale),
				scaleAmount(a.DebitsPending, c.scale),
				scaleAmount(a.CreditsPending, c.scale),
				a.CreatedAt,
			})
		}
	case *dto.TransfersResponse:
		data = pterm.TableData{{"ID", "Debit", "Credit", "Amount", "Ledger", "Code", "Pending ID", "Created"}}
		for _, t := range r.Transfers {
			data = append(data, []string{
				truncate(t.ID, 34),
				truncate(t.DebitAccountID, 34),
				truncate(t.CreditAccountID, 34),
				scaleAmount(t.Amount, c.scale),
				strconv.FormatUint(uint64(t.Ledger), 10),
				strconv.FormatUint(uint64(t.Code), 10),
				truncate(t.PendingID, 34),
				t.CreatedAt,
			})
		}
	case *dto.AccountBalancesResponse:
		data = pterm.TableData{{"Recorded", "Debits Posted", "Credits Posted", "Debits Pending", "Credits Pending"}}
		for _, b := range r.AccountBalances {
			data = append(data, []string{
				b.RecordedAt,
				scaleAmount(b.DebitsPosted, c.scale),
				scaleAmount(b.CreditsPosted, c.scale),
				scaleAmount(b.DebitsPending, c.scale),
				scaleAmount(b.CreditsPending, c.scale),
			})
		}
	case *dto.ConsistencyResponse:
		data = pterm.TableData{{"Ledger", "Accounts", "Debits Posted", "Credits Posted", "Debits Pending", "Credits Pending", "Balanced"}}
		for _, l := range r.Ledgers {
			data = append(data, []string{
				strconv.FormatUint(uint64(l.Ledger), 10),
				strconv.Itoa(l.Accounts),
				scaleAmount(l.DebitsPosted, c.scale),
				scaleAmount(l.CreditsPosted, c.scale),
				scaleAmount(l.DebitsPending, c.scale),
				scaleAmount(l.CreditsPending, c.scale),
				strconv.FormatBool(l.Balanced),
			})
		}
	default:
		return printJSON(w, v)
	}

	return renderTable(w, data)
}
