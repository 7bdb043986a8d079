package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jask/linkwise/internal/bankinfo"
)

type accountJSON struct {
	Seq       int64  `json:"bankAccountID"`
	ID        string `json:"accountID"`
	BankName  string `json:"bankName"`
	Mask      string `json:"mask"`
	Type      string `json:"type"`
	ViaPlaid  bool   `json:"viaPlaid"`
	CreatedAt string `json:"createdAt"`
}

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List linked bank accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		list, err := e.services.Bank.Accounts.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list accounts: %w", err)
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			rows := make([]accountJSON, 0, len(list))
			for _, a := range list {
				rows = append(rows, accountJSON{
					Seq:       a.Seq,
					ID:        a.ID,
					BankName:  a.BankName,
					Mask:      a.Mask,
					Type:      bankinfo.AccountType(a.IsSavings),
					ViaPlaid:  a.PlaidAccountID != "",
					CreatedAt: a.CreatedAt.Format("2006-01-02 15:04:05"),
				})
			}
			return outputJSON(out, rows)
		}
		if len(list) == 0 {
			printInfo(out, "No linked accounts.")
			return nil
		}
		printSection(out, fmt.Sprintf("Linked accounts (%d)", len(list)))
		for _, a := range list {
			printLabelValue(out, fmt.Sprintf("#%d %s", a.Seq, a.BankName),
				fmt.Sprintf("%s ••••%s", bankinfo.AccountType(a.IsSavings), a.Mask))
		}
		return nil
	},
}
