package cli

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/jask/linkwise/internal/bankinfo"
	"github.com/jask/linkwise/internal/testdata"
)

var (
	demoAccounts int
	demoSeed     int64
)

var plaidCmd = &cobra.Command{
	Use:   "plaid",
	Short: "Feed aggregator results into the bank wizard",
}

var plaidLoadCmd = &cobra.Command{
	Use:   "load <file.toml>",
	Short: "Load an aggregation result from a TOML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		data, err := e.services.Fixtures.LoadPlaid(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return reportPlaid(cmd, data)
	},
}

var plaidDemoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Store a generated aggregation result",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if demoAccounts < 1 {
			return fmt.Errorf("--accounts must be at least 1")
		}
		e, err := newEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		seed := demoSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		data := testdata.GeneratePlaidData(demoAccounts, rand.New(rand.NewSource(seed)))
		if err := e.services.Fixtures.SavePlaid(cmd.Context(), data); err != nil {
			return err
		}
		return reportPlaid(cmd, &data)
	},
}

func reportPlaid(cmd *cobra.Command, data *bankinfo.PlaidData) error {
	out := cmd.OutOrStdout()
	if jsonOutput {
		return outputJSON(out, data)
	}
	printSuccess(out, fmt.Sprintf("Stored %d account(s) from %s", len(data.BankAccounts), data.BankName))
	for _, a := range data.BankAccounts {
		printLabelValue(out, a.PlaidAccountID, fmt.Sprintf("%s ••••%s", bankinfo.AccountType(a.IsSavings), a.Mask))
	}
	return nil
}

func init() {
	plaidDemoCmd.Flags().IntVar(&demoAccounts, "accounts", 3, "Number of accounts to generate")
	plaidDemoCmd.Flags().Int64Var(&demoSeed, "seed", 0, "Generator seed; 0 picks one from the clock")

	plaidCmd.AddCommand(plaidLoadCmd)
	plaidCmd.AddCommand(plaidDemoCmd)
}
