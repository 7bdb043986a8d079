package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jask/linkwise/internal/switcher"
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "List switcher contacts, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		opts, err := e.services.Contacts.Options(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			if opts == nil {
				opts = []switcher.Option{}
			}
			return outputJSON(out, opts)
		}
		printSection(out, fmt.Sprintf("Contacts (%d)", len(opts)))
		for _, o := range opts {
			printLabelValue(out, o.Text, o.AlternateText)
		}
		return nil
	},
}
