package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jask/linkwise/internal/draftstore"
)

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "Inspect and reset persisted draft records",
}

var draftsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored draft keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		lister, ok := e.store.(draftstore.Lister)
		if !ok {
			return fmt.Errorf("store backend %q cannot list keys", e.cfg.Store.Backend)
		}
		keys, err := lister.Keys(cmd.Context())
		if err != nil {
			return fmt.Errorf("list keys: %w", err)
		}
		sort.Strings(keys)

		out := cmd.OutOrStdout()
		if jsonOutput {
			if keys == nil {
				keys = []string{}
			}
			return outputJSON(out, keys)
		}
		if len(keys) == 0 {
			printInfo(out, "No drafts stored.")
			return nil
		}
		printSection(out, fmt.Sprintf("Drafts (%d)", len(keys)))
		for _, k := range keys {
			printInfo(out, "  "+k)
		}
		return nil
	},
}

var draftsShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Print one draft record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		if err := draftstore.ValidateKey(key); err != nil {
			return err
		}
		e, err := newEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		rec, ok, err := e.store.Get(cmd.Context(), key)
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		out := cmd.OutOrStdout()
		if !ok {
			if jsonOutput {
				return outputJSON(out, nil)
			}
			printWarning(out, fmt.Sprintf("%s is not set", key))
			return nil
		}
		if jsonOutput {
			return outputJSON(out, rec)
		}
		printSection(out, key)
		fields := make([]string, 0, len(rec))
		for f := range rec {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			printLabelValue(out, f, fmt.Sprintf("%v", rec[f]))
		}
		return nil
	},
}

var draftsResetCmd = &cobra.Command{
	Use:   "reset <key>",
	Short: "Delete one draft record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		if err := draftstore.ValidateKey(key); err != nil {
			return err
		}
		e, err := newEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.store.Reset(cmd.Context(), key); err != nil {
			return fmt.Errorf("reset %s: %w", key, err)
		}
		printSuccess(cmd.OutOrStdout(), "Reset "+key)
		return nil
	},
}

func init() {
	draftsCmd.AddCommand(draftsListCmd)
	draftsCmd.AddCommand(draftsShowCmd)
	draftsCmd.AddCommand(draftsResetCmd)
}
