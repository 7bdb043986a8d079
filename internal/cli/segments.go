package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jask/linkwise/internal/netsuite"
)

var segmentsPolicy string

var segmentsCmd = &cobra.Command{
	Use:   "segments",
	Short: "List NetSuite custom segments of a policy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		policyID := segmentsPolicy
		if policyID == "" {
			policyID = e.cfg.Policy.ID
		}
		policy, err := e.services.Segments.Policy(cmd.Context(), policyID)
		if err != nil {
			return err
		}
		segments := policy.CustomSegments
		if segments == nil {
			segments = []netsuite.CustomSegment{}
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return outputJSON(out, segments)
		}
		printSection(out, fmt.Sprintf("Policy %s (%d)", policy.ID, len(segments)))
		for _, s := range segments {
			printLabelValue(out, s.SegmentName, fmt.Sprintf("%s %s -> %s", s.ScriptID, s.InternalID, s.Mapping))
		}
		return nil
	},
}

func init() {
	segmentsCmd.Flags().StringVar(&segmentsPolicy, "policy", "", "Policy id (defaults to policy.id)")
}
