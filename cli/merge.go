package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lantern-study/lantern/merge"
)

var mergeDestination string
var mergeYes bool

var mergeCmd = &cobra.Command{
	Use:   "merge <lecture>",
	Short: "Merge all of a lecture's sessions into one",
	Long: `Merge every session of the lecture into a single destination session,
with per-session boundary markers. Large merges and overwrites of an existing
destination ask for confirmation unless --yes is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()

		confirm := promptConfirm
		if mergeYes {
			confirm = nil
		}

		report, err := a.Merger.MergeAll(args[0], merge.Options{
			DestinationName: mergeDestination,
			Confirm:         confirm,
		})
		if err != nil {
			return err
		}
		if report.Cancelled {
			fmt.Printf("Merge cancelled: %s\n", report.CancelReason)
			return nil
		}

		fmt.Printf("Merged %d sessions (%d messages, ~%.1f MB) into '%s'\n",
			report.SessionCount, report.TotalMessages, report.EstimatedSizeMB, report.Destination)
		return nil
	},
}

// promptConfirm asks on stdin; anything but y/yes declines
func promptConfirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func init() {
	mergeCmd.Flags().StringVar(&mergeDestination, "into", "", "destination session name (defaults to MergedSess-<lecture>)")
	mergeCmd.Flags().BoolVarP(&mergeYes, "yes", "y", false, "confirm all prompts")
	rootCmd.AddCommand(mergeCmd)
}
