package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show lectures, sessions, documents and cache usage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()

		lectures := a.Store.Status()
		if len(lectures) == 0 {
			fmt.Println("No lectures yet.")
		} else {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "LECTURE\tSESSIONS\tDOCS\tMESSAGES\t~TOKENS")
			for _, ls := range lectures {
				messages := 0
				for _, ss := range ls.Sessions {
					messages += ss.MessageCount
				}
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n",
					ls.Name, ls.SessionCount, len(ls.Documents), messages, ls.EstimatedTokens)
			}
			w.Flush()
		}

		files, bytes := a.Cache.Stats()
		fmt.Printf("\nCache: %d entries, %.1f KB\n", files, float64(bytes)/1024)
		return nil
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the extraction cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache usage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		files, bytes := a.Cache.Stats()
		fmt.Printf("%d entries, %.1f KB\n", files, float64(bytes)/1024)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached extraction",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		if err := a.Cache.Clear(); err != nil {
			return err
		}
		fmt.Println("Cache cleared.")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(cacheCmd)
}
