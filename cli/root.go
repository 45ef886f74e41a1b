// Package cli wires the study assistant's subsystems behind a cobra command
// tree. Every command names its lecture (and session) explicitly; there is no
// ambient "current lecture" state between invocations.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lantern-study/lantern/cache"
	"github.com/lantern-study/lantern/chat"
	"github.com/lantern-study/lantern/config"
	"github.com/lantern-study/lantern/extract"
	"github.com/lantern-study/lantern/log"
	"github.com/lantern-study/lantern/merge"
	"github.com/lantern-study/lantern/store"
	"github.com/lantern-study/lantern/vendors"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "lantern",
	Short: "Personal study assistant for lecture documents and sessions",
	Long: `lantern organizes study material into lectures, keeps per-session
conversation history with an assistant model, extracts and caches lecture
document text, and can merge a lecture's sessions into one reviewable record.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel("debug")
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// app bundles the wired subsystems a command works against
type app struct {
	Store      *store.Store
	Cache      *cache.Cache
	Dispatcher *extract.Dispatcher
	Engine     *chat.Engine
	Merger     *merge.Engine
}

// newApp builds the full subsystem graph from configuration. The model
// client may be nil when no API key is set; chat commands then report the
// failure in their reply rather than refusing to start.
func newApp() *app {
	cfg := config.Get()

	st := store.New(cfg.LecturesDir(), cfg.OpenAIModel)
	contentCache := cache.New(cfg.CacheDir())
	dispatcher := extract.NewDispatcher(contentCache)
	client := vendors.GetOpenAIClient()
	merger := merge.NewEngine(st)

	return &app{
		Store:      st,
		Cache:      contentCache,
		Dispatcher: dispatcher,
		Engine:     chat.NewEngine(st, dispatcher, client, merger, cfg.ContextMessages),
		Merger:     merger,
	}
}
