package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lantern-study/lantern/store"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage study sessions within a lecture",
}

var sessionNewCmd = &cobra.Command{
	Use:   "new <lecture> [name]",
	Short: "Start a new session (name defaults to a timestamp)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		name := ""
		if len(args) > 1 {
			name = args[1]
		}
		rec, err := a.Store.CreateSession(args[0], name)
		if err != nil {
			return err
		}
		fmt.Printf("Created session '%s' in lecture '%s'\n", rec.Name, args[0])
		return nil
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "list <lecture>",
	Short: "List a lecture's sessions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		if !a.Store.LectureExists(args[0]) {
			return fmt.Errorf("%w: %s", store.ErrLectureNotFound, args[0])
		}
		for _, name := range a.Store.ListSessions(args[0]) {
			fmt.Println(name)
		}
		return nil
	},
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete <lecture> <session>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		if err := a.Store.DeleteSession(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Deleted session '%s'\n", args[1])
		return nil
	},
}

var historyLimit int
var historyOffset int

var sessionHistoryCmd = &cobra.Command{
	Use:   "history <lecture> <session>",
	Short: "Show a session's messages",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		if !a.Store.SessionExists(args[0], args[1]) {
			return fmt.Errorf("%w: %s", store.ErrSessionNotFound, args[1])
		}
		for _, msg := range a.Store.ReadMessages(args[0], args[1], historyOffset, historyLimit) {
			fmt.Printf("[%s] %s\n", msg.Role, msg.Content)
		}
		return nil
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear <lecture> <session>",
	Short: "Clear a session's conversation history",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		if !a.Store.SessionExists(args[0], args[1]) {
			return fmt.Errorf("%w: %s", store.ErrSessionNotFound, args[1])
		}
		if err := a.Store.ClearHistory(args[0], args[1]); err != nil {
			return err
		}
		fmt.Println("History cleared.")
		return nil
	},
}

var sessionDocCmd = &cobra.Command{
	Use:   "doc <lecture> <session> <file>",
	Short: "Attach a document to a session",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		stored, err := a.Store.AddSessionDocument(args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Printf("Added document '%s' to session '%s'\n", stored, args[1])
		return nil
	},
}

var sessionModelCmd = &cobra.Command{
	Use:   "model <lecture> <session> <model>",
	Short: "Set the session's model",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		if err := a.Store.SetModel(args[0], args[1], args[2]); err != nil {
			return err
		}
		fmt.Printf("Session '%s' model set to '%s'\n", args[1], args[2])
		return nil
	},
}

var sessionParamCmd = &cobra.Command{
	Use:   "param <lecture> <session> <name> <value>",
	Short: "Set a sampling parameter (temperature, top_p, num_predict)",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		if err := a.Store.SetParameter(args[0], args[1], args[2], args[3]); err != nil {
			return err
		}
		fmt.Printf("Set %s = %s\n", args[2], args[3])
		return nil
	},
}

var sessionParamsCmd = &cobra.Command{
	Use:   "params <lecture> <session>",
	Short: "Show the session's model and sampling parameters",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		rec, err := a.Store.GetSession(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("model: %s\n", rec.Model)
		fmt.Printf("temperature: %g\n", rec.ModelParams.Temperature)
		fmt.Printf("top_p: %g\n", rec.ModelParams.TopP)
		fmt.Printf("num_predict: %d\n", rec.ModelParams.NumPredict)
		return nil
	},
}

var sessionSummariesCmd = &cobra.Command{
	Use:   "summaries <lecture> <session>",
	Short: "Show a session's recorded summaries",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		rec, err := a.Store.GetSession(args[0], args[1])
		if err != nil {
			return err
		}
		if len(rec.Summaries) == 0 {
			fmt.Println("No summaries yet.")
			return nil
		}
		for _, s := range rec.Summaries {
			fmt.Printf("[messages %d-%d] %s\n", s.StartIndex, s.EndIndex, s.Summary)
		}
		return nil
	},
}

var sessionSummarizeCmd = &cobra.Command{
	Use:   "summarize <lecture> <session>",
	Short: "Summarize the session's full history now",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		digest, err := a.Engine.SummarizeHistory(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Println(digest)
		return nil
	},
}

func init() {
	sessionHistoryCmd.Flags().IntVar(&historyOffset, "offset", 0, "skip the first N messages")
	sessionHistoryCmd.Flags().IntVar(&historyLimit, "limit", -1, "show at most N messages")

	sessionCmd.AddCommand(sessionNewCmd)
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionDeleteCmd)
	sessionCmd.AddCommand(sessionHistoryCmd)
	sessionCmd.AddCommand(sessionClearCmd)
	sessionCmd.AddCommand(sessionDocCmd)
	sessionCmd.AddCommand(sessionModelCmd)
	sessionCmd.AddCommand(sessionParamCmd)
	sessionCmd.AddCommand(sessionParamsCmd)
	sessionCmd.AddCommand(sessionSummariesCmd)
	sessionCmd.AddCommand(sessionSummarizeCmd)
	rootCmd.AddCommand(sessionCmd)
}
