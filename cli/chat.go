package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat <lecture> <session> <message...>",
	Short: "Send a message in a session",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		reply, err := a.Engine.Chat(args[0], args[1], strings.Join(args[2:], " "))
		if err != nil {
			return err
		}
		fmt.Println(reply)
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <lecture> <session> [question...]",
	Short: "Answer a question against the lecture's documents",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		question := strings.Join(args[2:], " ")
		reply, err := a.Engine.AnalyzeLecture(args[0], args[1], question)
		if err != nil {
			return err
		}
		fmt.Println(reply)
		return nil
	},
}

var questionsScope string
var questionsSource string

var questionsCmd = &cobra.Command{
	Use:   "questions <lecture> <session>",
	Short: "Generate study questions from conversation history",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		source := questionsSource
		if source == "" {
			source = args[1]
		}
		reply, err := a.Engine.GenerateQuestions(args[0], args[1], questionsScope, source)
		if err != nil {
			return err
		}
		fmt.Println(reply)
		return nil
	},
}

func init() {
	questionsCmd.Flags().StringVar(&questionsScope, "scope", "session", "question source: 'session' or 'all'")
	questionsCmd.Flags().StringVar(&questionsSource, "from", "", "session to draw from when scope is 'session' (defaults to the active one)")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(questionsCmd)
}
