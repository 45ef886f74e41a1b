package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var lectureCmd = &cobra.Command{
	Use:   "lecture",
	Short: "Manage lectures",
}

var lectureCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new lecture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		info, err := a.Store.CreateLecture(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Created lecture '%s'\n", info.Name)
		return nil
	},
}

var lectureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List lectures",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		lectures := a.Store.ListLectures()
		if len(lectures) == 0 {
			fmt.Println("No lectures yet. Create one with 'lantern lecture create <name>'.")
			return nil
		}
		for _, name := range lectures {
			fmt.Println(name)
		}
		return nil
	},
}

var lectureDocCmd = &cobra.Command{
	Use:   "doc <lecture> <file>",
	Short: "Attach a document to a lecture",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		stored, err := a.Store.AddLectureDocument(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Added document '%s' to lecture '%s'\n", stored, args[0])
		return nil
	},
}

var lectureModelCmd = &cobra.Command{
	Use:   "model <lecture> <model>",
	Short: "Set the default model for a lecture",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		if err := a.Store.SetLectureModel(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Lecture '%s' model set to '%s'\n", args[0], args[1])
		return nil
	},
}

func init() {
	lectureCmd.AddCommand(lectureCreateCmd)
	lectureCmd.AddCommand(lectureListCmd)
	lectureCmd.AddCommand(lectureDocCmd)
	lectureCmd.AddCommand(lectureModelCmd)
	rootCmd.AddCommand(lectureCmd)
}
