package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var subjectsCmd = &cobra.Command{
	Use:   "subjects",
	Short: "List subjects (served from the local cache when fresh)",
	RunE: func(cmd *cobra.Command, args []string) error {
		refresh, _ := cmd.Flags().GetBool("refresh")

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		subjects, err := d.machine().Subjects(cmd.Context(), refresh)
		if err != nil {
			return err
		}
		if len(subjects) == 0 {
			fmt.Println("No subjects available.")
			return nil
		}

		fmt.Printf("%6s  %-50s  %9s\n", "ID", "Name", "Questions")
		fmt.Println(strings.Repeat("─", 69))
		for _, s := range subjects {
			count := "-"
			if s.QuestionCount != nil {
				count = fmt.Sprint(*s.QuestionCount)
			}
			fmt.Printf("%6d  %-50s  %9s\n", s.ID, truncate(s.Name, 50), count)
		}
		fmt.Printf("\n%d subjects\n", len(subjects))
		return nil
	},
}

var chaptersCmd = &cobra.Command{
	Use:   "chapters <subject-id>",
	Short: "List the chapters of a subject",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseSubjectID(args[0])
		if err != nil {
			return err
		}
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		chapters, err := d.machine().FetchChapters(cmd.Context(), id)
		if err != nil {
			return err
		}
		if len(chapters) == 0 {
			fmt.Println("No chapters.")
			return nil
		}
		for _, c := range chapters {
			fmt.Println(c.Name)
		}
		return nil
	},
}

func init() {
	subjectsCmd.Flags().Bool("refresh", false, "Bypass the subject cache")
}
