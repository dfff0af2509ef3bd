package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examdeck/internal/scoring"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect or clear submitted attempts",
}

var historyListCmd = &cobra.Command{
	Use:   "list <subject-id>",
	Short: "List the attempts of a subject, newest first",
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

		items, err := d.history().List(cmd.Context(), id)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("No attempts yet.")
			return nil
		}

		fmt.Printf("%-19s  %-32s  %7s  %5s  %s\n", "Date", "Mode", "Correct", "Score", "Result")
		fmt.Println(strings.Repeat("─", 80))
		for _, it := range items {
			mode := it.Mode
			if it.Chapter != "" {
				mode += " / " + it.Chapter
			}
			tenths := scoring.Tenths(it.Correct, it.Total)
			result := "fail"
			if tenths >= scoring.PassTenths {
				result = "pass"
			}
			fmt.Printf("%-19s  %-32s  %3d/%-3d  %5s  %s\n",
				it.Date, truncate(mode, 32), it.Correct, it.Total, scoring.FormatTenths(tenths), result)
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear <subject-id>",
	Short: "Delete every attempt of a subject",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseSubjectID(args[0])
		if err != nil {
			return err
		}
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("refusing to delete history of subject %d without --yes", id)
		}
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.history().Clear(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Cleared history of subject %d.\n", id)
		return nil
	},
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect or discard the saved unfinished attempt",
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved unfinished attempt",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		snap, err := d.sessions().Load(cmd.Context())
		if err != nil {
			return err
		}
		if snap == nil {
			fmt.Println("No unfinished attempt.")
			return nil
		}
		fmt.Printf("Subject:   %s (%d)\n", snap.Subject.Name, snap.Subject.ID)
		fmt.Printf("Mode:      %s\n", snap.Mode.Label())
		if snap.Chapter != "" {
			fmt.Printf("Chapter:   %s\n", snap.Chapter)
		}
		fmt.Printf("Progress:  question %d of %d, %d answered\n",
			snap.Index+1, len(snap.Questions), len(snap.Answers))
		if snap.Mode.Timed() {
			fmt.Printf("Time left: %02d:%02d\n", snap.TimeLeft/60, snap.TimeLeft%60)
		}
		return nil
	},
}

var sessionDiscardCmd = &cobra.Command{
	Use:   "discard",
	Short: "Discard the saved unfinished attempt",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.sessions().Discard(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Discarded.")
		return nil
	},
}

func init() {
	historyClearCmd.Flags().BoolP("yes", "y", false, "Confirm deletion")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionDiscardCmd)
}
