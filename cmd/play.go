package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/examdeck/internal/exam"
)

var playCmd = &cobra.Command{
	Use:   "play <subject-id>",
	Short: "Open the mode picker of a subject directly",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseSubjectID(args[0])
		if err != nil {
			return err
		}
		return runApp(cmd, id)
	},
}

func parseSubjectID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid subject id %q", s)
	}
	return id, nil
}

func findSubject(subjects []exam.Subject, id int) (exam.Subject, bool) {
	for _, s := range subjects {
		if s.ID == id {
			return s, true
		}
	}
	return exam.Subject{}, false
}
