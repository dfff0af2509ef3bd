package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examdeck/internal/exam"
	"github.com/abhisek/examdeck/internal/examapi"
	"github.com/abhisek/examdeck/internal/scoring"
)

var previewCmd = &cobra.Command{
	Use:   "preview <subject-id>",
	Short: "Answer generated questions in plain text (no database)",
	Long: `Fetch questions for a subject and answer them line by line.

Nothing is stored: no history and no saved session.
Useful for checking what the question bank returns.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().String("mode", string(exam.ModeRandomReview), "Exam mode: thithu, on_ngaunhien or on_chuong")
	previewCmd.Flags().String("chapter", "", "Chapter name (required for on_chuong)")
	previewCmd.Flags().Int("count", 0, "Stop after this many questions (0 = all)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	id, err := parseSubjectID(args[0])
	if err != nil {
		return err
	}
	modeVal, _ := cmd.Flags().GetString("mode")
	chapter, _ := cmd.Flags().GetString("chapter")
	count, _ := cmd.Flags().GetInt("count")

	mode, err := exam.ParseMode(modeVal)
	if err != nil {
		return err
	}
	if mode.NeedsChapter() && chapter == "" {
		return fmt.Errorf("--chapter is required for %s", mode.Label())
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	src, err := examapi.New(examapi.Config{BaseURL: cfg.API.BaseURL, APIKey: cfg.API.APIKey, Timeout: cfg.API.Timeout})
	if err != nil {
		return err
	}

	questions, err := src.GenerateQuestions(cmd.Context(), id, mode, chapter)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		fmt.Println("No questions found.")
		return nil
	}
	if count > 0 && count < len(questions) {
		questions = questions[:count]
	}

	fmt.Printf("%s: %d questions\n\n", mode.Label(), len(questions))
	answers := exam.AnswerMap{}
	scanner := bufio.NewScanner(os.Stdin)

	for i, q := range questions {
		fmt.Printf("── Question %d/%d ──\n", i+1, len(questions))
		fmt.Println(q.Text)
		for _, a := range q.Answers {
			fmt.Printf("  %s) %s\n", a.Key, a.Text)
		}

		fmt.Print("\nYour answer: ")
		if !scanner.Scan() {
			fmt.Println("\n(input closed)")
			break
		}
		key := matchAnswerKey(q, strings.TrimSpace(scanner.Text()))
		if key == "" {
			fmt.Println("(skipped)")
			fmt.Println()
			continue
		}
		answers[i] = key

		if q.IsCorrect(key) {
			fmt.Println("\033[32m✓ Correct!\033[0m")
		} else {
			fmt.Printf("\033[31m✗ Wrong.\033[0m Answer: %s\n", q.CorrectKey)
		}
		if q.Explanation != "" {
			fmt.Printf("Explanation: %s\n", q.Explanation)
		}
		fmt.Println()
	}

	r := scoring.Score(questions, answers)
	fmt.Printf("── Summary: %d/%d correct, score %s ──\n", r.Correct, r.Total, r.Score)
	return nil
}

// matchAnswerKey resolves typed input to an answer key, case
// insensitively. It returns "" when nothing matches.
func matchAnswerKey(q exam.Question, input string) string {
	for _, a := range q.Answers {
		if strings.EqualFold(a.Key, input) {
			return a.Key
		}
	}
	return ""
}
