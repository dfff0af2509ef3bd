package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examdeck/internal/counter"
	"github.com/abhisek/examdeck/internal/llm"
	"github.com/abhisek/examdeck/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the requests made for AI explanations",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded explanation requests, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		var f store.LLMRequestFilter
		f.Limit, _ = cmd.Flags().GetInt("limit")
		f.Purpose, _ = cmd.Flags().GetString("purpose")
		f.Provider, _ = cmd.Flags().GetString("provider")
		f.FailedOnly, _ = cmd.Flags().GetBool("failed")

		repo, closeDB, err := openLLMLog(cmd)
		if err != nil {
			return err
		}
		defer closeDB()

		events, err := repo.List(cmd.Context(), f)
		if err != nil {
			return fmt.Errorf("list requests: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No matching requests.")
			return nil
		}
		for _, e := range events {
			fmt.Println(requestLine(e))
		}
		return nil
	},
}

// requestLine renders one request as a single list row.
func requestLine(e store.LLMRequestEvent) string {
	status := "ok"
	if !e.Success {
		status = "failed"
		if e.ErrorMessage != "" {
			status += ": " + truncate(e.ErrorMessage, 40)
		}
	}
	return fmt.Sprintf("#%-5d %s  %-10s %-24s %6d/%-6d %7dms  %s",
		e.ID,
		e.Timestamp.Local().Format("01-02 15:04"),
		truncate(e.Provider, 10),
		truncate(e.Model, 24),
		e.InputTokens, e.OutputTokens,
		e.LatencyMs,
		status,
	)
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and response of one request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(strings.TrimPrefix(args[0], "#"))
		if err != nil {
			return fmt.Errorf("invalid request id %q", args[0])
		}

		repo, closeDB, err := openLLMLog(cmd)
		if err != nil {
			return err
		}
		defer closeDB()

		e, err := repo.Get(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get request: %w", err)
		}
		if e == nil {
			return fmt.Errorf("no request #%d", id)
		}

		fmt.Println(requestLine(*e))
		fmt.Printf("purpose %s, sent %s\n", e.Purpose, e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		if e.ErrorMessage != "" {
			fmt.Printf("error: %s\n", e.ErrorMessage)
		}
		printBody("Prompt", e.RequestBody)
		printBody("Response", e.ResponseBody)
		return nil
	},
}

// printBody prints a captured request or response, indenting JSON.
func printBody(title, body string) {
	fmt.Printf("\n== %s ==\n", title)
	if body == "" {
		fmt.Println("(empty)")
		return
	}
	fmt.Println(prettyJSON(body))
}

func prettyJSON(s string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(s), "", "  "); err != nil {
		return s
	}
	return buf.String()
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repo, closeDB, err := openLLMLog(cmd)
		if err != nil {
			return err
		}
		defer closeDB()

		t, err := repo.Totals(ctx)
		if err != nil {
			return fmt.Errorf("summarize requests: %w", err)
		}
		if t.Calls == 0 {
			fmt.Println("No explanations requested yet.")
			return nil
		}
		usage, err := repo.UsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("usage by model: %w", err)
		}
		fmt.Print(renderLLMStats(t, usage))
		return nil
	},
}

// renderLLMStats formats the totals and the per-model cost estimate.
func renderLLMStats(t store.LLMTotals, usage []store.LLMUsage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s requests (%s failed) from %s to %s\n",
		counter.Format(t.Calls), counter.Format(t.Failed),
		t.First.Local().Format("2006-01-02"), t.Last.Local().Format("2006-01-02"))
	fmt.Fprintf(&b, "%s tokens in, %s tokens out, %dms average latency\n\n",
		counter.Format(t.InputTokens), counter.Format(t.OutputTokens), t.AvgLatencyMs)

	var total float64
	var unpriced []string
	for _, u := range usage {
		cost := "n/a"
		if p := llm.LookupCost(u.Model); p != nil {
			c := p.Cost(u.InputTokens, u.OutputTokens)
			total += c
			cost = formatCost(c)
		} else {
			unpriced = append(unpriced, u.Model)
		}
		fmt.Fprintf(&b, "  %-28s %5d calls  %10s  %s\n",
			truncate(u.Model, 28), u.Calls,
			counter.Format(u.InputTokens+u.OutputTokens)+" tok", cost)
	}
	fmt.Fprintf(&b, "\nEstimated cost: %s", formatCost(total))
	if len(unpriced) > 0 {
		fmt.Fprintf(&b, " (excluding %s)", strings.Join(unpriced, ", "))
	}
	b.WriteString("\n")
	return b.String()
}

// openLLMLog opens only the local store; the request log needs no
// question bank configuration.
func openLLMLog(cmd *cobra.Command) (store.LLMRequestRepo, func(), error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return s.LLMRequestRepo(), func() { s.Close() }, nil
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only requests with this purpose, e.g. explain")
	llmListCmd.Flags().String("provider", "", "Only requests to this provider")
	llmListCmd.Flags().Bool("failed", false, "Only failed requests")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
