package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/examdeck/internal/app"
	"github.com/abhisek/examdeck/internal/config"
	"github.com/abhisek/examdeck/internal/counter"
	"github.com/abhisek/examdeck/internal/explain"
	"github.com/abhisek/examdeck/internal/llm"
	"github.com/abhisek/examdeck/internal/store"
)

// runApp opens the store, builds dependencies, and launches the TUI. A
// positive subjectID skips the subject picker.
func runApp(cmd *cobra.Command, subjectID int) error {
	ctx := cmd.Context()
	d, err := openDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	closeLog := routeLog(d.cfg)
	defer closeLog()

	m := d.machine()
	if subjectID > 0 {
		subjects, err := m.Subjects(ctx, false)
		if err != nil {
			return err
		}
		sub, ok := findSubject(subjects, subjectID)
		if !ok {
			return fmt.Errorf("subject %d not found", subjectID)
		}
		if err := m.SelectSubject(sub); err != nil {
			return err
		}
	}

	opts := app.Options{
		Machine: m,
		Explain: newExplainer(ctx, d.store),
		Version: version,
	}
	if d.cfg.CounterEnabled() {
		c := d.cfg.Counter
		opts.Counter = counter.New(c.BaseURL, c.Namespace, c.Key, c.Timeout)
	}
	return app.Run(ctx, opts)
}

// routeLog sends the std logger to the log file so it never draws over
// the alternate screen. Without a usable file the log is discarded.
func routeLog(cfg config.Config) func() {
	path := cfg.LogFile
	if path == "" {
		p, err := config.DefaultLogPath()
		if err != nil {
			log.SetOutput(io.Discard)
			return func() {}
		}
		path = p
	}
	f, err := tea.LogToFile(path, "examdeck")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Logging disabled:", err)
		log.SetOutput(io.Discard)
		return func() {}
	}
	return func() { f.Close() }
}

// newExplainer builds the explanation service. Without a configured
// model it still serves cached explanations.
func newExplainer(ctx context.Context, st *store.Store) *explain.Service {
	cache := store.NewExplanationRepo(st.KV())
	cfg, ok := llm.ConfigFromEnv()
	if !ok {
		log.Printf("[explain] no LLM provider configured; AI explanations disabled")
		return explain.New(nil, cache, 0)
	}
	provider, err := llm.NewProvider(ctx, cfg, st.LLMRequestRepo())
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "AI explanations will be unavailable.")
		return explain.New(nil, cache, 0)
	}
	return explain.New(provider, cache, cfg.Timeout)
}
