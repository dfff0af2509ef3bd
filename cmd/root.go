package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/examdeck/internal/config"
	"github.com/abhisek/examdeck/internal/examapi"
	"github.com/abhisek/examdeck/internal/session"
	"github.com/abhisek/examdeck/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "examdeck",
	Short: "Practise multiple-choice exams in the terminal",
	Long: "Examdeck: pick a subject, then take a timed mock exam or review questions at random or by chapter.\n" +
		"Attempts are kept locally so you can revisit them later.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, 0)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides EXAMDECK_DB env var)")
	pf.String("api-url", "", "Question bank base URL (overrides EXAMDECK_API_URL)")
	pf.String("api-key", "", "Question bank API key (overrides EXAMDECK_API_KEY)")
	pf.String("log-file", "", "Log file used while the TUI runs (overrides EXAMDECK_LOG_FILE)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(subjectsCmd)
	rootCmd.AddCommand(chaptersCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then EXAMDECK_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.FromEnv()
	if v, _ := cmd.Flags().GetString("api-url"); v != "" {
		cfg.API.BaseURL = v
	}
	if v, _ := cmd.Flags().GetString("api-key"); v != "" {
		cfg.API.APIKey = v
	}
	if v, _ := cmd.Flags().GetString("log-file"); v != "" {
		cfg.LogFile = v
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// deps are the collaborators commands build on.
type deps struct {
	cfg    config.Config
	store  *store.Store
	source *examapi.Client
}

// openDeps loads configuration and opens the local store.
func openDeps(cmd *cobra.Command) (*deps, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	src, err := examapi.New(examapi.Config{
		BaseURL: cfg.API.BaseURL,
		APIKey:  cfg.API.APIKey,
		Timeout: cfg.API.Timeout,
	})
	if err != nil {
		st.Close()
		return nil, err
	}
	return &deps{cfg: cfg, store: st, source: src}, nil
}

func (d *deps) Close() error {
	return d.store.Close()
}

func (d *deps) history() store.HistoryRepo {
	return store.NewHistoryRepo(d.store.KV())
}

func (d *deps) sessions() store.SessionRepo {
	return store.NewSessionRepo(d.store.KV(), time.Now)
}

func (d *deps) subjectCache() store.SubjectCacheRepo {
	return store.NewSubjectCache(d.store.KV(), d.cfg.SubjectCacheTTL, time.Now)
}

// machine builds a session machine over the store and the exam source.
func (d *deps) machine() *session.Machine {
	return session.New(session.Deps{
		Source:   d.source,
		Sessions: d.sessions(),
		History:  d.history(),
		Subjects: d.subjectCache(),
	})
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
