package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examdeck/internal/scoring"
	"github.com/abhisek/examdeck/internal/store"
)

// subjectStats aggregates the stored attempts of one subject.
type subjectStats struct {
	Attempts   int
	Passed     int
	BestTenths int
	AvgTenths  int
	LastDate   string
}

func summarize(items []store.HistoryItem) subjectStats {
	var s subjectStats
	if len(items) == 0 {
		return s
	}
	total := 0
	for _, it := range items {
		t := scoring.Tenths(it.Correct, it.Total)
		total += t
		s.BestTenths = max(s.BestTenths, t)
		if t >= scoring.PassTenths {
			s.Passed++
		}
	}
	s.Attempts = len(items)
	s.AvgTenths = (total*2 + s.Attempts) / (2 * s.Attempts)
	// Items are stored newest first.
	s.LastDate = items[0].Date
	return s
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show score statistics per subject",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		ids, err := store.HistorySubjectIDs(ctx, d.store.KV())
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("No attempts recorded yet.")
			return nil
		}

		// Names come from the cache only; stats never hit the network.
		names := map[int]string{}
		if cached, ok, err := d.subjectCache().Get(ctx); err != nil {
			log.Printf("[stats] subject cache: %v", err)
		} else if ok {
			for _, s := range cached {
				names[s.ID] = s.Name
			}
		}

		fmt.Printf("%-32s  %8s  %6s  %5s  %5s  %s\n", "Subject", "Attempts", "Passed", "Best", "Avg", "Last attempt")
		fmt.Println(strings.Repeat("─", 84))
		history := d.history()
		for _, id := range ids {
			items, err := history.List(ctx, id)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				continue
			}
			s := summarize(items)
			name := names[id]
			if name == "" {
				name = fmt.Sprintf("#%d", id)
			}
			fmt.Printf("%-32s  %8d  %6d  %5s  %5s  %s\n",
				truncate(name, 32), s.Attempts, s.Passed,
				scoring.FormatTenths(s.BestTenths), scoring.FormatTenths(s.AvgTenths), s.LastDate)
		}
		return nil
	},
}
