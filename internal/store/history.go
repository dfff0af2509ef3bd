package store

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
)

// HistoryKey returns the storage key of a subject's history.
func HistoryKey(subjectID int) string {
	return historyKeyPrefix + strconv.Itoa(subjectID)
}

// HistorySubjectIDs lists the subjects that have stored history, in
// ascending order. Keys with a malformed id are skipped.
func HistorySubjectIDs(ctx context.Context, kv KV) ([]int, error) {
	keys, err := kv.Keys(ctx, historyKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list history keys: %w", err)
	}
	ids := make([]int, 0, len(keys))
	for _, k := range keys {
		id, err := strconv.Atoi(strings.TrimPrefix(k, historyKeyPrefix))
		if err != nil {
			log.Printf("[store] skipping history key %q", k)
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

type historyRepo struct {
	kv KV
}

// NewHistoryRepo returns a HistoryRepo over kv.
func NewHistoryRepo(kv KV) HistoryRepo {
	return &historyRepo{kv: kv}
}

func (r *historyRepo) List(ctx context.Context, subjectID int) ([]HistoryItem, error) {
	var items []HistoryItem
	if _, err := getJSON(ctx, r.kv, HistoryKey(subjectID), &items); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return items, nil
}

func (r *historyRepo) Add(ctx context.Context, subjectID int, item HistoryItem) error {
	items, err := r.List(ctx, subjectID)
	if err != nil {
		return err
	}
	items = append([]HistoryItem{item}, items...)
	if len(items) > HistoryLimit {
		items = items[:HistoryLimit]
	}
	if err := setJSON(ctx, r.kv, HistoryKey(subjectID), items); err != nil {
		return fmt.Errorf("add history: %w", err)
	}
	return nil
}

func (r *historyRepo) Clear(ctx context.Context, subjectID int) error {
	if err := r.kv.Remove(ctx, HistoryKey(subjectID)); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
