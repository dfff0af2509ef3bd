package store

import (
	"context"
	"fmt"
	"log"
	"time"
)

type sessionRepo struct {
	kv  KV
	now func() time.Time
}

// NewSessionRepo returns a SessionRepo over kv. A nil now selects time.Now.
func NewSessionRepo(kv KV, now func() time.Time) SessionRepo {
	return &sessionRepo{kv: kv, now: nowFunc(now)}
}

func (r *sessionRepo) Save(ctx context.Context, snap *SessionSnapshot) error {
	snap.SavedAt = r.now().UnixMilli()
	if err := setJSON(ctx, r.kv, SessionKey, snap); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *sessionRepo) Load(ctx context.Context) (*SessionSnapshot, error) {
	var snap SessionSnapshot
	ok, err := getJSON(ctx, r.kv, SessionKey, &snap)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return nil, nil
	}
	age := r.now().Sub(time.UnixMilli(snap.SavedAt))
	if age >= SessionTTL || len(snap.Questions) == 0 {
		log.Printf("[store] discarding session snapshot (age %s, %d questions)", age.Round(time.Second), len(snap.Questions))
		if err := r.Discard(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return &snap, nil
}

func (r *sessionRepo) Discard(ctx context.Context) error {
	if err := r.kv.Remove(ctx, SessionKey); err != nil {
		return fmt.Errorf("discard session: %w", err)
	}
	return nil
}
