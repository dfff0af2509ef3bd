package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// ExplanationKey returns the storage key for a question's explanation.
func ExplanationKey(question string) string {
	sum := sha256.Sum256([]byte(question))
	return explainKeyPrefix + hex.EncodeToString(sum[:12])
}

type explanationRepo struct {
	kv KV
}

// NewExplanationRepo returns an ExplanationRepo over kv.
func NewExplanationRepo(kv KV) ExplanationRepo {
	return &explanationRepo{kv: kv}
}

func (r *explanationRepo) Get(ctx context.Context, question string) (*Explanation, error) {
	var e Explanation
	ok, err := getJSON(ctx, r.kv, ExplanationKey(question), &e)
	if err != nil || !ok {
		return nil, err
	}
	return &e, nil
}

func (r *explanationRepo) Put(ctx context.Context, question string, e Explanation) error {
	return setJSON(ctx, r.kv, ExplanationKey(question), e)
}
