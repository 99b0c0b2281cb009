package db_store

import "context"

// NoopHistoryStore is used when no history_db is configured.
type NoopHistoryStore struct{}

func (st *NoopHistoryStore) RecordSearch(context.Context, *Search) error { return nil }

func (st *NoopHistoryStore) GetRecentSearches(context.Context, int) ([]*Search, error) {
	return []*Search{}, nil
}

func NewNoopHistoryStore() *NoopHistoryStore {
	return &NoopHistoryStore{}
}
