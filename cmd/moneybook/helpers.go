package main

import (
	"log/slog"

	"github.com/spf13/viper"

	"github.com/sehyunpark/moneybook/internal/common"
	"github.com/sehyunpark/moneybook/internal/config"
	"github.com/sehyunpark/moneybook/internal/storage"
)

// initStore resolves the configured database location and constructs the
// store. The connection itself opens lazily on first use, running pending
// migrations at that point.
func initStore() (*storage.Store, error) {
	dbPath := config.DatabasePath(viper.GetString("database.path"))
	store, err := storage.NewStore(dbPath)
	if err != nil {
		return nil, common.NewUserError("Failed to open the money book database", err)
	}
	return store, nil
}

func closeStore(store *storage.Store) {
	if err := store.Close(); err != nil {
		slog.Warn("failed to close store", "error", err)
	}
}
