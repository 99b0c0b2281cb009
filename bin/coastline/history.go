package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/UnownHash/Coastline/db_store"
	"github.com/UnownHash/Coastline/util"
)

// purgeHistory drops old search history until ctx is done.
func purgeHistory(ctx context.Context, logger *logrus.Logger, historyStore *db_store.HistoryDBStore) {
	intervalFn := func() time.Duration { return HISTORY_PURGE_INTERVAL }

	util.RunEvery(ctx, intervalFn, true, func(ctx context.Context) {
		removed, err := historyStore.PurgeOlderThan(ctx, HISTORY_RETENTION)
		if err != nil {
			if ctx.Err() == nil {
				logger.Warnf("failed to purge search history: %v", err)
			}
			return
		}
		if removed > 0 {
			logger.Infof("purged %d old search(es) from history", removed)
		}
	})
}
