package main

import (
	"context"
	"log"
	"time"

	"vyruchaiBack/internal/repositories"
)

const requestCleanerTimeout = 1 * time.Minute

// startRequestCleaner closes open requests older than the configured
// TTL, so the board never accumulates abandoned postings.
func startRequestCleaner(ctx context.Context, repo *repositories.RequestRepository, staleAfter time.Duration, infoLog, errorLog *log.Logger) {
	if repo == nil || staleAfter <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		runOnce := func() {
			runCtx, cancel := context.WithTimeout(ctx, requestCleanerTimeout)
			closed, err := repo.CloseStale(runCtx, time.Now().Add(-staleAfter))
			cancel()
			if err != nil {
				if errorLog != nil {
					errorLog.Printf("request cleaner: failed to close stale requests: %v", err)
				}
			} else if closed > 0 && infoLog != nil {
				infoLog.Printf("request cleaner: closed %d stale requests", closed)
			}
		}

		runOnce()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runOnce()
			}
		}
	}()
}
