package datasource

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/odh-assistant/pkg/models"
)

// Result is the outcome of one preview fetch
type Result struct {
	Table   string
	Preview *models.Preview
	Err     error
}

// Fetcher loads previews in the background. Results are handed to a callback;
// requests are never cancelled, callers drop results they no longer need.
type Fetcher struct {
	Client  Client
	Timeout time.Duration
	Logger  *logrus.Logger

	wg sync.WaitGroup
}

// NewFetcher creates a fetcher; a zero timeout means no timeout
func NewFetcher(client Client, timeout time.Duration, logger *logrus.Logger) *Fetcher {
	return &Fetcher{
		Client:  client,
		Timeout: timeout,
		Logger:  logger,
	}
}

// Fetch requests a preview page of ref and calls done from another goroutine
func (f *Fetcher) Fetch(ctx context.Context, ref string, paging models.Paging, done func(Result)) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()

		if f.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, f.Timeout)
			defer cancel()
		}

		started := time.Now()
		preview, err := f.Client.GetPreview(ctx, ref, paging)
		if err != nil {
			f.Logger.Warningf("Preview of %s failed: %v", ref, err)
		} else {
			f.Logger.Debugf("Preview of %s: %d/%d rows in %s", ref, len(preview.Data), preview.Count, time.Since(started))
		}
		done(Result{Table: ref, Preview: preview, Err: err})
	}()
}

// Wait blocks until every fetch issued so far has called back
func (f *Fetcher) Wait() {
	f.wg.Wait()
}
