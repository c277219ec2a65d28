package rentalsvc

import (
	"context"
	"log/slog"
	"time"
)

type Cleaner interface {
	ReleaseExpired(ctx context.Context) (int64, error)
}

type cleaner struct {
	r RentalRepo
}

func NewCleaner(r RentalRepo) Cleaner { return &cleaner{r: r} }

// ReleaseExpired drops expired rentedBy/rentedManga grant markers. Rental
// records are kept as history.
func (c *cleaner) ReleaseExpired(ctx context.Context) (int64, error) {
	return c.r.ReleaseExpiredGrants(ctx, time.Now().UTC())
}

// RunSweeper runs the cleaner on an interval until ctx is canceled.
func RunSweeper(ctx context.Context, c Cleaner, every time.Duration, log *slog.Logger) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := c.ReleaseExpired(ctx)
			if err != nil {
				log.Error("release expired grants", "err", err)
				continue
			}
			if n > 0 {
				log.Info("released expired grants", "count", n)
			}
		}
	}
}
