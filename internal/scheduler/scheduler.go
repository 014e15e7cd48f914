// Package scheduler runs the periodic background jobs, currently just the
// overdue invoice sweep.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	invoicedomain "github.com/lancekit/lancekit/internal/invoice/domain"
)

const (
	sweepInterval = time.Hour
	sweepLockKey  = "scheduler:overdue-sweep"
	sweepLockTTL  = 5 * time.Minute
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Invoices invoicedomain.Service
	Locker   *Locker `optional:"true"`
}

type Sweeper struct {
	log      *zap.Logger
	invoices invoicedomain.Service
	locker   *Locker
	interval time.Duration

	stop chan struct{}
	done chan struct{}
}

func NewSweeper(p Params) *Sweeper {
	return &Sweeper{
		log:      p.Log.Named("scheduler"),
		invoices: p.Invoices,
		locker:   p.Locker,
		interval: sweepInterval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *Sweeper) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// sweep once at startup so a restart never delays overdue flips an hour
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if s.locker != nil {
		token, ok, err := s.locker.TryLock(ctx, sweepLockKey, sweepLockTTL)
		if err != nil {
			s.log.Warn("sweep lock unavailable", zap.Error(err))
			return
		}
		if !ok {
			return
		}
		defer func() {
			if err := s.locker.Release(ctx, sweepLockKey, token); err != nil {
				s.log.Warn("sweep lock release failed", zap.Error(err))
			}
		}()
	}

	if _, err := s.invoices.SweepOverdue(ctx, time.Now().UTC()); err != nil {
		s.log.Error("overdue sweep failed", zap.Error(err))
	}
}

func registerHooks(lc fx.Lifecycle, s *Sweeper) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go s.run()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(s.stop)
			select {
			case <-s.done:
			case <-ctx.Done():
			}
			return nil
		},
	})
}

var Module = fx.Module("scheduler",
	fx.Provide(NewLocker),
	fx.Provide(NewSweeper),
	fx.Invoke(registerHooks),
)
