package repo

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"golang.org/x/sync/errgroup"

	"phishtrack/config"
	"phishtrack/entity"
)

const eventInsertBatchSize = 10_000

// EventRepo is the analytics sink: one row per classified target
// outcome, append-only.
type EventRepo interface {
	Insert(ctx context.Context, events []*entity.TargetEvent) error
	Close(ctx context.Context) error
}

type eventRepo struct {
	database string
	conn     driver.Conn
}

func NewEventRepo(ctx context.Context, ckCfg config.ClickHouse) (EventRepo, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr:  ckCfg.Addr,
		Debug: ckCfg.Debug,
		Auth: clickhouse.Auth{
			Database: ckCfg.Database,
			Username: ckCfg.Username,
			Password: ckCfg.Password,
		},
		TLS:             &tls.Config{},
		DialTimeout:     time.Duration(ckCfg.DialTimeoutSeconds) * time.Second,
		ConnMaxLifetime: time.Duration(ckCfg.ConnMaxLifetimeSeconds) * time.Second,
		MaxIdleConns:    ckCfg.MaxIdleConns,
		MaxOpenConns:    ckCfg.MaxOpenConns,
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, err
	}

	return &eventRepo{
		database: ckCfg.Database,
		conn:     conn,
	}, nil
}

func (r *eventRepo) Insert(ctx context.Context, events []*entity.TargetEvent) error {
	g := new(errgroup.Group)

	for i := 0; i < len(events); i += eventInsertBatchSize {
		end := i + eventInsertBatchSize
		if end > len(events) {
			end = len(events)
		}

		values := make([]string, 0, end-i)
		for _, e := range events[i:end] {
			values = append(values, fmt.Sprintf("(%d, '%s', '%s', '%s', '%s', '%s', %d)",
				e.CampaignID,
				escape(e.Email),
				escape(e.Status),
				escape(e.IP),
				escape(e.SentAt),
				escape(e.OccurredAt),
				e.ImportTime,
			))
		}

		sql := fmt.Sprintf("INSERT INTO %s.target_event_tab (`campaign_id`, `email`, `status`, `ip`, `sent_at`, `occurred_at`, `import_time`) VALUES %s",
			r.database, strings.Join(values, ","))

		g.Go(func() error {
			return r.conn.Exec(ctx, sql)
		})
	}

	return g.Wait()
}

func escape(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), "'", `\'`)
}

func (r *eventRepo) Close(_ context.Context) error {
	return r.conn.Close()
}
