package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	elasticsearch "github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"

	"phishtrack/config"
	"phishtrack/entity"
)

// AuditRepo indexes administrative actions into Elasticsearch.
type AuditRepo interface {
	Record(ctx context.Context, entry *entity.AuditEntry) error
	Close(ctx context.Context) error
}

type auditRepo struct {
	index  string
	client *elasticsearch.Client
}

func NewAuditRepo(_ context.Context, esCfg config.Elasticsearch) (AuditRepo, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: esCfg.Addresses,
		Username:  esCfg.Username,
		Password:  esCfg.Password,
	})
	if err != nil {
		return nil, err
	}

	return &auditRepo{
		index:  esCfg.Index,
		client: client,
	}, nil
}

func (r *auditRepo) Record(ctx context.Context, entry *entity.AuditEntry) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index: r.index,
		Body:  bytes.NewReader(b),
	}

	res, err := req.Do(ctx, r.client)
	if err != nil {
		return err
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		return fmt.Errorf("index audit entry failed: %s", res.Status())
	}

	return nil
}

func (r *auditRepo) Close(_ context.Context) error {
	return nil
}
