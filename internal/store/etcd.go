package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"vmforge/internal/resource"
)

// EtcdStore persists records in etcd under /<table>/<id> as JSON values
type EtcdStore struct {
	client *clientv3.Client
}

// NewEtcdStore connects to the given endpoints
func NewEtcdStore(endpoints []string, dialTimeout time.Duration) (*EtcdStore, error) {
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: dialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}
	return &EtcdStore{client: cli}, nil
}

func tablePrefix(table string) string {
	return fmt.Sprintf("/%s/", table)
}

// Close closes the etcd client connection
func (s *EtcdStore) Close() error {
	return s.client.Close()
}

func (s *EtcdStore) Insert(ctx context.Context, table string, rec resource.Record) error {
	key, err := recordKey(table, rec)
	if err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal %s record: %w", table, err)
	}
	if _, err := s.client.Put(ctx, tablePrefix(table)+key, string(data)); err != nil {
		return fmt.Errorf("failed to save %s record to etcd: %w", table, err)
	}
	return nil
}

// SelectOne reads the key directly when column is the table's identifier and
// scans the table prefix otherwise.
func (s *EtcdStore) SelectOne(ctx context.Context, table, column string, value any) (resource.Record, error) {
	keyCol, err := KeyColumn(table)
	if err != nil {
		return nil, err
	}

	if column == keyCol {
		resp, err := s.client.Get(ctx, tablePrefix(table)+fmt.Sprint(value))
		if err != nil {
			return nil, fmt.Errorf("failed to get %s record from etcd: %w", table, err)
		}
		if len(resp.Kvs) == 0 {
			return nil, ErrNotFound
		}
		return decode(table, resp.Kvs[0].Value)
	}

	recs, err := s.List(ctx, table, 0)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		if matches(rec, column, value) {
			return rec, nil
		}
	}
	return nil, ErrNotFound
}

// List orders records by creation revision, newest first
func (s *EtcdStore) List(ctx context.Context, table string, limit int) ([]resource.Record, error) {
	if _, err := KeyColumn(table); err != nil {
		return nil, err
	}
	opts := []clientv3.OpOption{
		clientv3.WithPrefix(),
		clientv3.WithSort(clientv3.SortByCreateRevision, clientv3.SortDescend),
	}
	if limit > 0 {
		opts = append(opts, clientv3.WithLimit(int64(limit)))
	}
	resp, err := s.client.Get(ctx, tablePrefix(table), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s from etcd: %w", table, err)
	}
	out := make([]resource.Record, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		rec, err := decode(table, kv.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func decode(table string, data []byte) (resource.Record, error) {
	var rec resource.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s record: %w", table, err)
	}
	return rec, nil
}
