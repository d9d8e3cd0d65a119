package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MockPgPool records Exec calls; Query and QueryRow are unsupported
type MockPgPool struct {
	ExecFunc func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Execs    []string
	Args     [][]any
}

func (m *MockPgPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("query not supported")
}

func (m *MockPgPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (m *MockPgPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.Execs = append(m.Execs, sql)
	m.Args = append(m.Args, args)
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, sql, args...)
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

// MockKV is an in-memory KeyValueStore
type MockKV struct {
	Hashes    map[string]map[string]string
	Keys      map[string]interface{}
	TTLs      map[string]time.Duration
	Published []interface{}
	Err       error
}

func NewMockKV() *MockKV {
	return &MockKV{
		Hashes: make(map[string]map[string]string),
		Keys:   make(map[string]interface{}),
		TTLs:   make(map[string]time.Duration),
	}
}

func (m *MockKV) HSet(ctx context.Context, key string, values map[string]interface{}) error {
	if m.Err != nil {
		return m.Err
	}
	h, ok := m.Hashes[key]
	if !ok {
		h = make(map[string]string)
		m.Hashes[key] = h
	}
	for k, v := range values {
		h[k] = fmt.Sprint(v)
	}
	return nil
}

func (m *MockKV) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Hashes[key], nil
}

func (m *MockKV) Expire(ctx context.Context, key string, ttl time.Duration) error {
	m.TTLs[key] = ttl
	return nil
}

func (m *MockKV) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	if _, ok := m.Keys[key]; ok {
		return false, nil
	}
	m.Keys[key] = value
	m.TTLs[key] = ttl
	return true, nil
}

func (m *MockKV) Publish(ctx context.Context, channel string, message interface{}) error {
	m.Published = append(m.Published, message)
	return nil
}
