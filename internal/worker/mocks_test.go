package worker

import (
	"context"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/projectapex/apex-api/internal/models"
)

// MockClickHouseConn implements driver.Conn for testing
type MockClickHouseConn struct {
	driver.Conn
	PrepareErr error
	SendErr    error

	mu      sync.Mutex
	Batches []*MockBatch
}

func (m *MockClickHouseConn) PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error) {
	if m.PrepareErr != nil {
		return nil, m.PrepareErr
	}
	b := &MockBatch{sendErr: m.SendErr, mu: &m.mu}
	m.mu.Lock()
	m.Batches = append(m.Batches, b)
	m.mu.Unlock()
	return b, nil
}

// SentRows returns every row from batches that were sent successfully
func (m *MockClickHouseConn) SentRows() [][]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows [][]interface{}
	for _, b := range m.Batches {
		if b.sent {
			rows = append(rows, b.rows...)
		}
	}
	return rows
}

type MockBatch struct {
	mu      *sync.Mutex
	rows    [][]interface{}
	sent    bool
	sendErr error
}

func (m *MockBatch) IsSent() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent
}

func (m *MockBatch) Rows() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *MockBatch) Append(v ...interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, v)
	return nil
}

func (m *MockBatch) AppendStruct(v interface{}) error {
	return nil
}

func (m *MockBatch) Column(int) driver.BatchColumn {
	return nil
}

func (m *MockBatch) Send() error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = true
	return nil
}

func (m *MockBatch) Flush() error {
	return nil
}

func (m *MockBatch) Abort() error {
	return nil
}

// MockMonitor implements logic.MonitorService
type MockMonitor struct {
	RunFunc func(ctx context.Context) (*models.MonitorReport, error)
}

func (m *MockMonitor) Run(ctx context.Context) (*models.MonitorReport, error) {
	return m.RunFunc(ctx)
}

// MockAlertSink records published alerts
type MockAlertSink struct {
	Alerts []models.Alert
	Err    error
}

func (m *MockAlertSink) Publish(ctx context.Context, alerts []models.Alert) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.Alerts = append(m.Alerts, alerts...)
	return len(alerts), nil
}
