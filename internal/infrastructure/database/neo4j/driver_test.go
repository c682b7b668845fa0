package neo4j

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/monitoring/logging"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
)

type mockDriver struct {
	mock.Mock
}

func (m *mockDriver) VerifyConnectivity(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockDriver) NewSession(ctx context.Context, cfg neo4j.SessionConfig) internalSession {
	return m.Called(ctx, cfg).Get(0).(internalSession)
}

func (m *mockDriver) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// mockSession runs the work function against tx unless failWith is set.
type mockSession struct {
	mock.Mock
	tx       Transaction
	failWith error
}

func (m *mockSession) ExecuteRead(ctx context.Context, work TransactionWork) (any, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return work(m.tx)
}

func (m *mockSession) ExecuteWrite(ctx context.Context, work TransactionWork) (any, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return work(m.tx)
}

func (m *mockSession) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type stubTransaction struct {
	records []*neo4j.Record
	cypher  []string
}

func (t *stubTransaction) Run(_ context.Context, cypher string, _ map[string]any) (Result, error) {
	t.cypher = append(t.cypher, cypher)
	return &stubResult{records: t.records, pos: -1}, nil
}

type stubResult struct {
	records []*neo4j.Record
	pos     int
}

func (r *stubResult) Next(context.Context) bool {
	r.pos++
	return r.pos < len(r.records)
}
func (r *stubResult) Record() *neo4j.Record { return r.records[r.pos] }
func (r *stubResult) Err() error            { return nil }
func (r *stubResult) Consume(context.Context) (neo4j.ResultSummary, error) {
	return nil, nil
}

func healthRecord() *neo4j.Record {
	return &neo4j.Record{Keys: []string{"health"}, Values: []any{int64(1)}}
}

func TestDriver_HealthCheck(t *testing.T) {
	md := new(mockDriver)
	tx := &stubTransaction{records: []*neo4j.Record{healthRecord()}}
	ms := &mockSession{tx: tx}

	md.On("VerifyConnectivity", mock.Anything).Return(nil)
	md.On("NewSession", mock.Anything, neo4j.SessionConfig{
		DatabaseName: "concepts",
		AccessMode:   neo4j.AccessModeRead,
	}).Return(ms)
	ms.On("Close", mock.Anything).Return(nil)

	d := newDriver(md, "concepts", logging.NewNopLogger())
	require.NoError(t, d.HealthCheck(context.Background()))
	assert.Equal(t, []string{"RETURN 1 AS health"}, tx.cypher)
	md.AssertExpectations(t)
	ms.AssertExpectations(t)
}

func TestDriver_HealthCheck_Unreachable(t *testing.T) {
	md := new(mockDriver)
	md.On("VerifyConnectivity", mock.Anything).Return(stderrors.New("connection refused"))

	d := newDriver(md, "", logging.NewNopLogger())
	err := d.HealthCheck(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDatabaseError))
}

func TestDriver_ExecuteWrite_WrapsFailure(t *testing.T) {
	md := new(mockDriver)
	ms := &mockSession{failWith: stderrors.New("deadlock")}
	md.On("NewSession", mock.Anything, neo4j.SessionConfig{
		DatabaseName: "neo4j",
		AccessMode:   neo4j.AccessModeWrite,
	}).Return(ms)
	ms.On("Close", mock.Anything).Return(nil)

	d := newDriver(md, "", logging.NewNopLogger())
	_, err := d.ExecuteWrite(context.Background(), func(Transaction) (any, error) { return nil, nil })
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDatabaseError))
	assert.Contains(t, err.Error(), "deadlock")
	ms.AssertCalled(t, "Close", mock.Anything)
}

func TestDriver_CloseOnce(t *testing.T) {
	md := new(mockDriver)
	md.On("Close", mock.Anything).Return(nil).Once()

	d := newDriver(md, "", logging.NewNopLogger())
	require.NoError(t, d.Close(context.Background()))
	require.NoError(t, d.Close(context.Background()))
	md.AssertNumberOfCalls(t, "Close", 1)
}

func TestSingleValue(t *testing.T) {
	ctx := context.Background()

	v, err := SingleValue[int64](ctx, &stubResult{records: []*neo4j.Record{healthRecord()}, pos: -1}, "health")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	_, err = SingleValue[int64](ctx, &stubResult{pos: -1}, "health")
	assert.True(t, errors.IsNotFound(err))

	_, err = SingleValue[string](ctx, &stubResult{records: []*neo4j.Record{healthRecord()}, pos: -1}, "health")
	assert.True(t, errors.IsCode(err, errors.ErrCodeSerialization))
}

//Personal.AI order the ending
