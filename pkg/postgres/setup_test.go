package postgres

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Aleph-Alpha/interactpsql/pkg/observability"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// copyCall records one CopyFrom invocation.
type copyCall struct {
	statement string
	data      string
}

// fakeCursor records every statement it receives. Query returns one row
// holding the statement number unless queryFn is set.
type fakeCursor struct {
	queries []string
	execs   []string
	copies  []copyCall
	closed  bool

	queryFn func(n int, query string) ([]Row, error)
	execFn  func(query string) (int64, error)
}

func (f *fakeCursor) Query(_ context.Context, query string) ([]Row, error) {
	f.queries = append(f.queries, query)
	if f.queryFn != nil {
		return f.queryFn(len(f.queries), query)
	}
	return []Row{{len(f.queries)}}, nil
}

func (f *fakeCursor) Exec(_ context.Context, query string) (int64, error) {
	f.execs = append(f.execs, query)
	if f.execFn != nil {
		return f.execFn(query)
	}
	return 1, nil
}

func (f *fakeCursor) CopyFrom(_ context.Context, r io.Reader, copyStatement string) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	f.copies = append(f.copies, copyCall{statement: copyStatement, data: string(data)})

	var lines int64
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	return lines, nil
}

func (f *fakeCursor) Close() error {
	f.closed = true
	return nil
}

// recordingObserver collects observed operations.
type recordingObserver struct {
	mu  sync.Mutex
	ops []observability.OperationContext
}

func (r *recordingObserver) ObserveOperation(ctx observability.OperationContext) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, ctx)
}

// newTestPostgres builds a facade over a fake cursor with a permissive mock logger.
// Warnings are left to each test so they can be counted.
func newTestPostgres(t *testing.T) (*Postgres, *fakeCursor, *MockLogger) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockLogger := NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Debug(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().InfoWithContext(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	cursor := &fakeCursor{}
	return newWithCursor(Config{}, mockLogger, cursor), cursor, mockLogger
}

func TestExecuteRead(t *testing.T) {
	p, cursor, _ := newTestPostgres(t)
	cursor.queryFn = func(_ int, _ string) ([]Row, error) {
		return []Row{{int64(1), "Alice"}, {int64(2), "Bob"}}, nil
	}

	rows, err := p.ExecuteRead(context.Background(), "SELECT id, name FROM users ORDER BY id")
	require.NoError(t, err)

	assert.Equal(t, []string{"SELECT id, name FROM users ORDER BY id"}, cursor.queries)
	assert.Equal(t, []Row{{int64(1), "Alice"}, {int64(2), "Bob"}}, rows)
}

func TestExecuteWrite(t *testing.T) {
	p, cursor, _ := newTestPostgres(t)

	err := p.ExecuteWrite(context.Background(), "UPDATE users SET name = 'Eve' WHERE id = 1")
	require.NoError(t, err)

	assert.Equal(t, []string{"UPDATE users SET name = 'Eve' WHERE id = 1"}, cursor.execs)
	assert.Empty(t, cursor.queries)
}

func TestExecuteWriteReturning(t *testing.T) {
	p, cursor, _ := newTestPostgres(t)

	rows, err := p.ExecuteWriteReturning(context.Background(), "DELETE FROM users RETURNING id")
	require.NoError(t, err)

	assert.Equal(t, []string{"DELETE FROM users RETURNING id"}, cursor.queries)
	assert.Len(t, rows, 1)
}

func TestStatementErrorsAreReturnedUnmodified(t *testing.T) {
	p, cursor, _ := newTestPostgres(t)
	boom := errors.New("syntax error at or near \"SELEC\"")
	cursor.queryFn = func(_ int, _ string) ([]Row, error) { return nil, boom }
	cursor.execFn = func(_ string) (int64, error) { return 0, boom }

	_, err := p.ExecuteRead(context.Background(), "SELEC 1")
	assert.Same(t, boom, err)

	err = p.ExecuteWrite(context.Background(), "SELEC 1")
	assert.Same(t, boom, err)
}

func TestReadAllAndColumnsInfo(t *testing.T) {
	p, cursor, _ := newTestPostgres(t)

	_, err := p.ReadAll(context.Background(), "users")
	require.NoError(t, err)

	_, err = p.GetColumnsInfo(context.Background(), "users")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"SELECT * FROM users",
		"SELECT * FROM information_schema.columns WHERE table_name = 'users'",
	}, cursor.queries)
}

func TestCloseIsIdempotentAndBlocksFurtherUse(t *testing.T) {
	p, cursor, _ := newTestPostgres(t)
	ctx := context.Background()

	require.NoError(t, p.Close())
	assert.True(t, cursor.closed)
	require.NoError(t, p.Close())

	_, err := p.ExecuteRead(ctx, "SELECT 1")
	assert.ErrorIs(t, err, ErrClosed)

	assert.ErrorIs(t, p.ExecuteWrite(ctx, "SELECT 1"), ErrClosed)

	_, err = p.ExecuteWriteReturning(ctx, "SELECT 1")
	assert.ErrorIs(t, err, ErrClosed)

	_, err = p.GetColumnsInfo(ctx, "users")
	assert.ErrorIs(t, err, ErrClosed)

	_, err = p.ReadAll(ctx, "users")
	assert.ErrorIs(t, err, ErrClosed)

	_, err = p.InsertMatching(ctx, "users", []string{"id"}, SingleRow("1"))
	assert.ErrorIs(t, err, ErrClosed)

	_, err = p.InsertSkipping(ctx, "users", []string{"id"}, SingleRow("1"))
	assert.ErrorIs(t, err, ErrClosed)

	_, err = p.ImportCsv(ctx, "data.csv", "users", CopyOptions{})
	assert.ErrorIs(t, err, ErrClosed)

	_, err = p.ImportCsvReader(ctx, nil, "users", CopyOptions{})
	assert.ErrorIs(t, err, ErrClosed)

	_, err = p.ImportSpreadsheet(ctx, "data.xlsx", 0, "users", []string{"id"}, false)
	assert.ErrorIs(t, err, ErrClosed)

	assert.Empty(t, cursor.queries)
	assert.Empty(t, cursor.execs)
	assert.Equal(t, CategoryClosed, GetErrorCategory(err))
}

func TestAccessors(t *testing.T) {
	p, cursor, _ := newTestPostgres(t)

	assert.Same(t, cursor, p.Cursor())
	assert.Nil(t, p.DB())
}

func TestObserverIsNotified(t *testing.T) {
	p, cursor, _ := newTestPostgres(t)
	obs := &recordingObserver{}
	assert.Same(t, p, p.WithObserver(obs))

	boom := errors.New("boom")
	cursor.execFn = func(_ string) (int64, error) { return 0, boom }

	_, err := p.ReadAll(context.Background(), "users")
	require.NoError(t, err)
	_ = p.ExecuteWrite(context.Background(), "TRUNCATE users")

	require.Len(t, obs.ops, 2)

	assert.Equal(t, "postgres", obs.ops[0].Component)
	assert.Equal(t, "read_all", obs.ops[0].Operation)
	assert.Equal(t, "users", obs.ops[0].Resource)
	assert.EqualValues(t, 1, obs.ops[0].Rows)
	assert.NoError(t, obs.ops[0].Error)

	assert.Equal(t, "execute_write", obs.ops[1].Operation)
	assert.Same(t, boom, obs.ops[1].Error)
}

func TestObserveOperationNilObserverNoPanic(t *testing.T) {
	p, _, _ := newTestPostgres(t)
	p.observeOperation("read_all", "users", "", 0, nil, 0, nil)

	var nilPostgres *Postgres
	nilPostgres.observeOperation("read_all", "users", "", 0, nil, 0, nil)
}

func TestConnectionString(t *testing.T) {
	got := connectionString(Connection{
		Host:     "db.internal",
		Port:     "5433",
		User:     "loader",
		Password: "p@ss word's",
		DbName:   "shop",
		SSLMode:  "require",
	})
	assert.Equal(t, `host=db.internal port=5433 user=loader password='p@ss word\'s' dbname=shop sslmode=require`, got)

	assert.Equal(t, "host=localhost dbname=shop", connectionString(Connection{Host: "localhost", DbName: "shop"}))
}

func TestNewPostgresUnreachable(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := NewMockLogger(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPostgres(ctx, Config{Connection: Connection{
		Host:    "127.0.0.1",
		Port:    "1",
		User:    "nobody",
		DbName:  "nothing",
		SSLMode: "disable",
	}}, mockLogger)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnectionFailed)
	assert.Equal(t, CategoryConnection, GetErrorCategory(err))
}

func TestParseConnConfigUsesSimpleProtocol(t *testing.T) {
	connConfig, err := parseConnConfig(Connection{
		Host:    "localhost",
		Port:    "5432",
		User:    "loader",
		DbName:  "shop",
		SSLMode: "disable",
	})
	require.NoError(t, err)

	assert.Equal(t, pgx.QueryExecModeSimpleProtocol, connConfig.DefaultQueryExecMode)
	assert.Equal(t, "shop", connConfig.Database)
	assert.EqualValues(t, 5432, connConfig.Port)
}

func TestParseConnConfigInvalid(t *testing.T) {
	_, err := parseConnConfig(Connection{Host: "localhost", Port: "not-a-port"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnectionFailed)
}

func TestCursorAfterCloseReturnsErrClosed(t *testing.T) {
	var closed atomic.Bool
	cursor := &pgCursor{closed: &closed}
	closed.Store(true)

	ctx := context.Background()
	_, err := cursor.Query(ctx, "SELECT 1")
	assert.ErrorIs(t, err, ErrClosed)

	_, err = cursor.Exec(ctx, "SELECT 1")
	assert.ErrorIs(t, err, ErrClosed)

	_, err = cursor.CopyFrom(ctx, strings.NewReader("1\n"), "COPY users FROM STDIN")
	assert.ErrorIs(t, err, ErrClosed)

	assert.NoError(t, cursor.Close())
}
