// Package query runs SQL over the registered tables with the embedded sqlite engine.
package query

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	_ "modernc.org/sqlite" // sqlite driver loaded here
	"modernc.org/sqlite/vtab"

	"github.com/umputun/hostql/pkg/registry"
	"github.com/umputun/hostql/pkg/table"
)

// registerLock guards the driver's global modules list and serializes opening of connections.
// The driver installs a module natively only on the first connection opened after its registration,
// so a connection must be opened right after its own module is registered, with nothing in between.
var registerLock sync.Mutex

const defaultMaxConns = 4

// ErrClosed returned for queries on closed engine
var ErrClosed = errors.New("engine closed")

// Engine executes queries. Safe for concurrent use, each running query holds its own connection.
type Engine struct {
	reg      *registry.Registry
	mod      vtab.Module
	maxConns int

	slots chan struct{} // one per open session
	idle  chan *session

	mu     sync.Mutex
	closed bool
}

// session is a single sqlite connection with the engine's tables attached under a module
// registered for this connection only
type session struct {
	db     *sql.DB
	conn   *sql.Conn
	module string
}

// Result of a query
type Result struct {
	Columns []string
	Rows    []table.Row
}

// QueryError returned when the engine can't compile or execute the query
type QueryError struct {
	SQL string
	Err error
}

func (e *QueryError) Error() string { return fmt.Sprintf("query %q failed: %v", e.SQL, e.Err) }

// Unwrap returns the engine error
func (e *QueryError) Unwrap() error { return e.Err }

// Option sets engine parameters
type Option func(e *Engine)

// WithMaxConns limits number of connections, so number of queries running at the same time
func WithMaxConns(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxConns = n
		}
	}
}

// New makes engine serving tables of the registry. The first connection is opened right away.
// Every connection registers its own module in the driver, the driver never forgets registered modules,
// so each engine leaves up to max connections module names behind for the life of the process.
func New(reg *registry.Registry, opts ...Option) (*Engine, error) {
	res := &Engine{reg: reg, mod: reg.Module(), maxConns: defaultMaxConns}
	for _, opt := range opts {
		opt(res)
	}
	res.slots = make(chan struct{}, res.maxConns)
	res.idle = make(chan *session, res.maxConns)

	s, err := res.newSession(context.Background())
	if err != nil {
		return nil, err
	}
	res.slots <- struct{}{}
	res.idle <- s
	log.Printf("[DEBUG] query engine ready, max connections %d, tables %v", res.maxConns, reg.Names())
	return res, nil
}

// Registry returns tables served by the engine
func (e *Engine) Registry() *registry.Registry { return e.reg }

// Execute runs the query and returns all rows. On error no rows are returned.
func (e *Engine) Execute(ctx context.Context, query string) (*Result, error) {
	res := &Result{}
	cols, err := e.run(ctx, query, func(r table.Row) error {
		res.Rows = append(res.Rows, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Columns = cols
	return res, nil
}

// Query runs the query calling fn for every row as it is produced. Error returned by fn stops the query
// and returned as is.
func (e *Engine) Query(ctx context.Context, query string, fn func(r table.Row) error) error {
	_, err := e.run(ctx, query, fn)
	return err
}

// Close closes idle connections, connections of running queries are closed as they finish
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	errs := new(multierror.Error)
	for {
		select {
		case s := <-e.idle:
			if err := s.close(); err != nil {
				errs = multierror.Append(errs, err)
			}
		default:
			return errs.ErrorOrNil()
		}
	}
}

func (e *Engine) run(ctx context.Context, query string, fn func(r table.Row) error) ([]string, error) {
	s, err := e.acquire(ctx)
	if err != nil {
		return nil, err
	}
	cols, err := s.run(ctx, query, fn)
	e.release(s, errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone))
	return cols, err
}

// acquire returns an idle session or opens a new one if the limit allows, otherwise waits for a free one
func (e *Engine) acquire(ctx context.Context) (*session, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("can't get connection: %w", err)
	}
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	select {
	case s := <-e.idle:
		return s, nil
	default:
	}

	select {
	case s := <-e.idle:
		return s, nil
	case e.slots <- struct{}{}:
		s, err := e.newSession(ctx)
		if err != nil {
			<-e.slots
			return nil, err
		}
		return s, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("can't get connection: %w", ctx.Err())
	}
}

// release returns session to idle ones, broken sessions and sessions of closed engine are dropped
func (e *Engine) release(s *session, broken bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if broken || e.closed {
		if err := s.close(); err != nil {
			log.Printf("[WARN] can't close connection, %v", err)
		}
		<-e.slots
		return
	}
	e.idle <- s
}

// newSession registers a fresh module and opens the connection which gets it installed
func (e *Engine) newSession(ctx context.Context) (*session, error) {
	registerLock.Lock()
	defer registerLock.Unlock()

	name := "hostql_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := vtab.RegisterModule(nil, name, e.mod); err != nil {
		return nil, fmt.Errorf("can't register module %s: %w", name, err)
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}
	// the only connection of this db is pinned for the whole session and never recycled
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("can't open connection: %w", err)
	}
	s := &session{db: db, conn: conn, module: name}
	if err := s.attach(ctx, e.reg.Names()); err != nil {
		_ = s.close()
		return nil, err
	}
	log.Printf("[DEBUG] connection opened, module %s", name)
	return s, nil
}

// attach creates virtual tables in the temp schema of the session connection
func (s *session) attach(ctx context.Context, names []string) error {
	for _, name := range names {
		stmt := fmt.Sprintf("CREATE VIRTUAL TABLE temp.%q USING %s(%s)", name, s.module, name)
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("can't create table %s: %w", name, err)
		}
	}
	return nil
}

func (s *session) run(ctx context.Context, query string, fn func(r table.Row) error) ([]string, error) {
	st := time.Now()
	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	defer rows.Close() // nolint

	cols, err := rows.Columns()
	if err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}

	count := 0
	for rows.Next() {
		if err = rows.Scan(ptrs...); err != nil {
			return nil, &QueryError{SQL: query, Err: err}
		}
		strs := make([]string, len(vals))
		for i, v := range vals {
			strs[i] = toString(v)
		}
		if err = fn(table.NewRow(cols, strs)); err != nil {
			return nil, err
		}
		count++
	}
	if err = rows.Err(); err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	log.Printf("[DEBUG] query %q, %d rows in %v", query, count, time.Since(st))
	return cols, nil
}

func (s *session) close() error {
	errs := new(multierror.Error)
	if err := s.conn.Close(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("can't close connection: %w", err))
	}
	if err := s.db.Close(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("can't close database: %w", err))
	}
	return errs.ErrorOrNil()
}

// toString converts a column value to its text form, NULL is empty
func toString(v any) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case string:
		return vv
	case []byte:
		return string(vv)
	case int64:
		return strconv.FormatInt(vv, 10)
	case float64:
		return strconv.FormatFloat(vv, 'f', -1, 64)
	case bool:
		if vv {
			return "1"
		}
		return "0"
	case time.Time:
		return vv.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(vv)
	}
}
