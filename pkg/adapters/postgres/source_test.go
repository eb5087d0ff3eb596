package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDB answers the handful of queries Source issues from in-memory rows.
type fakeDB struct {
	flows map[string]string
	nodes map[string][][]any
	edges map[string][][]any
	err   error
	execs []string
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		flows: map[string]string{},
		nodes: map[string][][]any{},
		edges: map[string][][]any{},
	}
}

// addDocument stores doc the way the editor does: type "custom", real type inside data.
func (f *fakeDB) addDocument(t *testing.T, doc domain.FlowDocument) {
	t.Helper()
	f.flows[doc.ID] = doc.Name
	for _, n := range doc.Nodes {
		data := map[string]any{"type": n.Type}
		for k, v := range n.Data {
			data[k] = v
		}
		raw, err := json.Marshal(data)
		require.NoError(t, err)
		f.nodes[doc.ID] = append(f.nodes[doc.ID], []any{n.ID, editorNodeType, raw})
	}
	for _, e := range doc.Edges {
		var handle *string
		if e.Handle != "" {
			h := e.Handle
			handle = &h
		}
		f.edges[doc.ID] = append(f.edges[doc.ID], []any{e.ID, e.Source, e.Target, handle})
	}
}

func (f *fakeDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	return pgconn.NewCommandTag("CREATE TABLE"), f.err
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	if f.err != nil {
		return nil, f.err
	}
	switch {
	case strings.Contains(sql, "FROM nodes"):
		return &fakeRows{rows: f.nodes[args[0].(string)]}, nil
	case strings.Contains(sql, "FROM edges"):
		return &fakeRows{rows: f.edges[args[0].(string)]}, nil
	case strings.Contains(sql, "FROM flows"):
		ids := make([]string, 0, len(f.flows))
		for id := range f.flows {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		rows := make([][]any, len(ids))
		for i, id := range ids {
			rows[i] = []any{id}
		}
		return &fakeRows{rows: rows}, nil
	}
	return nil, fmt.Errorf("unexpected query: %s", sql)
}

func (f *fakeDB) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	if f.err != nil {
		return fakeRow{err: f.err}
	}
	id := args[0].(string)
	name, ok := f.flows[id]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{values: []any{id, name}}
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.values, dest)
}

type fakeRows struct {
	rows [][]any
	pos  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.rows[r.pos-1], nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	return assign(r.rows[r.pos-1], dest)
}

func assign(values, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("scan: %d values into %d targets", len(values), len(dest))
	}
	for i, v := range values {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case **string:
			*d = v.(*string)
		case *[]byte:
			*d = v.([]byte)
		default:
			return fmt.Errorf("scan: unsupported target %T", d)
		}
	}
	return nil
}

func TestSource_Contract(t *testing.T) {
	db := newFakeDB()
	db.addDocument(t, ports.ContractDocument())

	src, err := New(db)
	require.NoError(t, err)
	ports.RunFlowSourceContract(t, src)
}

func TestSource_TopLevelTypeColumn(t *testing.T) {
	db := newFakeDB()
	db.flows["typed"] = "Typed"
	db.nodes["typed"] = [][]any{
		{"start", "trigger", []byte(`{}`)},
		{"hello", "message", []byte(`{"message":"Hi"}`)},
	}
	db.edges["typed"] = [][]any{{"e1", "start", "hello", (*string)(nil)}}

	src, err := New(db)
	require.NoError(t, err)

	g, err := src.LoadGraph(context.Background(), "typed")
	require.NoError(t, err)
	hello, ok := g.Node("hello")
	require.True(t, ok)
	assert.Equal(t, domain.MessagePayload{Message: "Hi"}, hello.Payload)
	assert.Equal(t, domain.PortNone, g.Edges[0].Port)
}

func TestSource_Errors(t *testing.T) {
	db := newFakeDB()
	src, err := New(db)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = src.LoadGraph(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)

	db.flows["broken"] = ""
	db.nodes["broken"] = [][]any{{"n", "custom", []byte(`{not json`)}}
	_, err = src.LoadGraph(ctx, "broken")
	assert.ErrorContains(t, err, "node n data")

	db.err = errors.New("connection refused")
	_, err = src.LoadGraph(ctx, "broken")
	assert.ErrorContains(t, err, "connection refused")
	assert.NotErrorIs(t, err, domain.ErrFlowNotFound)
	_, err = src.ListFlows(ctx)
	assert.Error(t, err)

	_, err = New(nil)
	assert.Error(t, err)
}

func TestSource_CreateTables(t *testing.T) {
	db := newFakeDB()
	src, err := New(db)
	require.NoError(t, err)

	require.NoError(t, src.CreateTables(context.Background()))
	require.Len(t, db.execs, 1)
	assert.Contains(t, db.execs[0], "CREATE TABLE IF NOT EXISTS edges")
}
