package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// editorNodeType is the placeholder type the editor writes into nodes.type.
const editorNodeType = "custom"

// querier is the subset of *pgxpool.Pool used by Source.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Source implements ports.FlowSource over Postgres.
type Source struct {
	db querier
}

// New wraps an existing pool (or any compatible querier).
func New(db querier) (*Source, error) {
	if db == nil {
		return nil, errors.New("postgres: db must not be nil")
	}
	return &Source{db: db}, nil
}

// Connect opens a pool for dsn and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*Source, *pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres: ping: %w", err)
	}
	src, err := New(pool)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return src, pool, nil
}

// CreateTables creates the flow tables if they do not exist.
func (s *Source) CreateTables(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS flows (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS nodes (
			id      TEXT PRIMARY KEY,
			flow_id TEXT NOT NULL REFERENCES flows (id) ON DELETE CASCADE,
			type    TEXT NOT NULL DEFAULT 'custom',
			data    JSONB NOT NULL DEFAULT '{}'
		);
		CREATE TABLE IF NOT EXISTS edges (
			id             TEXT PRIMARY KEY,
			flow_id        TEXT NOT NULL REFERENCES flows (id) ON DELETE CASCADE,
			source_node_id TEXT NOT NULL,
			target_node_id TEXT NOT NULL,
			source_handle  TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_nodes_flow_id ON nodes (flow_id);
		CREATE INDEX IF NOT EXISTS idx_edges_flow_id ON edges (flow_id);
	`
	if _, err := s.db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("postgres: create tables: %w", err)
	}
	return nil
}

// LoadGraph reads a flow with its nodes and edges.
func (s *Source) LoadGraph(ctx context.Context, flowID string) (*domain.Graph, error) {
	doc := domain.FlowDocument{}
	err := s.db.QueryRow(ctx, `SELECT id, name FROM flows WHERE id = $1`, flowID).Scan(&doc.ID, &doc.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrFlowNotFound, flowID)
		}
		return nil, fmt.Errorf("postgres: load flow %s: %w", flowID, err)
	}

	if doc.Nodes, err = s.nodes(ctx, flowID); err != nil {
		return nil, err
	}
	if doc.Edges, err = s.edges(ctx, flowID); err != nil {
		return nil, err
	}

	g, err := doc.Graph()
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return g, nil
}

func (s *Source) nodes(ctx context.Context, flowID string) ([]domain.NodeDocument, error) {
	rows, err := s.db.Query(ctx, `SELECT id, type, data FROM nodes WHERE flow_id = $1 ORDER BY id`, flowID)
	if err != nil {
		return nil, fmt.Errorf("postgres: query nodes: %w", err)
	}
	defer rows.Close()

	var nodes []domain.NodeDocument
	for rows.Next() {
		var (
			n   domain.NodeDocument
			raw []byte
		)
		if err := rows.Scan(&n.ID, &n.Type, &raw); err != nil {
			return nil, fmt.Errorf("postgres: scan node: %w", err)
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &n.Data); err != nil {
				return nil, fmt.Errorf("postgres: node %s data: %w", n.ID, err)
			}
		}
		if n.Type == editorNodeType {
			n.Type = ""
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate nodes: %w", err)
	}
	return nodes, nil
}

func (s *Source) edges(ctx context.Context, flowID string) ([]domain.EdgeDocument, error) {
	rows, err := s.db.Query(ctx, `SELECT id, source_node_id, target_node_id, source_handle FROM edges WHERE flow_id = $1 ORDER BY id`, flowID)
	if err != nil {
		return nil, fmt.Errorf("postgres: query edges: %w", err)
	}
	defer rows.Close()

	var edges []domain.EdgeDocument
	for rows.Next() {
		var (
			e      domain.EdgeDocument
			handle *string
		)
		if err := rows.Scan(&e.ID, &e.Source, &e.Target, &handle); err != nil {
			return nil, fmt.Errorf("postgres: scan edge: %w", err)
		}
		if handle != nil {
			e.Handle = *handle
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate edges: %w", err)
	}
	return edges, nil
}

// ListFlows returns all flow ids in ascending order.
func (s *Source) ListFlows(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT id FROM flows ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list flows: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("postgres: scan flow id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate flows: %w", err)
	}
	return ids, nil
}
