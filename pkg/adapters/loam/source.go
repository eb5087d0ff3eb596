package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/loam"
)

// Source adapts a Loam repository to ports.FlowSource.
// Each document (markdown frontmatter, JSON or YAML) holds one flow.
type Source struct {
	Repo *loam.TypedRepository[FlowMetadata]
}

// New creates a new Loam flow source.
func New(repo *loam.TypedRepository[FlowMetadata]) *Source {
	return &Source{
		Repo: repo,
	}
}

// Open initializes a read-only Loam repository at path and wraps it.
func Open(path string) (*Source, error) {
	// Strict mode keeps numbers as json.Number across markdown, JSON and YAML documents.
	// Read-only mode avoids Loam's sandbox behavior; flows are never written by the engine.
	repo, err := loam.Init(path,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[FlowMetadata](repo)), nil
}

// LoadGraph retrieves a flow by id.
// Loam resolves "welcome" to welcome.md (or .json/.yaml); flows whose explicit id
// differs from their file name are found by scanning the repository.
func (s *Source) LoadGraph(ctx context.Context, flowID string) (*domain.Graph, error) {
	doc, err := s.Repo.Get(ctx, flowID)
	if err == nil {
		d := doc.Data.Document(doc.ID)
		if d.ID == flowID || doc.Data.ID == "" {
			d.ID = flowID
			return decode(d)
		}
	}

	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}
	for _, doc := range docs {
		d := doc.Data.Document(doc.ID)
		if d.ID == flowID {
			return decode(d)
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrFlowNotFound, flowID)
}

func decode(d domain.FlowDocument) (*domain.Graph, error) {
	g, err := d.Graph()
	if err != nil {
		return nil, fmt.Errorf("loam: %w", err)
	}
	return g, nil
}

// ListFlows lists all flows in the repository.
func (s *Source) ListFlows(ctx context.Context) ([]string, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	ids := make([]string, 0, len(docs))

	for _, doc := range docs {
		id := doc.Data.Document(doc.ID).ID

		// Collision Detection
		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: flow '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch implements ports.Watchable.
func (s *Source) Watch(ctx context.Context) (<-chan string, error) {
	// Watch for all relevant files (recursive) using doublestar pattern supported by Loam/Doublestar
	events, err := s.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
