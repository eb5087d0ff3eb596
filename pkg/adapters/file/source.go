package file

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/chatflow/pkg/domain"
	"gopkg.in/yaml.v3"
)

// extensions are tried in order when resolving a flow id to a file.
var extensions = []string{".yaml", ".yml", ".json"}

// Parse decodes a YAML or JSON flow document.
func Parse(raw []byte) (domain.FlowDocument, error) {
	var doc domain.FlowDocument
	if err := yaml.NewDecoder(bytes.NewReader(raw)).Decode(&doc); err != nil {
		return domain.FlowDocument{}, fmt.Errorf("failed to parse flow document: %w", err)
	}
	return doc, nil
}

// Source implements ports.FlowSource over a directory of flow files.
// The flow id is the document's "id", or the file name without extension.
type Source struct {
	Root string
}

// NewSource creates a source rooted at dir.
func NewSource(dir string) *Source {
	return &Source{Root: dir}
}

// LoadGraph reads and decodes one flow.
func (s *Source) LoadGraph(ctx context.Context, flowID string) (*domain.Graph, error) {
	for _, ext := range extensions {
		path := filepath.Join(s.Root, flowID+ext)
		doc, err := s.read(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if doc.ID == "" || doc.ID == flowID {
			doc.ID = flowID
			return decode(path, doc)
		}
	}

	// Explicit ids may differ from file names.
	docs, err := s.scan()
	if err != nil {
		return nil, err
	}
	if f, ok := docs[flowID]; ok {
		return decode(f.path, f.doc)
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrFlowNotFound, flowID)
}

// ListFlows returns the ids of all flows under Root.
func (s *Source) ListFlows(ctx context.Context) ([]string, error) {
	docs, err := s.scan()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

type located struct {
	path string
	doc  domain.FlowDocument
}

func (s *Source) scan() (map[string]located, error) {
	docs := map[string]located{}
	err := filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.Root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(path)
		if !isFlowFile(ext) {
			return nil
		}
		doc, err := s.read(path)
		if err != nil {
			return err
		}
		if doc.ID == "" {
			rel, _ := filepath.Rel(s.Root, path)
			doc.ID = filepath.ToSlash(strings.TrimSuffix(rel, ext))
		}
		if prev, dup := docs[doc.ID]; dup {
			return fmt.Errorf("flow id %q is defined by both %s and %s", doc.ID, prev.path, path)
		}
		docs[doc.ID] = located{path: path, doc: doc}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", s.Root, err)
	}
	return docs, nil
}

func (s *Source) read(path string) (domain.FlowDocument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.FlowDocument{}, err
	}
	doc, err := Parse(raw)
	if err != nil {
		return domain.FlowDocument{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func decode(path string, doc domain.FlowDocument) (*domain.Graph, error) {
	g, err := doc.Graph()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

func isFlowFile(ext string) bool {
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}
