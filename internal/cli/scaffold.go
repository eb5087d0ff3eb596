package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/chatflow/pkg/domain"
	"gopkg.in/yaml.v3"
)

// WelcomeFlowID is the id of the flow written by Scaffold.
const WelcomeFlowID = "welcome"

// ErrFlowExists is returned by Scaffold when the target file is already present.
var ErrFlowExists = errors.New("flow file already exists")

// WelcomeDocument is a small flow touching messages, questions, conditions and media.
func WelcomeDocument() domain.FlowDocument {
	return domain.FlowDocument{
		ID:   WelcomeFlowID,
		Name: "Welcome",
		Nodes: []domain.NodeDocument{
			{ID: "start", Type: "trigger"},
			{ID: "hello", Type: "message", Data: map[string]any{"message": "Hi! I'm a **chatflow** bot."}},
			{ID: "ask", Type: "question", Data: map[string]any{"question": "Would you like to see a picture? (yes/no)"}},
			{ID: "check", Type: "condition", Data: map[string]any{
				"condition": map[string]any{"attribute": "answer", "operator": "equals", "value": "yes"},
			}},
			{ID: "picture", Type: "image", Data: map[string]any{
				"url":     "https://go.dev/images/gophers/ladder.svg",
				"caption": "A gopher on a ladder",
			}},
			{ID: "bye", Type: "message", Data: map[string]any{"message": "No problem. See you around!"}},
		},
		Edges: []domain.EdgeDocument{
			{ID: "e1", Source: "start", Target: "hello"},
			{ID: "e2", Source: "hello", Target: "ask"},
			{ID: "e3", Source: "ask", Target: "check"},
			{ID: "e4", Source: "check", Target: "picture", Handle: "source-true"},
			{ID: "e5", Source: "check", Target: "bye", Handle: "source-false"},
		},
	}
}

// Scaffold writes the welcome flow into dir as a markdown document with YAML frontmatter.
// Existing files are only replaced when force is set.
func Scaffold(dir string, force bool) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, WelcomeFlowID+".md")
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%w: %s", ErrFlowExists, path)
	}

	front, err := yaml.Marshal(WelcomeDocument())
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(front)
	buf.WriteString("---\n")
	buf.WriteString("Greets the visitor and offers a picture.\n")
	buf.WriteString("Run it with `chatflow run welcome`.\n")

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
