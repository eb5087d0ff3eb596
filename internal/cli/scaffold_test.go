package cli

import (
	"context"
	"testing"

	"github.com/aretw0/chatflow/internal/config"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaffold(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	path, err := Scaffold(dir, false)
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = Scaffold(dir, false)
	assert.ErrorIs(t, err, ErrFlowExists)

	_, err = Scaffold(dir, true)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Flows.Dir = dir
	app, err := Build(ctx, cfg, nil)
	require.NoError(t, err)
	defer app.Close()

	g, err := app.Engine.Inspect(ctx, WelcomeFlowID)
	require.NoError(t, err)
	require.NoError(t, schema.ValidateGraph(g))

	state, err := app.Engine.Run(ctx, WelcomeFlowID, domain.ConversationState{}, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaiting, state.Status())
	require.Len(t, state.Messages, 2)
	assert.Equal(t, "Hi! I'm a **chatflow** bot.", state.Messages[0].Text)
}
