package paramstore

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/ports"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI serves parameters from a map; listing returns one parameter per page.
type fakeAPI struct {
	params map[string]string
	names  []string
	err    error
	pages  int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{params: map[string]string{}}
}

func (f *fakeAPI) put(name, value string) {
	f.params[name] = value
	f.names = append(f.names, name)
}

func (f *fakeAPI) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.params[*in.Name]
	if !ok {
		return nil, &types.ParameterNotFound{Message: strPtr("not found")}
	}
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: in.Name, Value: strPtr(v)}}, nil
}

func (f *fakeAPI) GetParametersByPath(_ context.Context, in *ssm.GetParametersByPathInput, _ ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.pages++

	var matching []string
	for _, n := range f.names {
		if strings.HasPrefix(n, *in.Path+"/") {
			matching = append(matching, n)
		}
	}
	i := 0
	if in.NextToken != nil {
		i, _ = strconv.Atoi(*in.NextToken)
	}
	if i >= len(matching) {
		return &ssm.GetParametersByPathOutput{}, nil
	}
	out := &ssm.GetParametersByPathOutput{Parameters: []types.Parameter{{Name: strPtr(matching[i])}}}
	if i+1 < len(matching) {
		out.NextToken = strPtr(strconv.Itoa(i + 1))
	}
	return out, nil
}

func strPtr(s string) *string { return &s }

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, "/flows")
	require.Error(t, err)
	_, err = New(newFakeAPI(), " / ")
	require.Error(t, err)
}

func TestSource_Contract(t *testing.T) {
	api := newFakeAPI()
	raw, err := json.Marshal(ports.ContractDocument())
	require.NoError(t, err)
	api.put("/chatflow/flows/"+ports.ContractFlowID, string(raw))

	src, err := New(api, "chatflow/flows/")
	require.NoError(t, err)
	ports.RunFlowSourceContract(t, src)
}

func TestSource_ListPaginates(t *testing.T) {
	api := newFakeAPI()
	api.put("/flows/b", "name: B")
	api.put("/flows/nested/a", "name: A")
	api.put("/other/c", "name: C")

	src, err := New(api, "/flows")
	require.NoError(t, err)

	ids, err := src.ListFlows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "nested/a"}, ids)
	assert.Equal(t, 2, api.pages)
}

func TestSource_YAMLParameter(t *testing.T) {
	api := newFakeAPI()
	api.put("/flows/greet", "name: Greet\nnodes:\n  - {id: t, type: trigger}\n  - {id: m, type: message, data: {message: Hello}}\nedges:\n  - {id: e, source: t, target: m}\n")

	src, err := New(api, "/flows")
	require.NoError(t, err)

	g, err := src.LoadGraph(context.Background(), "greet")
	require.NoError(t, err)
	m, ok := g.Node("m")
	require.True(t, ok)
	assert.Equal(t, domain.MessagePayload{Message: "Hello"}, m.Payload)
}

func TestSource_Errors(t *testing.T) {
	api := newFakeAPI()
	api.put("/flows/broken", "nodes: [")
	src, err := New(api, "/flows")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = src.LoadGraph(ctx, "broken")
	assert.ErrorContains(t, err, "paramstore: broken")

	api.err = errors.New("AccessDenied")
	_, err = src.LoadGraph(ctx, "broken")
	assert.ErrorContains(t, err, "AccessDenied")
	assert.NotErrorIs(t, err, domain.ErrFlowNotFound)

	_, err = src.ListFlows(ctx)
	assert.ErrorContains(t, err, "AccessDenied")
}
