// Package paramstore reads flows stored as AWS Systems Manager parameters.
// Each parameter under the configured prefix holds one YAML or JSON flow document;
// the parameter name below the prefix is the flow id.
package paramstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/chatflow/pkg/adapters/file"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// ssmAPI is the minimal AWS SSM interface required by Source.
// *ssm.Client from aws-sdk-go-v2 satisfies this interface.
type ssmAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
	GetParametersByPath(ctx context.Context, in *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// Source implements ports.FlowSource over SSM parameters.
type Source struct {
	api    ssmAPI
	prefix string
}

// New creates a Source reading parameters below prefix (e.g. "/chatflow/flows").
func New(api ssmAPI, prefix string) (*Source, error) {
	if api == nil {
		return nil, errors.New("paramstore: api must not be nil")
	}
	prefix = "/" + strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "/" {
		return nil, errors.New("paramstore: prefix is required")
	}
	return &Source{api: api, prefix: prefix}, nil
}

func (s *Source) name(flowID string) string {
	return s.prefix + "/" + flowID
}

// LoadGraph fetches and decodes one flow parameter.
func (s *Source) LoadGraph(ctx context.Context, flowID string) (*domain.Graph, error) {
	flowID = strings.TrimSpace(flowID)
	if flowID == "" {
		return nil, fmt.Errorf("%w: empty id", domain.ErrFlowNotFound)
	}

	out, err := s.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(s.name(flowID)),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var notFound *types.ParameterNotFound
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrFlowNotFound, flowID)
		}
		return nil, fmt.Errorf("paramstore: get parameter %q: %w", s.name(flowID), err)
	}
	if out == nil || out.Parameter == nil || out.Parameter.Value == nil {
		return nil, fmt.Errorf("paramstore: parameter %q missing value", s.name(flowID))
	}

	doc, err := file.Parse([]byte(*out.Parameter.Value))
	if err != nil {
		return nil, fmt.Errorf("paramstore: %s: %w", flowID, err)
	}
	doc.ID = flowID
	g, err := doc.Graph()
	if err != nil {
		return nil, fmt.Errorf("paramstore: %w", err)
	}
	return g, nil
}

// ListFlows returns the ids of all parameters below the prefix, recursively.
func (s *Source) ListFlows(ctx context.Context) ([]string, error) {
	var (
		ids  []string
		next *string
	)
	for {
		out, err := s.api.GetParametersByPath(ctx, &ssm.GetParametersByPathInput{
			Path:      aws.String(s.prefix),
			Recursive: aws.Bool(true),
			NextToken: next,
		})
		if err != nil {
			return nil, fmt.Errorf("paramstore: list %q: %w", s.prefix, err)
		}
		for _, p := range out.Parameters {
			if p.Name == nil {
				continue
			}
			ids = append(ids, strings.TrimPrefix(*p.Name, s.prefix+"/"))
		}
		if out.NextToken == nil || *out.NextToken == "" {
			break
		}
		next = out.NextToken
	}
	sort.Strings(ids)
	return ids, nil
}
