package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// Effect is the observable outcome of executing a node.
type Effect struct {
	// Messages are bot-visible texts, in emission order.
	Messages []string
	// Wait suspends the turn until the next input arrives.
	Wait bool
	// Terminal ends the conversation; the interpreter clears the current node.
	Terminal bool
}

// PayloadVisitor handles every payload variant.
// Adding a payload type adds a method here, so every implementation must be updated.
type PayloadVisitor interface {
	VisitTrigger(ctx context.Context, p TriggerPayload) Effect
	VisitMessage(ctx context.Context, p MessagePayload) Effect
	VisitQuestion(ctx context.Context, p QuestionPayload) Effect
	VisitCondition(ctx context.Context, p ConditionPayload) Effect
	VisitMedia(ctx context.Context, p MediaPayload) Effect
	VisitTimeDelay(ctx context.Context, p TimeDelayPayload) Effect
	VisitTemplate(ctx context.Context, p TemplatePayload) Effect
	VisitSetTags(ctx context.Context, p SetTagsPayload) Effect
	VisitUpdateAttribute(ctx context.Context, p UpdateAttributePayload) Effect
	VisitAssignTeam(ctx context.Context, p AssignTeamPayload) Effect
	VisitAssignUser(ctx context.Context, p AssignUserPayload) Effect
	VisitTriggerChatbot(ctx context.Context, p TriggerChatbotPayload) Effect
	VisitUpdateChatStatus(ctx context.Context, p UpdateChatStatusPayload) Effect
	VisitWebhook(ctx context.Context, p WebhookPayload) Effect
	VisitGoogleSpreadsheet(ctx context.Context, p GoogleSpreadsheetPayload) Effect
	VisitUnknown(ctx context.Context, p UnknownPayload) Effect
}

// Payload is the type-specific configuration of a node.
// The set of implementations is closed to this package.
type Payload interface {
	Kind() NodeType
	Accept(ctx context.Context, v PayloadVisitor) Effect
	sealed()
}

type TriggerPayload struct{}

type MessagePayload struct {
	Message string `json:"message" mapstructure:"message"`
}

type QuestionPayload struct {
	Question string `json:"question" mapstructure:"question"`
	// SaveAttribute names the contact attribute the answer is meant for. Informational.
	SaveAttribute string `json:"saveAttribute,omitempty" mapstructure:"saveAttribute"`
}

type ConditionPayload struct {
	Condition *Condition `json:"condition,omitempty" mapstructure:"condition"`
}

// MediaPayload configures image, video, audio and document nodes.
type MediaPayload struct {
	Media   NodeType `json:"-" mapstructure:"-"`
	Caption string   `json:"caption,omitempty" mapstructure:"caption"`
	URL     string   `json:"url,omitempty" mapstructure:"url"`
}

type TimeDelayPayload struct {
	Minutes int `json:"minutes,omitempty" mapstructure:"minutes"`
	Seconds int `json:"seconds,omitempty" mapstructure:"seconds"`
}

// Total returns the configured delay in seconds.
func (p TimeDelayPayload) Total() int {
	return p.Minutes*60 + p.Seconds
}

type TemplatePayload struct {
	Template string `json:"template" mapstructure:"template"`
}

type SetTagsPayload struct {
	Tag string `json:"tag" mapstructure:"tag"`
}

type UpdateAttributePayload struct {
	Attribute string `json:"attribute" mapstructure:"attribute"`
	Value     string `json:"value" mapstructure:"value"`
}

type AssignTeamPayload struct {
	Team string `json:"team" mapstructure:"team"`
}

type AssignUserPayload struct {
	User string `json:"user" mapstructure:"user"`
}

type TriggerChatbotPayload struct{}

type UpdateChatStatusPayload struct {
	Status string `json:"status" mapstructure:"status"`
}

// WebhookPayload configures an outgoing HTTP call.
// Headers and Body are JSON documents stored as strings.
type WebhookPayload struct {
	URL     string `json:"url" mapstructure:"url"`
	Method  string `json:"method,omitempty" mapstructure:"method"`
	Headers string `json:"headers,omitempty" mapstructure:"headers"`
	Body    string `json:"body,omitempty" mapstructure:"body"`
}

type GoogleSpreadsheetPayload struct {
	Action    string `json:"action" mapstructure:"action"`
	SheetName string `json:"sheetName" mapstructure:"sheetName"`
}

// UnknownPayload carries the raw configuration of a node type the engine does not handle.
type UnknownPayload struct {
	Type string
	Data map[string]any
}

// MarshalJSON keeps the raw configuration as-is.
func (p UnknownPayload) MarshalJSON() ([]byte, error) {
	if p.Data == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p.Data)
}

func (TriggerPayload) Kind() NodeType           { return NodeTypeTrigger }
func (MessagePayload) Kind() NodeType           { return NodeTypeMessage }
func (QuestionPayload) Kind() NodeType          { return NodeTypeQuestion }
func (ConditionPayload) Kind() NodeType         { return NodeTypeCondition }
func (p MediaPayload) Kind() NodeType           { return p.Media }
func (TimeDelayPayload) Kind() NodeType         { return NodeTypeTimeDelay }
func (TemplatePayload) Kind() NodeType          { return NodeTypeTemplate }
func (SetTagsPayload) Kind() NodeType           { return NodeTypeSetTags }
func (UpdateAttributePayload) Kind() NodeType   { return NodeTypeUpdateAttribute }
func (AssignTeamPayload) Kind() NodeType        { return NodeTypeAssignTeam }
func (AssignUserPayload) Kind() NodeType        { return NodeTypeAssignUser }
func (TriggerChatbotPayload) Kind() NodeType    { return NodeTypeTriggerChatbot }
func (UpdateChatStatusPayload) Kind() NodeType  { return NodeTypeUpdateChatStatus }
func (WebhookPayload) Kind() NodeType           { return NodeTypeWebhook }
func (GoogleSpreadsheetPayload) Kind() NodeType { return NodeTypeGoogleSpreadsheet }
func (p UnknownPayload) Kind() NodeType         { return NodeType(p.Type) }

func (p TriggerPayload) Accept(ctx context.Context, v PayloadVisitor) Effect {
	return v.VisitTrigger(ctx, p)
}
func (p MessagePayload) Accept(ctx context.Context, v PayloadVisitor) Effect {
	return v.VisitMessage(ctx, p)
}
func (p QuestionPayload) Accept(ctx context.Context, v PayloadVisitor) Effect {
	return v.VisitQuestion(ctx, p)
}
func (p ConditionPayload) Accept(ctx context.Context, v PayloadVisitor) Effect {
	return v.VisitCondition(ctx, p)
}
func (p MediaPayload) Accept(ctx context.Context, v PayloadVisitor) Effect {
	return v.VisitMedia(ctx, p)
}
func (p TimeDelayPayload) Accept(ctx context.Context, v PayloadVisitor) Effect {
	return v.VisitTimeDelay(ctx, p)
}
func (p TemplatePayload) Accept(ctx context.Context, v PayloadVisitor) Effect {
	return v.VisitTemplate(ctx, p)
}
func (p SetTagsPayload) Accept(ctx context.Context, v PayloadVisitor) Effect {
	return v.VisitSetTags(ctx, p)
}
func (p UpdateAttributePayload) Accept(ctx context.Context, v PayloadVisitor) Effect {
	return v.VisitUpdateAttribute(ctx, p)
}
func (p AssignTeamPayload) Accept(ctx context.Context, v PayloadVisitor) Effect {
	return v.VisitAssignTeam(ctx, p)
}
func (p AssignUserPayload) Accept(ctx context.Context, v PayloadVisitor) Effect {
	return v.VisitAssignUser(ctx, p)
}
func (p TriggerChatbotPayload) Accept(ctx context.Context, v PayloadVisitor) Effect {
	return v.VisitTriggerChatbot(ctx, p)
}
func (p UpdateChatStatusPayload) Accept(ctx context.Context, v PayloadVisitor) Effect {
	return v.VisitUpdateChatStatus(ctx, p)
}
func (p WebhookPayload) Accept(ctx context.Context, v PayloadVisitor) Effect {
	return v.VisitWebhook(ctx, p)
}
func (p GoogleSpreadsheetPayload) Accept(ctx context.Context, v PayloadVisitor) Effect {
	return v.VisitGoogleSpreadsheet(ctx, p)
}
func (p UnknownPayload) Accept(ctx context.Context, v PayloadVisitor) Effect {
	return v.VisitUnknown(ctx, p)
}

func (TriggerPayload) sealed()           {}
func (MessagePayload) sealed()           {}
func (QuestionPayload) sealed()          {}
func (ConditionPayload) sealed()         {}
func (MediaPayload) sealed()             {}
func (TimeDelayPayload) sealed()         {}
func (TemplatePayload) sealed()          {}
func (SetTagsPayload) sealed()           {}
func (UpdateAttributePayload) sealed()   {}
func (AssignTeamPayload) sealed()        {}
func (AssignUserPayload) sealed()        {}
func (TriggerChatbotPayload) sealed()    {}
func (UpdateChatStatusPayload) sealed()  {}
func (WebhookPayload) sealed()           {}
func (GoogleSpreadsheetPayload) sealed() {}
func (UnknownPayload) sealed()           {}

// DecodePayload converts loosely typed node configuration into the payload for nodeType.
// Unknown node types are preserved as UnknownPayload rather than rejected.
func DecodePayload(nodeType NodeType, data map[string]any) (Payload, error) {
	var (
		payload Payload
		err     error
	)

	switch nodeType {
	case NodeTypeTrigger:
		payload = TriggerPayload{}
	case NodeTypeMessage:
		var p MessagePayload
		err = decodeInto(data, &p)
		payload = p
	case NodeTypeQuestion:
		var p QuestionPayload
		err = decodeInto(data, &p)
		payload = p
	case NodeTypeCondition:
		var p ConditionPayload
		err = decodeInto(data, &p)
		payload = p
	case NodeTypeImage, NodeTypeVideo, NodeTypeAudio, NodeTypeDocument:
		var p MediaPayload
		err = decodeInto(data, &p)
		p.Media = nodeType
		payload = p
	case NodeTypeTimeDelay:
		var p TimeDelayPayload
		err = decodeInto(data, &p)
		payload = p
	case NodeTypeTemplate:
		var p TemplatePayload
		err = decodeInto(data, &p)
		payload = p
	case NodeTypeSetTags:
		var p SetTagsPayload
		err = decodeInto(data, &p)
		payload = p
	case NodeTypeUpdateAttribute:
		var p UpdateAttributePayload
		err = decodeInto(data, &p)
		payload = p
	case NodeTypeAssignTeam:
		var p AssignTeamPayload
		err = decodeInto(data, &p)
		payload = p
	case NodeTypeAssignUser:
		var p AssignUserPayload
		err = decodeInto(data, &p)
		payload = p
	case NodeTypeTriggerChatbot:
		payload = TriggerChatbotPayload{}
	case NodeTypeUpdateChatStatus:
		var p UpdateChatStatusPayload
		err = decodeInto(data, &p)
		payload = p
	case NodeTypeWebhook:
		var p WebhookPayload
		err = decodeInto(data, &p)
		payload = p
	case NodeTypeGoogleSpreadsheet:
		var p GoogleSpreadsheetPayload
		err = decodeInto(data, &p)
		payload = p
	default:
		payload = UnknownPayload{Type: string(nodeType), Data: data}
	}

	if err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", nodeType, err)
	}
	return payload, nil
}

func decodeInto(data map[string]any, out any) error {
	if len(data) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       jsonStringHook,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(data)
}

// jsonStringHook lets structured values (e.g. webhook headers written as a YAML map)
// land in string fields as their JSON encoding.
func jsonStringHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}
	switch from.Kind() {
	case reflect.Map, reflect.Slice:
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	}
	return data, nil
}
