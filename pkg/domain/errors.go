package domain

import "errors"

// ErrFlowNotFound is returned when a flow id is unknown to the graph provider.
var ErrFlowNotFound = errors.New("flow not found")

// ErrTriggerNotFound is returned when a flow has no trigger node.
var ErrTriggerNotFound = errors.New("trigger not found")

// ErrNodeNotFound is returned when a node id is not part of the flow.
var ErrNodeNotFound = errors.New("node not found")

// ErrNoEdge is returned when no outgoing edge matches a node and port.
var ErrNoEdge = errors.New("no outgoing edge")

// ErrGraphMalformed is returned when a flow fails load-time validation.
var ErrGraphMalformed = errors.New("invalid graph")

// ErrConversationNotFound is returned when a conversation id cannot be found in the store.
var ErrConversationNotFound = errors.New("conversation not found")
