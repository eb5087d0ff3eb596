/*
Package domain contains the core domain models of the chatflow engine.

It defines the authored graph (Flows, Nodes, Edges), the typed node payloads, and the
caller-owned ConversationState that is threaded through the interpreter turn by turn.
This package is kept pure and free of I/O; adapters live under pkg/adapters.

# Key Entities

  - Node: a typed step of a flow. Its configuration is a Payload, a closed set of
    concrete types (MessagePayload, ConditionPayload, WebhookPayload, ...).
  - Edge: a directed connection between two nodes, optionally keyed by a Port.
  - ConversationState: the messages exchanged so far plus the node the conversation is parked at.
  - Conversation: a persisted ConversationState bound to a flow.
  - FlowDocument: the interchange form used by files, repositories and databases.
*/
package domain
