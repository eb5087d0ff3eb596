/*
Package ports defines the driven ports (interfaces) for the chatflow engine.

These interfaces decouple the interpreter from external implementations, allowing
it to work with various graph sources, conversation stores and HTTP clients.

# Key Interfaces

  - GraphProvider: answers the three lookups the interpreter needs (trigger, node, outgoing edge).
  - FlowSource: loads whole flows from files, repositories, databases or parameter stores.
  - ConversationStore: persists Conversations between turns.
  - DistributedLocker: serializes turns of one conversation across replicas.
  - Interpreter: advances a ConversationState by one turn.
*/
package ports
