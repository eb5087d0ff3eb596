/*
Package chatflow is a conversational-flow execution engine for chatbot scripts.

A flow is a directed graph of typed nodes (messages, questions, conditions, media,
webhooks, ...). The engine interprets it one conversational turn at a time: it renders
node effects as bot messages, evaluates branch conditions against the participant's
input, performs bounded webhook calls, and suspends whenever a node waits for a reply.

# Concept

The engine is stateless. The caller owns a ConversationState (the transcript plus the
node the conversation is parked at) and passes it in on every turn; the engine returns
an updated copy. Persisting that state between turns, and serializing turns of the same
conversation, is the job of pkg/session and the store adapters.

# Key Features

  - Deterministic Execution: given the same graph, state and input, a turn is reproducible.
  - Hexagonal Architecture: flows come from any FlowSource (Loam repository, YAML/JSON files,
    Postgres, AWS SSM); conversations persist in any ConversationStore (memory, Redis, DynamoDB).
  - Bounded Turns: cyclic graphs end after a fixed number of steps; webhooks time out.
  - Load-time Validation: port and edge invariants are checked before a flow is run.

# Usage

	eng, err := chatflow.New("./flows")
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	var state domain.ConversationState

	// Start the conversation: runs until the first question.
	state, err = eng.Run(ctx, "welcome", state, "")
	if err != nil {
		log.Fatal(err)
	}
	for _, text := range state.BotMessages() {
		fmt.Println(text)
	}

	// Answer it.
	state, err = eng.Run(ctx, "welcome", state, "yes")
*/
package chatflow
