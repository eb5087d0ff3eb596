// Package runtime implements the flow interpreter: condition evaluation, node
// execution and the bounded turn loop that advances a ConversationState.
package runtime
