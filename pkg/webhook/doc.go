// Package webhook performs the outgoing HTTP calls of webhook nodes.
//
// A Request carries the node configuration as authored: headers and body are JSON
// documents stored as strings. Client.Do builds the call, enforces a hard timeout
// and classifies the outcome; Client.Test performs the same call and captures the
// response for display in an editor.
package webhook
