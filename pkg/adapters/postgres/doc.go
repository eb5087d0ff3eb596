/*
Package postgres reads flows from the relational layout used by the flow editor.

	flows(id, name)
	nodes(id, flow_id, type, data jsonb)
	edges(id, flow_id, source_node_id, target_node_id, source_handle)

The editor stores every node with the generic type "custom" and keeps the real
node type inside data.type; both layouts are accepted.
*/
package postgres
