/*
Package session implements conversation management and persistence orchestration.

The interpreter is stateless; Manager supplies the missing half. It loads a
conversation, runs one turn, and saves the result while holding a per-conversation
lock, so concurrent messages for the same conversation are applied one after the
other. Across replicas the local lock is complemented by an optional
ports.DistributedLocker (see the Redis adapter).
*/
package session
