// Package resource manages host resource handles on both sides of the
// function boundary.
//
// # Guest side
//
// An Owner wraps one opaque handle and moves through
//
//	Uninitialized -> Constructed -> Released
//
// Owners built from other owners (a DynamoDB client from a credentials
// provider, a response stream from a redis client) borrow their parents
// for their whole lifetime:
//
//	creds, _ := resource.Construct(ctx, resource.TypeCredentialsProvider, buildCreds, dropCreds)
//	client, _ := resource.Construct(ctx, resource.TypeDDBClient, buildClient, dropClient, creds)
//
//	creds.Release(ctx)  // ErrOutstandingBorrow: client still borrows it
//	client.Release(ctx) // host notified, borrow returned
//	creds.Release(ctx)  // host notified
//	creds.Release(ctx)  // no-op
//
// After release, Handle and any construction from the owner fail with
// ErrReleased. Release runs the host notification exactly once. A Scope
// releases a group of owners in reverse creation order on every exit path.
//
// # Host side
//
// Table is the handle table a host keeps per invocation. Insert takes the
// parent handles a resource is derived from and pins them; Drop refuses to
// remove an entry that is still pinned:
//
//	table := resource.NewTable()
//	creds, _ := table.Insert(resource.TypeCredentialsProvider, provider)
//	client, _ := table.Insert(resource.TypeDDBClient, ddb, creds)
//	table.Drop(creds, resource.TypeCredentialsProvider) // ErrOutstandingBorrow
//
// Observers receive created, dropped and borrow events. Close drops every
// remaining entry when an invocation ends.
package resource
