// Package contract defines the versioned host capability contracts that
// functions are built against.
//
// Every capability has a namespace carrying its interface version, a set
// of wire records, a closed error-kind enumeration and a host interface.
// Records use CBOR array layout so field order is part of the contract.
// Tagged unions are a discriminant plus one field per payload-carrying
// case; the discriminant types end in a Count sentinel that mapping tables
// are sized against, so adding a case without updating every mapping site
// fails to compile.
//
// Method names follow the host registration convention used by the
// runner and dev host:
//
//	ConstructorClient           -> [constructor]client
//	MethodClientPipe            -> [method]client.pipe
//	MethodResponseStreamNext    -> [method]response-stream.next
//	ResourceDropResponseStream  -> [resource-drop]response-stream
//	Publish                     -> publish
//
// The package holds no behavior beyond naming helpers.
package contract
