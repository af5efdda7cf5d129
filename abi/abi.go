package abi

import "github.com/wippyai/wasm-functions/contract"

// Module is the host module guests import from.
const Module = "functions"

const (
	ImportCall  = "call"
	ImportReply = "reply"
)

const (
	ExportAlloc = "functions_alloc"
	ExportFree  = "functions_free"
	ExportWeb   = "functions_web"
	ExportSpawn = "functions_spawn"
)

// Entries maps the interface-level entry names to core export names.
var Entries = map[string]string{
	contract.ExportWebInvoke:   ExportWeb,
	contract.ExportSpawnInvoke: ExportSpawn,
}

// Pack combines a guest pointer and length into one result.
func Pack(ptr, size uint32) uint64 {
	return uint64(ptr)<<32 | uint64(size)
}

// Unpack splits a packed result.
func Unpack(v uint64) (ptr, size uint32) {
	return uint32(v >> 32), uint32(v)
}
