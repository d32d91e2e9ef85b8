// Package wasmbin emits the minimal WebAssembly binaries memseg needs:
// a module that defines one linear memory and exports it.
//
// This package is internal and should not be used directly.
package wasmbin
