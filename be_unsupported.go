//go:build !(amd64 || arm64 || 386 || arm || riscv64 || loong64 || mipsle || mips64le || ppc64le || wasm)

package main

// The audio mixer hands its int16 sample buffer to the device as raw bytes,
// and the device expects little-endian PCM.
var _ = "the GU host requires a little-endian architecture" + 1
