// gu_errors.go - Error Types for the GU Emulator

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine

License: GPLv3 or later
*/

/*
gu_errors.go - Error Types for the GU Emulator

Protocol violations (caller bugs) and resource exhaustion (recoverable) are
both surfaced as *GuError so callers can log the failing operation, and
tested against the sentinels with errors.Is.
*/

package main

import (
	"errors"
	"fmt"
)

// Protocol violations
var (
	ErrNoPosition        = errors.New("vertex type has no position field")
	ErrPrimitiveCount    = errors.New("vertex count does not match primitive")
	ErrVertexBufferShort = errors.New("vertex buffer too short")
	ErrIndexBufferShort  = errors.New("index buffer too short")
	ErrBadPrimitive      = errors.New("unknown primitive type")
	ErrBadTextureSize    = errors.New("texture size out of range")
	ErrPaletteShort      = errors.New("palette buffer too short")
	ErrBadPixelFormat    = errors.New("unsupported pixel format")
	ErrNotDrawing        = errors.New("no display list open")
	ErrBadBuffer         = errors.New("buffer outside VRAM")
)

// Resource exhaustion
var (
	ErrTextureUpload   = errors.New("host rejected texture upload")
	ErrFormatRejected  = errors.New("host does not accept texture format")
	ErrCommandOverflow = errors.New("display list command overflow")
	ErrNoRenderer      = errors.New("renderer not available in this build")
	ErrAudioChannel    = errors.New("audio channel unavailable")
)

// GuError reports the failing GU operation alongside the cause.
type GuError struct {
	Operation string
	Details   string
	Err       error
}

func (e *GuError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("%s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Operation, e.Details, e.Err)
}

func (e *GuError) Unwrap() error {
	return e.Err
}

func guErr(op string, err error, format string, args ...any) error {
	return &GuError{Operation: op, Details: fmt.Sprintf(format, args...), Err: err}
}
