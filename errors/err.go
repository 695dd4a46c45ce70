package errors

import (
	"fmt"
)

type ErrCode int

type CellrunErr struct {
	Code ErrCode
	Msg  string
}

func (e *CellrunErr) Error() string {
	return fmt.Sprintf("[%d] %s", e.Code, e.Msg)
}

func new(code ErrCode, msg string) *CellrunErr {
	return &CellrunErr{
		Code: code,
		Msg:  msg,
	}
}

const (
	toolUnavailable ErrCode = iota
	toolFailed
	toolIO
	parseFailed
	notFound
	invalid
	notSupported
	internal
)

// Pre-defined errors.
var (
	// ToolUnavailable covers a missing or non-executable binary as well as a
	// version banner mismatch.
	ToolUnavailable = new(toolUnavailable, "administration tool is unavailable")
	// ToolFailed is a non-zero exit status; callers wrap it with the status.
	ToolFailed   = new(toolFailed, "administration tool exited with an error")
	ToolIOFailed = new(toolIO, "failed to capture administration tool output")

	ParseFailed = new(parseFailed, "failed to parse cell list output")

	NoSuchDomain = new(notFound, "no domain with matching id, name or uuid")
	CellGone     = new(notFound, "cell is no longer reported by the hypervisor")

	InvalidURI    = new(invalid, "unsupported connection URI")
	EmptyCellName = new(invalid, "empty cell name")
	ConnClosed    = new(invalid, "connection is closed")

	NotSupported = new(notSupported, "operation not supported by this driver")
	Internal     = new(internal, "internal driver error")
)
