// Package common provides the transport-agnostic session shared by HTTP and MCP adapters.
package common

import (
	"errors"

	"github.com/evanschultz/todo/internal/app"
)

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// Result pairs one transition outcome with the state it produced.
type Result struct {
	Outcome app.Outcome `json:"outcome"`
	Applied bool        `json:"applied"`
	State   app.State   `json:"state"`
}

// Logger receives one debug line per transition.
type Logger interface {
	Debug(msg any, keyvals ...any)
}
