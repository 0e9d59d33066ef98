package app

import "errors"

// ErrUnknownIDStrategy reports an unsupported id strategy name.
var ErrUnknownIDStrategy = errors.New("unknown id strategy")
