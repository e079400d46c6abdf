package main

import (
	"errors"
	"fmt"
)

// ErrSink marks failures of the downstream renderer. They end the feed loop.
var ErrSink = errors.New("sink failed")

// ConfigError reports a block that could not be built. The block is skipped.
type ConfigError struct {
	Block string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("block %s: %v", e.Block, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ProducerError is a failed poll of a single block.
type ProducerError struct {
	Block string
	Err   error
}

func (e *ProducerError) Error() string {
	return fmt.Sprintf("block %s: %v", e.Block, e.Err)
}

func (e *ProducerError) Unwrap() error { return e.Err }
