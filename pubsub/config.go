// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"errors"
	"time"

	"github.com/ava-labs/avalanchego/utils/units"
)

const (
	readBufferSize  = units.KiB
	writeBufferSize = units.KiB

	// subscribers only send control frames
	maxReadMessageSize = 512
)

var (
	ErrInvalidTimeout   = errors.New("websocket timeouts must be positive")
	ErrInvalidQueueSize = errors.New("pending message queue must hold at least one message")
)

type Config struct {
	// Deadline for a single frame write.
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	// A client that answers no ping within PongTimeout is dropped. Pings are
	// sent every 9/10 of it.
	PongTimeout time.Duration `yaml:"pongTimeout"`
	// Messages queued per client before new ones are dropped for it.
	MaxPendingMessages int `yaml:"maxPendingMessages"`
}

func NewDefaultConfig() Config {
	return Config{
		WriteTimeout:       10 * time.Second,
		PongTimeout:        60 * time.Second,
		MaxPendingMessages: 1024,
	}
}

func (c Config) Verify() error {
	if c.WriteTimeout <= 0 || c.PongTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxPendingMessages <= 0 {
		return ErrInvalidQueueSize
	}
	return nil
}

func (c Config) pingPeriod() time.Duration {
	return c.PongTimeout * 9 / 10
}
