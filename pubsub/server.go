// Copyright (C) 2019-2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"net/http"
	"sync"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/set"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  readBufferSize,
	WriteBufferSize: writeBufferSize,
	CheckOrigin: func(*http.Request) bool {
		return true
	},
}

// Server fans published messages out to every connected websocket client.
// It is an [http.Handler] and is mounted by the caller.
type Server struct {
	log    logging.Logger
	config Config

	lock   sync.RWMutex
	conns  set.Set[*Connection]
	closed bool
}

func New(log logging.Logger, config Config) *Server {
	return &Server{
		log:    log,
		config: config,
	}
}

// ServeHTTP upgrades the request and registers the connection.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("failed to upgrade",
			zap.Error(err),
		)
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		_ = wsConn.Close()
		return
	}
	conn := newConnection(s, wsConn)
	s.conns.Add(conn)
	go conn.writePump()
	go conn.readPump()
}

// Publish sends [msg] to every connection and returns how many accepted it.
func (s *Server) Publish(msg []byte) int {
	s.lock.RLock()
	defer s.lock.RUnlock()

	sent := 0
	for conn := range s.conns {
		if conn.Send(msg) {
			sent++
			continue
		}
		s.log.Verbo("dropping message to subscribed connection due to too many pending messages")
	}
	return sent
}

// Len returns the number of connected clients.
func (s *Server) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.conns.Len()
}

func (s *Server) removeConnection(conn *Connection) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.conns.Remove(conn)
}

// Close disconnects every client and rejects new ones.
func (s *Server) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.closed = true
	for conn := range s.conns {
		conn.deactivate()
	}
	return nil
}
