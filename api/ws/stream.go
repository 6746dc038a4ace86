// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ws

import (
	"context"
	"encoding/json"

	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/reflectvm/api"
	"github.com/ava-labs/reflectvm/event"
	"github.com/ava-labs/reflectvm/pubsub"
	"github.com/ava-labs/reflectvm/reflection"
)

const Endpoint = "/reflectws"

var _ event.Subscription[*reflection.Transfer] = (*TransferStream)(nil)

// TransferMessage is the JSON frame pushed to websocket clients for every
// committed transfer, mint or burn.
type TransferMessage struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Amount    string `json:"amount"`
	Credited  string `json:"credited"`
	Fee       string `json:"fee"`
	Reflected bool   `json:"reflected"`
}

// TransferStream publishes committed transfers to websocket subscribers.
type TransferStream struct {
	server *pubsub.Server
}

func NewTransferStream(log logging.Logger, config pubsub.Config) *TransferStream {
	return &TransferStream{server: pubsub.New(log, config)}
}

// Handler mounts the stream at [Endpoint].
func (t *TransferStream) Handler() api.Handler {
	return api.Handler{
		Path:    Endpoint,
		Handler: t.server,
	}
}

func (t *TransferStream) Accept(_ context.Context, tr *reflection.Transfer) error {
	b, err := json.Marshal(&TransferMessage{
		From:      tr.From.String(),
		To:        tr.To.String(),
		Amount:    tr.Amount.Dec(),
		Credited:  tr.Credited.Dec(),
		Fee:       tr.Fee.Dec(),
		Reflected: tr.Reflected,
	})
	if err != nil {
		return err
	}
	t.server.Publish(b)
	return nil
}

func (t *TransferStream) Close() error {
	return t.server.Close()
}
