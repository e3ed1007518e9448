// Package api defines the Connect wire contract: procedure names, JSON message
// types, and handler and client constructors for every service.
package api

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// jsonCodec marshals plain Go structs under the "json" codec name, so the
// Connect protocol's application/json content type works without protobuf.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal %T: %w", msg, err)
	}
	return nil
}

// codecOption is prepended to every handler and client so JSON is always available.
var codecOption = connect.WithCodec(jsonCodec{})

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{codecOption}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{codecOption}, opts...)
}
