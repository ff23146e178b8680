// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"context"
	"net/http"

	"github.com/gorilla/rpc/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cjson "github.com/ava-labs/avalanchego/utils/json"
)

// Paths served by CreateHandlers, relative to the VM's API root
const (
	RPCEndpoint     = "/rpc"
	EventsEndpoint  = "/events"
	MetricsEndpoint = "/metrics"
)

// CreateHandlers returns a map where:
// Keys: The path extension for this VM's API
// Values: The handler for the API
func (vm *VM) CreateHandlers(context.Context) (map[string]http.Handler, error) {
	server := rpc.NewServer()
	codec := cjson.NewCodec()
	server.RegisterCodec(codec, "application/json")
	server.RegisterCodec(codec, "application/json;charset=UTF-8")
	if err := server.RegisterService(&Service{vm: vm}, Name); err != nil {
		return nil, err
	}

	return map[string]http.Handler{
		RPCEndpoint:     server,
		EventsEndpoint:  vm.feed,
		MetricsEndpoint: promhttp.HandlerFor(vm.registry, promhttp.HandlerOpts{}),
	}, nil
}
