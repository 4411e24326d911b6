package client

import (
	"fmt"

	"github.com/ValentinKolb/keep/lib/store"
	"github.com/ValentinKolb/keep/rpc/common"
	"github.com/ValentinKolb/keep/rpc/serializer"
	"github.com/ValentinKolb/keep/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("rpc")
)

// rpcClientAdapter is a struct that stores all data needed for an implementation of an RPC client
type rpcClientAdapter struct {
	namespace  string
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// invokeRPCRequest is a helper function used for all RPC Clients to send requests
// It takes a namespace, a request message, a transport layer and a serializer as parameters
// It returns a response message and an error if any occurs
// This method also checks if the response is an error response and if the type of the response is the expected type
// Transport and protocol failures are returned as *store.Error with code RetCIOError or RetCInternalError,
// errors of the remote store keep their original code.
func invokeRPCRequest(namespace string, req *common.Message, transport transport.IRPCClientTransport, serializer serializer.IRPCSerializer) (*common.Message, error) {
	// Serialize the request
	reqBytes, err := serializer.Serialize(*req)
	if err != nil {
		return nil, store.WrapError(store.RetCInternalError, "could not serialize request", "", err)
	}

	// Send the request
	respBytes, err := transport.Send(namespace, reqBytes)
	if err != nil {
		Logger.Errorf("request %s to namespace %s failed: %v", req.MsgType, namespace, err)
		return nil, store.WrapError(store.RetCIOError, "rpc request failed", "", err)
	}

	// Deserialize the response
	resp := &common.Message{}
	if err := serializer.Deserialize(respBytes, resp); err != nil {
		return nil, store.WrapError(store.RetCInternalError, "could not deserialize response", "", err)
	}

	// Check if the response is an error response
	if err := resp.ToError(); err != nil {
		return nil, err
	}

	// Check if the type of the response is the expected type
	if resp.MsgType != req.MsgType {
		return nil, store.NewError(store.RetCInternalError,
			fmt.Sprintf("unexpected message type: %s, expected %s", resp.MsgType, req.MsgType))
	}

	// Return the response
	return resp, nil
}
