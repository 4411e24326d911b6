package server

import (
	"encoding/json"
	"fmt"

	"github.com/ValentinKolb/keep/lib/record"
	"github.com/ValentinKolb/keep/lib/store"
	"github.com/ValentinKolb/keep/rpc/common"
)

// IRPCServerAdapter executes the requests addressed to one namespace
type IRPCServerAdapter interface {
	// Handle executes a request and returns the response.
	// Failures are reported in the response (see common.Message.SetError).
	Handle(req *common.Message) (resp *common.Message)
}

// NewIStoreServerAdapter creates an adapter that executes requests on s
func NewIStoreServerAdapter(s store.IStore) IRPCServerAdapter {
	return &iStoreServerAdapterImpl{store: s}
}

type iStoreServerAdapterImpl struct {
	store store.IStore
}

func (adapter *iStoreServerAdapterImpl) Handle(req *common.Message) *common.Message {
	s := adapter.store
	if s == nil {
		return common.NewErrorResponse("handler: store is nil")
	}

	// Handle different message types
	switch req.MsgType {
	case common.MsgTInit:
		return common.NewResponse(req.MsgType, s.Init())
	case common.MsgTSet:
		// the value is already JSON, the store validates and stores it verbatim
		err := s.SetItem(req.Key, json.RawMessage(req.Value))
		return common.NewResponse(req.MsgType, err)
	case common.MsgTGet:
		value, ok, err := s.GetItem(req.Key)
		if err != nil || !ok {
			return common.NewGetResponse(nil, false, err)
		}
		raw, err := record.EncodeValue(value)
		return common.NewGetResponse(raw, err == nil, err)
	case common.MsgTRemove:
		return common.NewResponse(req.MsgType, s.RemoveItem(req.Key))
	case common.MsgTClear:
		return common.NewResponse(req.MsgType, s.Clear())
	case common.MsgTData:
		data, err := s.Data()
		return payloadResponse(req.MsgType, data, err)
	case common.MsgTKeys:
		keys, err := s.Keys()
		return payloadResponse(req.MsgType, keys, err)
	case common.MsgTValues:
		values, err := s.Values()
		return payloadResponse(req.MsgType, values, err)
	case common.MsgTLength:
		n, err := s.Length()
		return common.NewLengthResponse(n, err)
	default:
		return common.NewErrorResponse(
			fmt.Sprintf("RPC IStoreAdapter - Unsupported message type: %s", req.MsgType),
		)
	}
}

// payloadResponse encodes the result of an aggregate operation
func payloadResponse(msgType common.MessageType, result any, err error) *common.Message {
	if err != nil {
		return common.NewPayloadResponse(msgType, nil, err)
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return common.NewPayloadResponse(msgType, nil,
			store.WrapError(store.RetCInternalError, "could not encode result", "", err))
	}
	return common.NewPayloadResponse(msgType, payload, nil)
}
