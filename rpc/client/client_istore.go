package client

import (
	"encoding/json"
	"unicode/utf8"

	"github.com/ValentinKolb/keep/lib/record"
	"github.com/ValentinKolb/keep/lib/store"
	"github.com/ValentinKolb/keep/rpc/common"
	"github.com/ValentinKolb/keep/rpc/serializer"
	"github.com/ValentinKolb/keep/rpc/transport"
)

// NewRPCStore creates a new RPC store
// The function takes a namespace, a config, a transport and a serializer as parameters
// It returns a store.IStore and an error
func NewRPCStore(
	namespace string,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (store.IStore, error) {

	// Connect the transport
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	// Create a new RPC store
	return &rpcStore{
		rpcClientAdapter{
			namespace:  namespace,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}, nil
}

type rpcStore struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the store package in interface.go)
// --------------------------------------------------------------------------

func (i *rpcStore) Init() error {
	_, err := i.invoke(common.NewInitRequest())
	return err
}

func (i *rpcStore) SetItem(key string, value any) error {
	// invalid input is rejected before anything is sent
	if !utf8.ValidString(key) {
		return store.NewError(store.RetCInvalidKey, "key is not valid utf-8")
	}
	raw, err := record.EncodeValue(value)
	if err != nil {
		return store.WrapError(store.RetCInvalidValue, "could not encode value", "", err)
	}

	_, err = i.invoke(common.NewSetRequest(key, raw))
	return err
}

func (i *rpcStore) GetItem(key string) (any, bool, error) {
	if !utf8.ValidString(key) {
		return nil, false, store.NewError(store.RetCInvalidKey, "key is not valid utf-8")
	}

	resp, err := i.invoke(common.NewGetRequest(key))
	if err != nil || !resp.Ok {
		return nil, false, err
	}
	value, err := record.DecodeValue(resp.Value)
	if err != nil {
		return nil, false, store.WrapError(store.RetCInternalError, "could not decode value", "", err)
	}
	return value, true, nil
}

func (i *rpcStore) RemoveItem(key string) error {
	if !utf8.ValidString(key) {
		return store.NewError(store.RetCInvalidKey, "key is not valid utf-8")
	}

	_, err := i.invoke(common.NewRemoveRequest(key))
	return err
}

func (i *rpcStore) Clear() error {
	_, err := i.invoke(common.NewClearRequest())
	return err
}

func (i *rpcStore) Data() (map[string]any, error) {
	resp, err := i.invoke(common.NewDataRequest())
	if err != nil {
		return nil, err
	}

	var raws map[string]json.RawMessage
	if err := decodePayload(resp.Value, &raws); err != nil {
		return nil, err
	}
	data := make(map[string]any, len(raws))
	for key, raw := range raws {
		if data[key], err = record.DecodeValue(raw); err != nil {
			return nil, store.WrapError(store.RetCInternalError, "could not decode value", "", err)
		}
	}
	return data, nil
}

func (i *rpcStore) Keys() ([]string, error) {
	resp, err := i.invoke(common.NewKeysRequest())
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0)
	if err := decodePayload(resp.Value, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

func (i *rpcStore) Values() ([]any, error) {
	resp, err := i.invoke(common.NewValuesRequest())
	if err != nil {
		return nil, err
	}

	var raws []json.RawMessage
	if err := decodePayload(resp.Value, &raws); err != nil {
		return nil, err
	}
	values := make([]any, len(raws))
	for idx, raw := range raws {
		if values[idx], err = record.DecodeValue(raw); err != nil {
			return nil, store.WrapError(store.RetCInternalError, "could not decode value", "", err)
		}
	}
	return values, nil
}

func (i *rpcStore) Length() (int, error) {
	resp, err := i.invoke(common.NewLengthRequest())
	if err != nil {
		return 0, err
	}
	return int(resp.Count), nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (i *rpcStore) invoke(req *common.Message) (*common.Message, error) {
	return invokeRPCRequest(i.namespace, req, i.transport, i.serializer)
}

// decodePayload decodes the JSON payload of an aggregate response. An empty
// payload leaves v untouched.
func decodePayload(payload []byte, v any) error {
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return store.WrapError(store.RetCInternalError, "could not decode response payload", "", err)
	}
	return nil
}
