package lstore

import (
	"encoding/json"
	"sort"
	"unicode/utf8"

	"github.com/ValentinKolb/keep/lib/record"
	"github.com/ValentinKolb/keep/lib/store"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var _logger = logger.GetLogger("lstore")

type storeImpl struct {
	data *xsync.MapOf[string, json.RawMessage]
}

// NewLocalStore creates a new, empty in-memory store.
// Values are kept in their JSON encoded form, so the store accepts and
// returns exactly what a file store would.
func NewLocalStore() store.IStore {
	return &storeImpl{
		data: xsync.NewMapOf[string, json.RawMessage](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Init() error {
	return nil
}

func (s *storeImpl) SetItem(key string, value any) error {
	if !utf8.ValidString(key) {
		return store.NewError(store.RetCInvalidKey, "key is not valid utf-8")
	}
	raw, err := record.EncodeValue(value)
	if err != nil {
		return store.WrapError(store.RetCInvalidValue, "could not encode value", "", err)
	}
	s.data.Store(key, raw)
	return nil
}

func (s *storeImpl) GetItem(key string) (any, bool, error) {
	if !utf8.ValidString(key) {
		return nil, false, store.NewError(store.RetCInvalidKey, "key is not valid utf-8")
	}
	raw, ok := s.data.Load(key)
	if !ok {
		return nil, false, nil
	}
	value, err := record.DecodeValue(raw)
	if err != nil {
		// only valid JSON is ever stored
		return nil, false, store.WrapError(store.RetCInternalError, "could not decode value", "", err)
	}
	return value, true, nil
}

func (s *storeImpl) RemoveItem(key string) error {
	if !utf8.ValidString(key) {
		return store.NewError(store.RetCInvalidKey, "key is not valid utf-8")
	}
	s.data.Delete(key)
	return nil
}

func (s *storeImpl) Clear() error {
	n := s.data.Size()
	s.data.Clear()
	_logger.Debugf("cleared %d entries", n)
	return nil
}

func (s *storeImpl) Data() (map[string]any, error) {
	keys, values, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	data := make(map[string]any, len(keys))
	for i, key := range keys {
		data[key] = values[i]
	}
	return data, nil
}

func (s *storeImpl) Keys() ([]string, error) {
	keys, _, err := s.snapshot()
	return keys, err
}

func (s *storeImpl) Values() ([]any, error) {
	_, values, err := s.snapshot()
	return values, err
}

func (s *storeImpl) Length() (int, error) {
	return s.data.Size(), nil
}

// snapshot returns all entries sorted by key. Concurrent writes may or may
// not be part of the result.
func (s *storeImpl) snapshot() ([]string, []any, error) {
	raws := make(map[string]json.RawMessage, s.data.Size())
	s.data.Range(func(key string, raw json.RawMessage) bool {
		raws[key] = raw
		return true
	})

	keys := make([]string, 0, len(raws))
	for key := range raws {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	values := make([]any, len(keys))
	for i, key := range keys {
		value, err := record.DecodeValue(raws[key])
		if err != nil {
			return nil, nil, store.WrapError(store.RetCInternalError, "could not decode value", "", err)
		}
		values[i] = value
	}
	return keys, values, nil
}
