package fstore

import (
	"path/filepath"
	"time"

	"github.com/ValentinKolb/keep/lib/record"
	"github.com/ValentinKolb/keep/lib/store"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"
)

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *Store) Data() (data map[string]any, err error) {
	defer s.observe(opData, time.Now(), &err)

	keys, values, err := s.collect()
	if err != nil {
		return nil, err
	}
	data = make(map[string]any, len(keys))
	for i, key := range keys {
		data[key] = values[i]
	}
	return data, nil
}

func (s *Store) Keys() (keys []string, err error) {
	defer s.observe(opKeys, time.Now(), &err)

	keys, _, err = s.collect()
	return keys, err
}

func (s *Store) Values() (values []any, err error) {
	defer s.observe(opValues, time.Now(), &err)

	_, values, err = s.collect()
	return values, err
}

func (s *Store) Length() (n int, err error) {
	defer s.observe(opLength, time.Now(), &err)

	keys, _, err := s.collect()
	return len(keys), err
}

// Clear removes every key returned by Keys. All removals are awaited, a
// failing removal does not stop the others. Failures are returned as one
// *store.Error wrapping every single failure.
func (s *Store) Clear() (err error) {
	defer s.observe(opClear, time.Now(), &err)

	keys, _, err := s.collect()
	if err != nil {
		return err
	}

	p := pool.New().WithErrors().WithMaxGoroutines(s.cfg.Concurrency)
	for _, key := range keys {
		p.Go(func() error {
			return s.RemoveItem(key)
		})
	}
	if err := p.Wait(); err != nil {
		return store.WrapError(store.RetCIOError, "could not remove all entries", s.dir, err)
	}

	s.debugf("cleared %d entries from %s", len(keys), s.dir)
	return nil
}

// --------------------------------------------------------------------------
// Directory Listing
// --------------------------------------------------------------------------

// collect returns the keys and values of all valid records in listing order.
// If a key occurs more than once, the position of the first and the value of
// the last occurrence is used.
func (s *Store) collect() ([]string, []any, error) {
	records, err := s.entries()
	if err != nil {
		return nil, nil, err
	}

	keys := make([]string, 0, len(records))
	values := make([]any, 0, len(records))
	index := make(map[string]int, len(records))
	for _, rec := range records {
		value, err := rec.Decoded()
		if err != nil {
			s.warnf("skipping corrupt record for key %q: %v", rec.Key, err)
			continue
		}
		if i, ok := index[rec.Key]; ok {
			values[i] = value
			continue
		}
		index[rec.Key] = len(keys)
		keys = append(keys, rec.Key)
		values = append(values, value)
	}
	return keys, values, nil
}

// entries lists the storage directory and returns every valid record in
// listing order. Directories, dotfiles (e.g. temp files), files that are not
// named like an identifier and records stored under the identifier of
// another key are skipped, as are files that vanish while listing or fail to
// decode. A missing storage directory results in an empty listing.
//
// A file that is named like an identifier but can not be read (e.g. missing
// permissions) is an I/O failure, not a corrupt record: the whole listing
// fails with RetCIOError instead of silently hiding an entry.
func (s *Store) entries() ([]record.Record, error) {
	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if isAbsent(err) {
			s.warnf("no storage directory found: %s", s.dir)
			return nil, nil
		}
		return nil, s.fail(store.RetCIOError, "could not read directory", s.dir, err)
	}

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() || !record.IsIdentifier(info.Name()) {
			continue
		}
		names = append(names, info.Name())
	}

	// every goroutine only writes its own slot
	found := make([]*record.Record, len(names))

	p := pool.New().WithErrors().WithMaxGoroutines(s.cfg.Concurrency)
	for i, name := range names {
		p.Go(func() error {
			path := filepath.Join(s.dir, name)
			rec, ok, err := s.readEntry(path)
			if err != nil || !ok {
				return err
			}
			if record.HashKey(rec.Key) != name {
				s.warnf("skipping foreign record %s", path)
				return nil
			}
			found[i] = &rec
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, store.WrapError(store.RetCIOError, "could not read all entries", s.dir, err)
	}

	records := make([]record.Record, 0, len(found))
	for _, rec := range found {
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records, nil
}
