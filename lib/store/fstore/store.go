package fstore

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ValentinKolb/keep/lib/record"
	"github.com/ValentinKolb/keep/lib/store"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/afero"
)

var _ store.IStore = (*Store)(nil)

// Store is a store.IStore that keeps every entry in its own file.
type Store struct {
	cfg     Config
	dir     string // absolute storage directory, resolved once
	fs      afero.Fs
	log     logger.ILogger
	metrics map[string]*opMetrics
}

// NewFileStore creates a new file store. Zero valued config fields are
// filled with their defaults (see DefaultConfig), set NoLog to disable
// logging. The storage directory is resolved here, but not created:
// call Init (or use Open) before using the store.
func NewFileStore(cfg Config) *Store {
	cfg = cfg.withDefaults()

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	dir := resolveDir(cfg.Dir, cwd)

	return &Store{
		cfg:     cfg,
		dir:     dir,
		fs:      cfg.Fs,
		log:     cfg.Logger,
		metrics: newStoreMetrics(dir),
	}
}

// Open creates a new file store and initializes its storage directory.
func Open(cfg Config) (*Store, error) {
	s := NewFileStore(cfg)
	if err := s.Init(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the absolute storage directory of the store.
func (s *Store) Dir() string {
	return s.dir
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *Store) Init() (err error) {
	defer s.observe(opInit, time.Now(), &err)

	info, err := s.fs.Stat(s.dir)
	if err == nil {
		if !info.IsDir() {
			return s.fail(store.RetCInitError, "storage path is not a directory", s.dir, nil)
		}
		s.debugf("storage directory %s already exists", s.dir)
		s.removeStaleTempFiles()
		return nil
	}
	if !isAbsent(err) {
		return s.fail(store.RetCInitError, "could not access storage directory", s.dir, err)
	}

	if err := s.fs.MkdirAll(s.dir, s.cfg.DirMode); err != nil {
		return s.fail(store.RetCInitError, "could not create storage directory", s.dir, err)
	}
	s.infof("created storage directory %s", s.dir)
	return nil
}

func (s *Store) SetItem(key string, value any) (err error) {
	defer s.observe(opSet, time.Now(), &err)

	if !utf8.ValidString(key) {
		return s.fail(store.RetCInvalidKey, "key is not valid utf-8", "", nil)
	}
	data, err := record.Encode(key, value)
	if err != nil {
		return s.fail(store.RetCInvalidValue, "could not encode value", "", err)
	}
	return s.writeFile(s.entryPath(key), data)
}

func (s *Store) GetItem(key string) (value any, loaded bool, err error) {
	defer s.observe(opGet, time.Now(), &err)

	if !utf8.ValidString(key) {
		return nil, false, s.fail(store.RetCInvalidKey, "key is not valid utf-8", "", nil)
	}

	path := s.entryPath(key)
	rec, ok, err := s.readEntry(path)
	if err != nil || !ok {
		return nil, false, err
	}

	// a record stored under the identifier of another key is foreign
	if rec.Key != key {
		s.warnf("skipping foreign record %s", path)
		return nil, false, nil
	}

	value, err = rec.Decoded()
	if err != nil {
		s.warnf("skipping corrupt record %s: %v", path, err)
		return nil, false, nil
	}
	return value, true, nil
}

func (s *Store) RemoveItem(key string) (err error) {
	defer s.observe(opRemove, time.Now(), &err)

	if !utf8.ValidString(key) {
		return s.fail(store.RetCInvalidKey, "key is not valid utf-8", "", nil)
	}

	path := s.entryPath(key)
	if err := s.fs.Remove(path); err != nil {
		if isAbsent(err) {
			s.debugf("no data to remove for key: %s", path)
			return nil
		}
		return s.fail(store.RetCIOError, "could not remove file", path, err)
	}
	return nil
}

// --------------------------------------------------------------------------
// File Operations
// --------------------------------------------------------------------------

// readEntry reads and decodes the entry file at path. The boolean return
// value is false if the file does not exist or is not a valid record.
func (s *Store) readEntry(path string) (record.Record, bool, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if isAbsent(err) {
			s.debugf("no data found for key: %s", path)
			return record.Record{}, false, nil
		}
		return record.Record{}, false, s.fail(store.RetCIOError, "could not read file", path, err)
	}

	rec, err := record.Decode(data)
	if err != nil {
		s.warnf("skipping corrupt record %s: %v", path, err)
		return record.Record{}, false, nil
	}
	return rec, true, nil
}

// removeStaleTempFiles deletes temp files older than staleTmpAge, left behind
// by writes that never reached the rename. Younger temp files may belong to a
// write in progress and are kept. Failures are logged as warnings only, a
// leftover temp file is never listed.
func (s *Store) removeStaleTempFiles() {
	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		s.warnf("could not scan %s for temp files: %v", s.dir, err)
		return
	}

	cutoff := time.Now().Add(-staleTmpAge)
	for _, info := range infos {
		if info.IsDir() || !strings.HasPrefix(info.Name(), tmpPrefix) || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.dir, info.Name())
		if err := s.fs.Remove(path); err != nil && !isAbsent(err) {
			s.warnf("could not remove stale temp file %s: %v", path, err)
			continue
		}
		s.infof("removed stale temp file %s", path)
	}
}

// writeFile writes data to a temp file in the storage directory and renames
// it to path, so readers see either the old or the new content.
func (s *Store) writeFile(path string, data []byte) error {
	tmp, err := afero.TempFile(s.fs, s.dir, tmpPattern)
	if err != nil {
		return s.fail(store.RetCIOError, "could not write file", path, err)
	}
	tmpName := tmp.Name()

	// abort removes the temp file, the entry at path is left untouched
	abort := func(cause error) error {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return s.fail(store.RetCIOError, "could not write file", path, cause)
	}

	if _, err := tmp.Write(data); err != nil {
		return abort(err)
	}
	if s.cfg.SyncWrites {
		if err := tmp.Sync(); err != nil {
			return abort(err)
		}
	}
	if err := tmp.Close(); err != nil {
		return abort(err)
	}
	if err := s.fs.Chmod(tmpName, s.cfg.FileMode); err != nil {
		return abort(err)
	}
	if err := s.fs.Rename(tmpName, path); err != nil {
		return abort(err)
	}
	return nil
}
