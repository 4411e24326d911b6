package fstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/keep/lib/record"
	"github.com/ValentinKolb/keep/lib/store"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/afero"
)

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// captureLogger records all messages, it implements logger.ILogger
type captureLogger struct {
	mu       sync.Mutex
	messages map[string][]string
}

func newCaptureLogger() *captureLogger {
	return &captureLogger{messages: make(map[string][]string)}
}

func (l *captureLogger) add(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages[level] = append(l.messages[level], fmt.Sprintf(format, args...))
}

func (l *captureLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages[level])
}

func (l *captureLogger) SetLevel(logger.LogLevel)                    {}
func (l *captureLogger) Debugf(format string, args ...interface{})   { l.add("debug", format, args...) }
func (l *captureLogger) Infof(format string, args ...interface{})    { l.add("info", format, args...) }
func (l *captureLogger) Warningf(format string, args ...interface{}) { l.add("warn", format, args...) }
func (l *captureLogger) Errorf(format string, args ...interface{})   { l.add("error", format, args...) }
func (l *captureLogger) Panicf(format string, args ...interface{})   { l.add("panic", format, args...) }

// unreadableFs fails to open entry files, everything else is passed to the
// wrapped filesystem
type unreadableFs struct {
	afero.Fs
}

func (fs unreadableFs) Open(name string) (afero.File, error) {
	if record.IsIdentifier(filepath.Base(name)) {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return fs.Fs.Open(name)
}

func (fs unreadableFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if record.IsIdentifier(filepath.Base(name)) && flag&(os.O_WRONLY|os.O_RDWR) == 0 {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return fs.Fs.OpenFile(name, flag, perm)
}

// chdir changes the working directory for the duration of the test
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Errorf("Failed to restore working directory: %v", err)
		}
	})
}

// writeRaw places a file with the given content into the storage directory
func writeRaw(t *testing.T, fs afero.Fs, dir, name, content string) {
	t.Helper()
	if err := afero.WriteFile(fs, filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

// --------------------------------------------------------------------------
// Tests
// --------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Dir != filepath.Join(".keep", "storage") {
		t.Errorf("Expected default dir .keep/storage, got %s", cfg.Dir)
	}
	if cfg.Logger == nil || cfg.Fs == nil || cfg.Concurrency < 1 {
		t.Errorf("Expected all defaults to be set, got %+v", cfg)
	}

	if dir := DefaultConfig("cache").Dir; dir != filepath.Join(".keep", "cache") {
		t.Errorf("Expected dir .keep/cache, got %s", dir)
	}

	// configs are never shared
	a, b := DefaultConfig(), DefaultConfig()
	a.Dir = "changed"
	if b.Dir == "changed" {
		t.Errorf("Expected independent default configs")
	}
}

func TestResolveDir(t *testing.T) {
	testCases := []struct {
		dir      string
		cwd      string
		expected string
	}{
		{"/var/lib/keep", "/home/user", "/var/lib/keep"},
		{"/var/lib/keep/../keep/", "/home/user", "/var/lib/keep"},
		{".keep/storage", "/home/user", "/home/user/.keep/storage"},
		{"data", "/srv", "/srv/data"},
		{"../data", "/srv/app", "/srv/data"},
	}

	for _, tc := range testCases {
		t.Run(tc.dir, func(t *testing.T) {
			if got := resolveDir(tc.dir, tc.cwd); got != tc.expected {
				t.Errorf("resolveDir(%q, %q) = %q, expected %q", tc.dir, tc.cwd, got, tc.expected)
			}
		})
	}
}

func TestRelativeDirIsResolvedOnce(t *testing.T) {
	base := t.TempDir()
	chdir(t, base)

	s := openTestStore(t, Config{Dir: filepath.Join("relative", "storage")})
	dir := s.Dir()
	if !filepath.IsAbs(dir) || !strings.HasSuffix(dir, filepath.Join("relative", "storage")) {
		t.Fatalf("Expected absolute dir ending with relative/storage, got %s", dir)
	}
	if err := s.SetItem("key", "value"); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}

	// moving away must not affect the existing store
	chdir(t, t.TempDir())

	if s.Dir() != dir {
		t.Errorf("Expected dir %s to be unchanged, got %s", dir, s.Dir())
	}
	value, loaded, err := s.GetItem("key")
	if err != nil || !loaded || value != "value" {
		t.Errorf("Expected value after chdir, got %v (loaded=%v, err=%v)", value, loaded, err)
	}
	if err := s.SetItem("other", 1); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}

	path := filepath.Join(base, "relative", "storage", record.HashKey("other"))
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected entry file in the original directory: %v", err)
	}
}

func TestInit(t *testing.T) {
	t.Run("CreatesDirectory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "a", "b", "storage")
		s := NewFileStore(Config{Dir: dir})

		if err := s.Init(); err != nil {
			t.Fatalf("Init failed: %v", err)
		}
		if err := s.Init(); err != nil {
			t.Fatalf("Second Init failed: %v", err)
		}

		ok, err := afero.DirExists(afero.NewOsFs(), dir)
		if err != nil || !ok {
			t.Errorf("Expected storage directory %s to exist", dir)
		}
	})

	t.Run("KeepsExistingData", func(t *testing.T) {
		dir := t.TempDir()
		s1 := openTestStore(t, Config{Dir: dir})
		if err := s1.SetItem("persistent", "value"); err != nil {
			t.Fatalf("SetItem failed: %v", err)
		}

		// a second store on the same directory, as after a restart
		s2 := openTestStore(t, Config{Dir: dir})
		value, loaded, err := s2.GetItem("persistent")
		if err != nil || !loaded || value != "value" {
			t.Errorf("Expected persisted value, got %v (loaded=%v, err=%v)", value, loaded, err)
		}
	})

	t.Run("PathIsFile", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeRaw(t, fs, "/", "occupied", "not a directory")

		log := newCaptureLogger()
		s := NewFileStore(Config{Dir: "/occupied", Fs: fs, Logger: log})
		if err := s.Init(); !store.IsCode(err, store.RetCInitError) {
			t.Errorf("Expected InitError, got %v", err)
		}
		if log.count("error") == 0 {
			t.Errorf("Expected the init failure to be logged")
		}
	})

	t.Run("ReadOnly", func(t *testing.T) {
		fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
		_, err := Open(Config{Dir: "/keep/storage", Fs: fs, NoLog: true})
		if !store.IsCode(err, store.RetCInitError) {
			t.Errorf("Expected InitError, got %v", err)
		}
	})
}

func TestOnDiskFormat(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := openTestStore(t, Config{Dir: "/data", Fs: fs, FileMode: 0o600})

	if err := s.SetItem("key1", "value1"); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}

	path := filepath.Join("/data", record.HashKey("key1"))
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("Expected entry file %s: %v", path, err)
	}
	if expected := `{"key":"key1","value":"value1"}`; string(content) != expected {
		t.Errorf("Expected content %s, got %s", expected, content)
	}

	info, err := fs.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("Expected file mode 0600, got %v", info.Mode().Perm())
	}

	// no temp files are left behind
	infos, err := afero.ReadDir(fs, "/data")
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(infos) != 1 {
		t.Errorf("Expected exactly one file, got %d", len(infos))
	}
}

func TestCorruptFilesAreSkipped(t *testing.T) {
	fs := afero.NewMemMapFs()
	log := newCaptureLogger()
	s := openTestStore(t, Config{Dir: "/data", Fs: fs, Logger: log})

	if err := s.SetItem("valid", "value"); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}

	foreign, _ := record.Encode("other", "value")
	writeRaw(t, fs, "/data", record.HashKey("garbage"), "{not json")
	writeRaw(t, fs, "/data", record.HashKey("no-value"), `{"key":"no-value"}`)
	writeRaw(t, fs, "/data", record.HashKey("foreign"), string(foreign))
	writeRaw(t, fs, "/data", ".tmp-12345", `{"key":"tmp","value":1}`)
	writeRaw(t, fs, "/data", "README", "hello")
	if err := fs.MkdirAll(filepath.Join("/data", record.HashKey("dir")), 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 1 || keys[0] != "valid" {
		t.Errorf("Expected only the valid key, got %v", keys)
	}

	for _, key := range []string{"garbage", "no-value", "foreign"} {
		_, loaded, err := s.GetItem(key)
		if err != nil || loaded {
			t.Errorf("Expected %q to be absent, got loaded=%v err=%v", key, loaded, err)
		}
	}

	if log.count("warn") == 0 {
		t.Errorf("Expected corrupt records to be logged as warnings")
	}
	if log.count("error") != 0 {
		t.Errorf("Expected no errors, got %v", log.messages["error"])
	}

	// clearing removes the valid entries only
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if exists, _ := afero.Exists(fs, filepath.Join("/data", "README")); !exists {
		t.Errorf("Expected unrelated files to survive Clear")
	}
}

func TestMissingDirectory(t *testing.T) {
	log := newCaptureLogger()
	s := NewFileStore(Config{Dir: "/never/created", Fs: afero.NewMemMapFs(), Logger: log})

	data, err := s.Data()
	if err != nil || len(data) != 0 {
		t.Errorf("Expected empty data, got %v (err=%v)", data, err)
	}
	if _, loaded, err := s.GetItem("key"); err != nil || loaded {
		t.Errorf("Expected absent key, got loaded=%v err=%v", loaded, err)
	}
	if err := s.RemoveItem("key"); err != nil {
		t.Errorf("Expected RemoveItem to succeed, got %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Errorf("Expected Clear to succeed, got %v", err)
	}
	if log.count("warn") == 0 {
		t.Errorf("Expected the missing directory to be logged")
	}
}

func TestWriteFailuresPropagate(t *testing.T) {
	base := afero.NewMemMapFs()
	s := openTestStore(t, Config{Dir: "/data", Fs: base})
	for i := 0; i < 5; i++ {
		if err := s.SetItem(fmt.Sprintf("key-%d", i), i); err != nil {
			t.Fatalf("SetItem failed: %v", err)
		}
	}

	log := newCaptureLogger()
	ro := openTestStore(t, Config{Dir: "/data", Fs: afero.NewReadOnlyFs(base), Logger: log})

	if err := ro.SetItem("key-new", "value"); !store.IsCode(err, store.RetCIOError) {
		t.Errorf("Expected IOError for SetItem, got %v", err)
	}
	if err := ro.RemoveItem("key-0"); !store.IsCode(err, store.RetCIOError) {
		t.Errorf("Expected IOError for RemoveItem, got %v", err)
	}

	err := ro.Clear()
	if !store.IsCode(err, store.RetCIOError) {
		t.Fatalf("Expected IOError for Clear, got %v", err)
	}
	if !strings.Contains(err.Error(), record.HashKey("key-4")) {
		t.Errorf("Expected every failed removal in the error, got %v", err)
	}

	if log.count("error") < 7 {
		t.Errorf("Expected every failure to be logged, got %d errors", log.count("error"))
	}

	// reads still work and nothing was lost
	n, err := ro.Length()
	if err != nil || n != 5 {
		t.Errorf("Expected 5 entries, got %d (err=%v)", n, err)
	}
}

func TestReadFailuresPropagate(t *testing.T) {
	t.Run("DirectoryIsFile", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeRaw(t, fs, "/", "occupied", "not a directory")

		log := newCaptureLogger()
		s := NewFileStore(Config{Dir: "/occupied", Fs: fs, Logger: log})

		if _, err := s.Data(); !store.IsCode(err, store.RetCIOError) {
			t.Errorf("Expected IOError for Data, got %v", err)
		}
		if _, err := s.Keys(); !store.IsCode(err, store.RetCIOError) {
			t.Errorf("Expected IOError for Keys, got %v", err)
		}
		if _, err := s.Length(); !store.IsCode(err, store.RetCIOError) {
			t.Errorf("Expected IOError for Length, got %v", err)
		}
		if log.count("error") < 3 {
			t.Errorf("Expected every failure to be logged, got %d errors", log.count("error"))
		}
	})

	t.Run("UnreadableEntry", func(t *testing.T) {
		base := afero.NewMemMapFs()
		s := openTestStore(t, Config{Dir: "/data", Fs: base})
		if err := s.SetItem("key", "value"); err != nil {
			t.Fatalf("SetItem failed: %v", err)
		}

		log := newCaptureLogger()
		broken := openTestStore(t, Config{Dir: "/data", Fs: unreadableFs{base}, Logger: log})

		value, loaded, err := broken.GetItem("key")
		if !store.IsCode(err, store.RetCIOError) || loaded || value != nil {
			t.Errorf("Expected IOError for GetItem, got %v (loaded=%v, err=%v)", value, loaded, err)
		}
		if _, err := broken.Data(); !store.IsCode(err, store.RetCIOError) {
			t.Errorf("Expected IOError for Data, got %v", err)
		}
		if log.count("error") < 2 {
			t.Errorf("Expected every failure to be logged, got %d errors", log.count("error"))
		}
	})
}

func TestStaleTempFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := openTestStore(t, Config{Dir: "/data", Fs: fs})
	if err := s.SetItem("key", "value"); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}

	writeRaw(t, fs, "/data", ".tmp-stale", `{"key":"stale","value":1}`)
	writeRaw(t, fs, "/data", ".tmp-fresh", `{"key":"fresh","value":1}`)
	old := time.Now().Add(-2 * staleTmpAge)
	if err := fs.Chtimes(filepath.Join("/data", ".tmp-stale"), old, old); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	if err := s.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if exists, _ := afero.Exists(fs, filepath.Join("/data", ".tmp-stale")); exists {
		t.Errorf("Expected the stale temp file to be removed")
	}
	if exists, _ := afero.Exists(fs, filepath.Join("/data", ".tmp-fresh")); !exists {
		t.Errorf("Expected a recent temp file to be kept")
	}
	if _, loaded, err := s.GetItem("key"); err != nil || !loaded {
		t.Errorf("Expected entries to survive, got loaded=%v err=%v", loaded, err)
	}
}

func TestLogger(t *testing.T) {
	if s := NewFileStore(Config{Dir: "/data", Fs: afero.NewMemMapFs()}); s.log != Logger {
		t.Errorf("Expected the package logger when no logger is configured")
	}

	log := newCaptureLogger()
	if s := NewFileStore(Config{Dir: "/data", Fs: afero.NewMemMapFs(), Logger: log}); s.log != log {
		t.Errorf("Expected the configured logger")
	}

	fs := afero.NewMemMapFs()
	writeRaw(t, fs, "/", "occupied", "file")

	s := NewFileStore(Config{Dir: "/occupied", Fs: fs, Logger: log, NoLog: true})
	if s.log != nil {
		t.Errorf("Expected logging to be disabled")
	}
	if err := s.Init(); err == nil {
		t.Errorf("Expected Init to fail")
	}
	if log.count("error") != 0 {
		t.Errorf("Expected nothing to be logged, got %v", log.messages["error"])
	}
}

func TestMetrics(t *testing.T) {
	dir := "/metrics-test"
	s := openTestStore(t, Config{Dir: dir, Fs: afero.NewMemMapFs()})

	if err := s.SetItem("key", "value"); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}
	_ = s.SetItem("bad", make(chan int))

	calls := metrics.GetOrCreateCounter(fmt.Sprintf(`keep_operations_total{dir=%q,op=%q}`, dir, opSet))
	if calls.Get() < 2 {
		t.Errorf("Expected at least 2 set calls, got %d", calls.Get())
	}
	errs := metrics.GetOrCreateCounter(fmt.Sprintf(`keep_operation_errors_total{dir=%q,op=%q}`, dir, opSet))
	if errs.Get() < 1 {
		t.Errorf("Expected at least 1 set error, got %d", errs.Get())
	}
}
