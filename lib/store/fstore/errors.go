package fstore

import (
	"errors"
	"io/fs"

	"github.com/ValentinKolb/keep/lib/store"
)

// --------------------------------------------------------------------------
// Error Policy
// --------------------------------------------------------------------------

/*
	Every failure is classified exactly once:

	- absent: the file (or the storage directory) does not exist. Not an error,
	  logged at debug level.
	- corrupt: the file exists but is not a record of the key it is named after.
	  Treated like absent, logged as a warning.
	- everything else: logged as an error and returned as *store.Error. There is
	  no switch to swallow these, every operation propagates them.
*/

// isAbsent reports whether err means that a file or directory does not exist.
func isAbsent(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// fail creates a *store.Error, writes it to the log and returns it.
func (s *Store) fail(code store.RetCode, msg, path string, cause error) error {
	err := store.WrapError(code, msg, path, cause)
	s.errorf("%v", err)
	return err
}

func (s *Store) debugf(format string, args ...interface{}) {
	if s.log != nil {
		s.log.Debugf(format, args...)
	}
}

func (s *Store) infof(format string, args ...interface{}) {
	if s.log != nil {
		s.log.Infof(format, args...)
	}
}

func (s *Store) warnf(format string, args ...interface{}) {
	if s.log != nil {
		s.log.Warningf(format, args...)
	}
}

func (s *Store) errorf(format string, args ...interface{}) {
	if s.log != nil {
		s.log.Errorf(format, args...)
	}
}
