package relay

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/pkg/sftp"
)

var (
	// errRemoteMissing marks a sample that is not present in the workdir.
	errRemoteMissing = errors.New("not found on target")
	errNotRegular    = errors.New("not a regular file")
)

// itemError is a failure confined to one remote file. The session is still
// usable and the batch moves on to the next sample.
type itemError struct {
	err error
}

func (e *itemError) Error() string { return e.err.Error() }
func (e *itemError) Unwrap() error { return e.err }

// remoteItemErr wraps err as an itemError when the SFTP server answered with
// a status for this file. Anything else, such as a dropped connection, is
// returned unchanged.
func remoteItemErr(err error, format string, args ...any) error {
	var status *sftp.StatusError
	if errors.As(err, &status) || errors.Is(err, os.ErrPermission) || errors.Is(err, errNotRegular) {
		return &itemError{errors.Wrapf(err, format, args...)}
	}
	return errors.Wrapf(err, format, args...)
}

// fetchFile copies remote to local. The bytes land in a temporary file next
// to local which is renamed only after a complete copy.
func fetchFile(files *sftp.Client, remote, local string) (int64, error) {
	fi, err := files.Stat(remote)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, errRemoteMissing
		}
		return 0, remoteItemErr(err, "stat %s", remote)
	}
	if !fi.Mode().IsRegular() {
		return 0, remoteItemErr(errNotRegular, "%s", remote)
	}

	src, err := files.Open(remote)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, errRemoteMissing
		}
		return 0, remoteItemErr(err, "open %s", remote)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(local), "."+filepath.Base(local)+".*.part")
	if err != nil {
		return 0, errors.Wrap(err, "create temp file")
	}
	tmpName := tmp.Name()
	done := false
	defer func() {
		if !done {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	n, err := src.WriteTo(tmp)
	if err != nil {
		// local write failures come back as *os.PathError and stay fatal
		return n, remoteItemErr(err, "copy %s", remote)
	}
	if err := tmp.Close(); err != nil {
		return n, errors.Wrapf(err, "close %s", tmpName)
	}
	if err := os.Rename(tmpName, local); err != nil {
		_ = os.Remove(tmpName)
		done = true
		return n, errors.Wrapf(err, "rename to %s", local)
	}
	done = true
	return n, nil
}
