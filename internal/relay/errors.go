package relay

import "github.com/pkg/errors"

var (
	ErrJumperConnect     = errors.New("jumper connection failed")
	ErrTargetConnect     = errors.New("target connection failed")
	ErrNothingDownloaded = errors.New("none of the requested samples were found on the target")
	ErrCollectFailed     = errors.New("remote collect command failed")
)
