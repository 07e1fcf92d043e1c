package storage

import (
	"errors"

	"github.com/tauraamui/xerror"
)

const (
	KindNoMedium     = xerror.Kind("no_medium")
	KindNoMountRoot  = xerror.Kind("no_mount_root")
	KindOpen         = xerror.Kind("open_error")
	KindPartialWrite = xerror.Kind("partial_write")
	KindSync         = xerror.Kind("sync_error")
	KindNotFound     = xerror.Kind("not_found")
)

var (
	ErrNoMedium     = errors.New("no storage medium present")
	ErrNoMountRoot  = errors.New("no usable mount root")
	ErrOpen         = errors.New("unable to open file for writing")
	ErrPartialWrite = errors.New("file write incomplete")
	ErrSync         = errors.New("unable to confirm file reached storage")
	ErrNotFound     = errors.New("file not found")
)
