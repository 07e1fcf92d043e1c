package stilld

import (
	"github.com/spf13/afero"
	"github.com/tauraamui/stilldaemon/pkg/dbusapi"
)

type Closer = closer

func OverloadFs(overload afero.Fs) func() {
	fsRef := fs
	fs = overload
	return func() { fs = fsRef }
}

func OverloadStartDBusAPI(overload func(dbusapi.Capturer) (Closer, error)) func() {
	ref := startDBusAPI
	startDBusAPI = overload
	return func() { startDBusAPI = ref }
}
