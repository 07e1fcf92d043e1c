package config

import (
	"github.com/tauraamui/stilldaemon/pkg/configdef"
	"github.com/tauraamui/stilldaemon/pkg/storage"
)

type defaultSettingKey uint

const (
	BACKEND defaultSettingKey = iota
	DEVICE
	MAXRETRIES
	RETRYDELAYMS
	GUARDTIMEOUTMS
	STREAMGUARDTIMEOUTMS
	JPEGQUALITY
	PRELIGHTDELAYMS
	POSTLIGHTDELAYMS
	VOLUMEPATH
	MOUNTCANDIDATES
	MAXFILESTOKEEP
	ADDRESS
	STREAMINTERVALMS
	CAPTUREBURST
	CAPTUREREFILLSECONDS
	POLLSECONDS
	TIMESOURCE
)

var defaultSettings = map[defaultSettingKey]interface{}{
	BACKEND:              "opencv",
	DEVICE:               "/dev/video0",
	MAXRETRIES:           3,
	RETRYDELAYMS:         100,
	GUARDTIMEOUTMS:       5000,
	STREAMGUARDTIMEOUTMS: 100,
	JPEGQUALITY:          80,
	PRELIGHTDELAYMS:      150,
	POSTLIGHTDELAYMS:     50,
	VOLUMEPATH:           "/mnt/sdcard",
	MOUNTCANDIDATES:      storage.DefaultCandidates,
	MAXFILESTOKEEP:       100,
	ADDRESS:              ":8080",
	STREAMINTERVALMS:     100,
	CAPTUREBURST:         1,
	CAPTUREREFILLSECONDS: 60,
	POLLSECONDS:          30,
	TIMESOURCE:           configdef.TimeSourceTimedated,
}

func defaultValues() configdef.Values {
	values := configdef.Values{}
	values.Camera.RetryDelayMS = defaultSettings[RETRYDELAYMS].(int)
	values.Camera.StreamGuardTimeoutMS = defaultSettings[STREAMGUARDTIMEOUTMS].(int)
	values.Camera.PreLightDelayMS = defaultSettings[PRELIGHTDELAYMS].(int)
	values.Camera.PostLightDelayMS = defaultSettings[POSTLIGHTDELAYMS].(int)
	values.Storage.MaxFilesToKeep = defaultSettings[MAXFILESTOKEEP].(int)
	values.Schedule.Enabled = true
	applyDefaults(&values)
	return values
}

// applyDefaults fills in zero values which have no meaning of their
// own. Delays, the stream guard timeout and retention stay zero when left
// out since zero switches them off.
func applyDefaults(values *configdef.Values) {
	setString(&values.TimeSource, TIMESOURCE)

	cam := &values.Camera
	setString(&cam.Backend, BACKEND)
	setString(&cam.Device, DEVICE)
	setInt(&cam.MaxRetries, MAXRETRIES)
	setInt(&cam.GuardTimeoutMS, GUARDTIMEOUTMS)
	setInt(&cam.JPEGQuality, JPEGQUALITY)

	st := &values.Storage
	setString(&st.VolumePath, VOLUMEPATH)
	if len(st.MountCandidates) == 0 {
		st.MountCandidates = append([]string{}, defaultSettings[MOUNTCANDIDATES].([]string)...)
	}

	h := &values.HTTP
	setString(&h.Address, ADDRESS)
	setInt(&h.StreamIntervalMS, STREAMINTERVALMS)
	setInt(&h.CaptureBurst, CAPTUREBURST)
	setInt(&h.CaptureRefillSeconds, CAPTUREREFILLSECONDS)

	setInt(&values.Schedule.PollSeconds, POLLSECONDS)
}

func setString(field *string, key defaultSettingKey) {
	if len(*field) == 0 {
		*field = defaultSettings[key].(string)
	}
}

func setInt(field *int, key defaultSettingKey) {
	if *field == 0 {
		*field = defaultSettings[key].(int)
	}
}
