package configdef

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/tauraamui/stilldaemon/pkg/config/schedule"
	"gopkg.in/dealancer/validate.v2"
)

const (
	TimeSourceTimedated = "timedated"
	TimeSourceTrusted   = "trusted"
	TimeSourceUntrusted = "untrusted"
)

type Camera struct {
	Backend                 string `json:"backend" validate:"one_of=opencv,mock"`
	Device                  string `json:"device" validate:"empty=false"`
	MaxRetries              int    `json:"max_retries" validate:"gte=1 & lte=10"`
	RetryDelayMS            int    `json:"retry_delay_ms" validate:"gte=0 & lte=5000"`
	GuardTimeoutMS          int    `json:"guard_timeout_ms" validate:"gte=0 & lte=60000"`
	StreamGuardTimeoutMS    int    `json:"stream_guard_timeout_ms" validate:"gte=0 & lte=60000"`
	TranscodeThresholdBytes int    `json:"transcode_threshold_bytes" validate:"gte=0"`
	JPEGQuality             int    `json:"jpeg_quality" validate:"gte=1 & lte=100"`
	FlashPin                string `json:"flash_pin"`
	PreLightDelayMS         int    `json:"pre_light_delay_ms" validate:"gte=0 & lte=5000"`
	PostLightDelayMS        int    `json:"post_light_delay_ms" validate:"gte=0 & lte=5000"`
	Width                   int    `json:"width" validate:"gte=0"`
	Height                  int    `json:"height" validate:"gte=0"`
}

type Storage struct {
	VolumePath      string   `json:"volume_path" validate:"empty=false"`
	CardDevice      string   `json:"card_device"`
	MountCandidates []string `json:"mount_candidates" validate:"empty=false"`
	MaxFilesToKeep  int      `json:"max_files_to_keep" validate:"gte=0"`
}

type HTTP struct {
	Address              string `json:"address" validate:"empty=false"`
	StreamIntervalMS     int    `json:"stream_interval_ms" validate:"gte=1"`
	CaptureBurst         int    `json:"capture_burst" validate:"gte=1"`
	CaptureRefillSeconds int    `json:"capture_refill_seconds" validate:"gte=1"`
}

type Schedule struct {
	Enabled      bool          `json:"enabled"`
	MinuteOfHour int           `json:"minute_of_hour" validate:"gte=0 & lte=59"`
	PollSeconds  int           `json:"poll_seconds" validate:"gte=1 & lte=60"`
	Window       schedule.Week `json:"window"`
}

type Values struct {
	Debug      bool     `json:"debug"`
	TimeSource string   `json:"time_source" validate:"one_of=timedated,trusted,untrusted"`
	DBus       bool     `json:"dbus"`
	Camera     Camera   `json:"camera"`
	Storage    Storage  `json:"storage"`
	HTTP       HTTP     `json:"http"`
	Schedule   Schedule `json:"schedule"`
}

// RunValidate checks the struct tag rules and then the rules which span
// more than one field.
func (v Values) RunValidate() error {
	if err := validate.Validate(&v); err != nil {
		return err
	}
	return v.Validate()
}

func (v Values) Validate() error {
	const validationErrorHeader = "validation failed: %w"
	if vol := filepath.Clean(v.Storage.VolumePath); !filepath.IsAbs(vol) || vol == "/" {
		return fmt.Errorf(validationErrorHeader, fmt.Errorf("volume path %q must be an absolute path below /", v.Storage.VolumePath))
	}
	for _, c := range v.Storage.MountCandidates {
		if !filepath.IsAbs(c) {
			return fmt.Errorf(validationErrorHeader, fmt.Errorf("mount candidate %q must be an absolute path", c))
		}
	}
	if hasDupCandidates(v.Storage.MountCandidates) {
		return fmt.Errorf(validationErrorHeader, errors.New("mount candidates must be unique"))
	}
	return nil
}

func hasDupCandidates(candidates []string) bool {
	seen := map[string]bool{}
	for _, c := range candidates {
		clean := filepath.Clean(c)
		if seen[clean] {
			return true
		}
		seen[clean] = true
	}
	return false
}
