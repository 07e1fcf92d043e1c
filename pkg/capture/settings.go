package capture

import "time"

type Settings struct {
	MaxRetries         int
	RetryDelay         time.Duration
	GuardTimeout       time.Duration
	StreamGuardTimeout time.Duration
	PreLightDelay      time.Duration
	PostLightDelay     time.Duration
	TranscodeThreshold int
	JPEGQuality        int
	MaxFilesToKeep     int
}

// WorstCaseLatency is how long a capture can block before it starts
// writing. Storage write latency is not included.
func (s Settings) WorstCaseLatency() time.Duration {
	retries := s.MaxRetries
	if retries < 1 {
		retries = 1
	}
	return s.GuardTimeout + s.PreLightDelay + time.Duration(retries)*s.RetryDelay + s.PostLightDelay
}
