package process

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/stretchr/testify/suite"
	"github.com/tacusci/logging/v2"
	"github.com/tauraamui/stilldaemon/pkg/capture"
)

type countingCapturer struct {
	mu      sync.Mutex
	calls   int
	origins []string
	fail    bool
}

func (c *countingCapturer) Trigger(_ context.Context, origin string) (capture.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.origins = append(c.origins, origin)
	if c.fail {
		return capture.Record{}, false
	}
	return capture.Record{Name: "IMG_000000.jpg"}, true
}

func (c *countingCapturer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type fixedWindow bool

func (w fixedWindow) IsOn(time.Time) bool { return bool(w) }

type ScheduledCaptureTestSuite struct {
	suite.Suite
	is  *is.I
	now time.Time
}

func (suite *ScheduledCaptureTestSuite) SetupSuite() {
	logging.CurrentLoggingLevel = logging.SilentLevel
	suite.is = is.New(suite.T())
}

func (suite *ScheduledCaptureTestSuite) TearDownSuite() {
	logging.CurrentLoggingLevel = logging.WarnLevel
	TimeNow = time.Now
}

func (suite *ScheduledCaptureTestSuite) SetupTest() {
	suite.now = time.Date(2021, 3, 11, 14, 0, 0, 0, time.UTC)
	TimeNow = func() time.Time { return suite.now }
}

func TestScheduledCaptureTestSuite(t *testing.T) {
	suite.Run(t, &ScheduledCaptureTestSuite{})
}

func (suite *ScheduledCaptureTestSuite) TestCapturesOnceWithinTheHour() {
	c := &countingCapturer{}
	settings := ScheduleSettings{MinuteOfHour: 0}

	last := scheduledCapture(context.TODO(), c, settings, nil)
	suite.is.True(last != nil)

	suite.now = suite.now.Add(30 * time.Second)
	scheduledCapture(context.TODO(), c, settings, last)

	suite.is.Equal(c.count(), 1)
	suite.is.Equal(c.origins[0], "schedule")
}

func (suite *ScheduledCaptureTestSuite) TestSkipsOffMinute() {
	c := &countingCapturer{}
	suite.now = suite.now.Add(5 * time.Minute)

	last := scheduledCapture(context.TODO(), c, ScheduleSettings{MinuteOfHour: 0}, nil)

	suite.is.True(last == nil)
	suite.is.Equal(c.count(), 0)
}

func (suite *ScheduledCaptureTestSuite) TestCapturesAgainNextHour() {
	c := &countingCapturer{}
	settings := ScheduleSettings{MinuteOfHour: 0}

	last := scheduledCapture(context.TODO(), c, settings, nil)
	suite.now = suite.now.Add(time.Hour)
	last = scheduledCapture(context.TODO(), c, settings, last)

	suite.is.Equal(c.count(), 2)
	suite.is.Equal(last.hour, 15)
}

func (suite *ScheduledCaptureTestSuite) TestSameHourNextDayIsNotSkipped() {
	c := &countingCapturer{}
	settings := ScheduleSettings{MinuteOfHour: 0}

	last := scheduledCapture(context.TODO(), c, settings, nil)
	suite.now = suite.now.Add(24 * time.Hour)
	scheduledCapture(context.TODO(), c, settings, last)

	suite.is.Equal(c.count(), 2)
}

func (suite *ScheduledCaptureTestSuite) TestFailedCaptureRetriesOnNextPoll() {
	c := &countingCapturer{fail: true}
	settings := ScheduleSettings{MinuteOfHour: 0}

	last := scheduledCapture(context.TODO(), c, settings, nil)
	suite.is.True(last == nil)

	c.fail = false
	suite.now = suite.now.Add(30 * time.Second)
	last = scheduledCapture(context.TODO(), c, settings, last)

	suite.is.True(last != nil)
	suite.is.Equal(c.count(), 2)
}

func (suite *ScheduledCaptureTestSuite) TestOutsideWindowSkips() {
	c := &countingCapturer{}

	last := scheduledCapture(context.TODO(), c, ScheduleSettings{MinuteOfHour: 0, Window: fixedWindow(false)}, nil)

	suite.is.True(last == nil)
	suite.is.Equal(c.count(), 0)
}

func (suite *ScheduledCaptureTestSuite) TestProcessCapturesAndStops() {
	c := &countingCapturer{}
	proc := New(Settings{
		WaitForShutdownMsg: "Stopping test scheduled capture",
		Process: ScheduledCapture(c, ScheduleSettings{
			MinuteOfHour: 0, PollInterval: time.Millisecond, Window: fixedWindow(true),
		}),
	})
	proc.Start()

	timeout := time.After(3 * time.Second)
	for c.count() == 0 {
		select {
		case <-timeout:
			suite.FailNow("scheduled capture never ran")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	// polls within the same hour must not capture again
	time.Sleep(20 * time.Millisecond)
	proc.Stop()
	proc.Wait()

	suite.is.Equal(c.count(), 1)
}
