package stilld

import (
	"sync"
	"time"

	"github.com/tauraamui/stilldaemon/pkg/config/schedule"
	"github.com/tauraamui/stilldaemon/pkg/log"
	"github.com/tauraamui/stilldaemon/pkg/stilld/process"
	"github.com/tauraamui/stilldaemon/pkg/web"
)

func (s *server) SetupProcesses() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subsystem == nil {
		return
	}

	h := s.config.HTTP
	s.web = web.New(s.subsystem, web.Settings{
		Address:        h.Address,
		StreamInterval: millis(h.StreamIntervalMS),
		CaptureBurst:   int64(h.CaptureBurst),
		CaptureRefill:  time.Duration(h.CaptureRefillSeconds) * time.Second,
	})
	s.processes = append(s.processes, process.New(process.Settings{
		WaitForShutdownMsg: "Stopping HTTP server...",
		Process:            process.Serve(s.web),
	}).Setup())

	sched := s.config.Schedule
	if sched.Enabled {
		s.processes = append(s.processes, process.New(process.Settings{
			WaitForShutdownMsg: "Stopping scheduled captures...",
			Process: process.ScheduledCapture(s.subsystem, process.ScheduleSettings{
				MinuteOfHour: sched.MinuteOfHour,
				PollInterval: time.Duration(sched.PollSeconds) * time.Second,
				Window:       schedule.NewSchedule(sched.Window),
			}),
		}).Setup())
	}

	if s.config.DBus {
		svc, err := startDBusAPI(s.subsystem)
		if err != nil {
			log.Error("D-Bus trigger service unavailable: %v", err)
			return
		}
		s.dbus = svc
	}
}

func (s *server) RunProcesses() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, proc := range s.processes {
		proc.Start()
	}
}

func (s *server) shutdownProcesses() {
	s.mu.Lock()
	procs := s.processes
	s.processes = nil
	s.mu.Unlock()

	wg := sync.WaitGroup{}
	wg.Add(len(procs))
	for _, proc := range procs {
		go func(wg *sync.WaitGroup, proc process.Process) {
			proc.Stop()
			proc.Wait()
			wg.Done()
		}(&wg, proc)
	}
	wg.Wait()
}
