// Package dbusapi exports capture triggers on the system bus.
package dbusapi

import (
	"context"
	"errors"

	"github.com/godbus/dbus"
	"github.com/godbus/dbus/introspect"
	"github.com/tauraamui/stilldaemon/pkg/capture"
	"github.com/tauraamui/stilldaemon/pkg/log"
)

const (
	dbusName = "org.tacusci.stilldaemon"
	dbusPath = "/org/tacusci/stilldaemon"
)

type Capturer interface {
	Trigger(ctx context.Context, origin string) (capture.Record, bool)
	Status() string
}

type Service struct {
	conn *dbus.Conn
}

// Start claims the bus name and exports the capture methods on it.
func Start(c Capturer) (*Service, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, err
	}
	reply, err := conn.RequestName(dbusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return nil, err
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return nil, errors.New("name already taken")
	}

	s := &service{capturer: c}
	if err := conn.Export(s, dbusPath, dbusName); err != nil {
		return nil, err
	}
	if err := conn.Export(genIntrospectable(s), dbusPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		return nil, err
	}

	log.Info("Exported capture service on system bus as %s", dbusName)
	return &Service{conn: conn}, nil
}

func (s *Service) Close() error {
	if _, err := s.conn.ReleaseName(dbusName); err != nil {
		return err
	}
	return nil
}

func genIntrospectable(v interface{}) introspect.Introspectable {
	node := &introspect.Node{
		Interfaces: []introspect.Interface{{
			Name:    dbusName,
			Methods: introspect.Methods(v),
		}},
	}
	return introspect.NewIntrospectable(node)
}

type service struct {
	capturer Capturer
}

// TakeSnapshot runs a capture and returns where it was saved.
func (s *service) TakeSnapshot() (string, *dbus.Error) {
	rec, ok := s.capturer.Trigger(context.Background(), "dbus")
	if !ok {
		return "", &dbus.Error{
			Name: dbusName + ".TakeSnapshot",
			Body: []interface{}{"capture failed"},
		}
	}
	return rec.Path, nil
}

// Status describes the storage medium and the last capture.
func (s *service) Status() (string, *dbus.Error) {
	return s.capturer.Status(), nil
}
