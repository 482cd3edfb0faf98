package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MKhiriev/go-wish-keeper/internal/logger"
	"github.com/MKhiriev/go-wish-keeper/internal/mock"
	"github.com/MKhiriev/go-wish-keeper/internal/mock/servicemock"
	"go.uber.org/mock/gomock"
)

func TestConnectivityWorker_ReportsOffline(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pinger := mock.NewMockServerAdapter(ctrl)
	session := servicemock.NewMockSyncSession(ctrl)

	offline := make(chan struct{}, 8)

	pinger.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused")).AnyTimes()
	session.EXPECT().SetOnline(false).Do(func(bool) {
		select {
		case offline <- struct{}{}:
		default:
		}
	}).AnyTimes()

	w := NewConnectivityWorker(pinger, session, 10*time.Millisecond, logger.Nop())
	w.Run()
	defer w.Stop()

	select {
	case <-offline:
	case <-time.After(time.Second):
		t.Fatal("worker never reported the session offline")
	}
}

func TestConnectivityWorker_TriggersSyncOnReconnect(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pinger := mock.NewMockServerAdapter(ctrl)
	session := servicemock.NewMockSyncSession(ctrl)

	// First probe fails, every later one succeeds.
	failed := pinger.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused"))
	pinger.EXPECT().Ping(gomock.Any()).Return(nil).AnyTimes().After(failed)

	session.EXPECT().SetOnline(false)
	session.EXPECT().SetOnline(true).AnyTimes()

	triggered := make(chan struct{}, 8)
	session.EXPECT().TriggerSync(gomock.Any()).DoAndReturn(func(context.Context) error {
		select {
		case triggered <- struct{}{}:
		default:
		}
		return nil
	}).AnyTimes()

	w := NewConnectivityWorker(pinger, session, 10*time.Millisecond, logger.Nop())
	w.Run()
	defer w.Stop()

	select {
	case <-triggered:
	case <-time.After(time.Second):
		t.Fatal("reconnect did not request a sync")
	}
}

func TestConnectivityWorker_StopEndsProbing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pinger := mock.NewMockServerAdapter(ctrl)
	session := servicemock.NewMockSyncSession(ctrl)

	pinger.EXPECT().Ping(gomock.Any()).Return(nil).AnyTimes()
	session.EXPECT().SetOnline(true).AnyTimes()

	w := NewConnectivityWorker(pinger, session, 10*time.Millisecond, logger.Nop())
	w.Run()
	w.Stop()
}
