package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/MKhiriev/go-wish-keeper/internal/logger"
	"github.com/MKhiriev/go-wish-keeper/internal/mock"
	"github.com/MKhiriev/go-wish-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// stubSyncSession is a hand-written stand-in for SyncSession: the generated
// session mock imports this package, so tests here cannot use it. Every
// trigger lands on the buffered channel so tests can wait for the debounced
// goroutine.
type stubSyncSession struct {
	triggered chan struct{}
}

func newStubSyncSession() *stubSyncSession {
	return &stubSyncSession{triggered: make(chan struct{}, 16)}
}

func (s *stubSyncSession) SyncNow(context.Context) error { return nil }

func (s *stubSyncSession) TriggerSync(context.Context) error {
	select {
	case s.triggered <- struct{}{}:
	default:
	}
	return nil
}

func (s *stubSyncSession) Status() SyncStatus  { return StatusIdle }
func (s *stubSyncSession) SetOnline(bool)      {}
func (s *stubSyncSession) OnError(func(error)) {}
func (s *stubSyncSession) Stop()               {}

func newTestWishlist(t *testing.T, ctrl *gomock.Controller) (WishlistService, *mock.MockDocumentStore, chan struct{}) {
	t.Helper()

	mockStore := mock.NewMockDocumentStore(ctrl)
	session := newStubSyncSession()

	svc := NewWishlistService(mockStore, session, "bob", logger.Nop())

	return svc, mockStore, session.triggered
}

func waitTriggered(t *testing.T, triggered chan struct{}) {
	t.Helper()

	select {
	case <-triggered:
	case <-time.After(time.Second):
		t.Fatal("mutation did not request a sync")
	}
}

func storedDoc(id string, dt models.DocType, createdBy string, access ...string) models.Document {
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return models.Document{
		ID:        id,
		Type:      dt,
		Access:    access,
		CreatedBy: createdBy,
		CreatedAt: ts,
		UpdatedAt: ts,
		Fields:    json.RawMessage(`{"title":"x"}`),
		Rev:       3,
	}
}

func TestCreateList(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockStore, triggered := newTestWishlist(t, ctrl)
	ctx := context.Background()

	mockStore.EXPECT().Put(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, doc models.Document) (int64, error) {
		assert.True(t, strings.HasPrefix(doc.ID, "list:"))
		assert.Equal(t, models.DocTypeList, doc.Type)
		assert.Equal(t, "bob", doc.CreatedBy)
		assert.Equal(t, []string{"bob"}, doc.Access)
		assert.Zero(t, doc.Rev)
		return 1, nil
	})

	doc, err := svc.CreateList(ctx, json.RawMessage(`{"title":"birthday"}`))
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc.Rev)
	waitTriggered(t, triggered)
}

func TestCreateItem_InheritsListAccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockStore, triggered := newTestWishlist(t, ctrl)
	ctx := context.Background()

	list := storedDoc("list:one", models.DocTypeList, "bob", "bob", "carol")

	mockStore.EXPECT().Get(ctx, "list:one").Return(list, nil)
	mockStore.EXPECT().Put(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, doc models.Document) (int64, error) {
		assert.Equal(t, models.DocTypeItem, doc.Type)
		assert.Equal(t, "list:one", doc.ParentID)
		assert.Equal(t, []string{"bob", "carol"}, doc.Access)
		return 2, nil
	})

	_, err := svc.CreateItem(ctx, "list:one", json.RawMessage(`{"title":"bicycle"}`))
	require.NoError(t, err)
	waitTriggered(t, triggered)
}

func TestMarkItem_AccessExcludesItemOwner(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockStore, triggered := newTestWishlist(t, ctrl)
	ctx := context.Background()

	// alice owns the item; bob marks it. alice must not see the mark.
	item := storedDoc("item:one", models.DocTypeItem, "alice", "alice", "bob", "carol")

	mockStore.EXPECT().Get(ctx, "item:one").Return(item, nil)
	mockStore.EXPECT().Put(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, doc models.Document) (int64, error) {
		assert.Equal(t, models.DocTypeMark, doc.Type)
		assert.Equal(t, "item:one", doc.ParentID)
		assert.ElementsMatch(t, []string{"bob", "carol"}, doc.Access)
		assert.JSONEq(t, `{"marked_by":"bob"}`, string(doc.Fields))
		return 4, nil
	})

	_, err := svc.MarkItem(ctx, "item:one")
	require.NoError(t, err)
	waitTriggered(t, triggered)
}

func TestShareList_AppendsPrincipal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockStore, triggered := newTestWishlist(t, ctrl)
	ctx := context.Background()

	list := storedDoc("list:one", models.DocTypeList, "bob", "bob")

	mockStore.EXPECT().Get(ctx, "list:one").Return(list, nil)
	mockStore.EXPECT().Put(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, doc models.Document) (int64, error) {
		assert.Equal(t, []string{"bob", "carol"}, doc.Access)
		return 4, nil
	})

	doc, err := svc.ShareList(ctx, "list:one", "carol")
	require.NoError(t, err)
	assert.Equal(t, int64(4), doc.Rev)
	waitTriggered(t, triggered)
}

func TestShareList_AlreadySharedWritesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockStore, triggered := newTestWishlist(t, ctrl)
	ctx := context.Background()

	list := storedDoc("list:one", models.DocTypeList, "bob", "bob", "carol")

	mockStore.EXPECT().Get(ctx, "list:one").Return(list, nil)

	doc, err := svc.ShareList(ctx, "list:one", "carol")
	require.NoError(t, err)
	assert.Equal(t, list.Rev, doc.Rev)
	waitTriggered(t, triggered)
}

func TestUpdateDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockStore, triggered := newTestWishlist(t, ctrl)
	ctx := context.Background()

	item := storedDoc("item:one", models.DocTypeItem, "bob", "bob")

	mockStore.EXPECT().Get(ctx, "item:one").Return(item, nil)
	mockStore.EXPECT().Put(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, doc models.Document) (int64, error) {
		assert.Equal(t, item.Rev, doc.Rev)
		assert.JSONEq(t, `{"title":"renamed"}`, string(doc.Fields))
		assert.True(t, doc.UpdatedAt.After(item.UpdatedAt))
		return 4, nil
	})

	doc, err := svc.UpdateDocument(ctx, "item:one", json.RawMessage(`{"title":"renamed"}`))
	require.NoError(t, err)
	assert.Equal(t, int64(4), doc.Rev)
	waitTriggered(t, triggered)
}

func TestDeleteDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockStore, triggered := newTestWishlist(t, ctrl)
	ctx := context.Background()

	item := storedDoc("item:one", models.DocTypeItem, "bob", "bob")

	mockStore.EXPECT().Get(ctx, "item:one").Return(item, nil)
	mockStore.EXPECT().SoftDelete(ctx, "item:one", item.Rev).Return(nil)

	require.NoError(t, svc.DeleteDocument(ctx, "item:one"))
	waitTriggered(t, triggered)
}
