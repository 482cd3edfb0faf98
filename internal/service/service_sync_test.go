// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/MKhiriev/go-wish-keeper/internal/logger"
	"github.com/MKhiriev/go-wish-keeper/internal/mock"
	"github.com/MKhiriev/go-wish-keeper/internal/store"
	"github.com/MKhiriev/go-wish-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestAuthority(t *testing.T, ctrl *gomock.Controller) (SyncAuthorityService, *mock.MockServerDocumentRepository) {
	t.Helper()

	docs := mock.NewMockServerDocumentRepository(ctrl)
	svc := NewSyncAuthorityService(docs, logger.Nop())

	return svc, docs
}

func serverDoc(id string, t models.DocType, createdBy string, access ...string) models.Document {
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return models.Document{
		ID:        id,
		Type:      t,
		Access:    access,
		CreatedBy: createdBy,
		CreatedAt: ts,
		UpdatedAt: ts,
		Fields:    json.RawMessage(`{"title":"x"}`),
	}
}

// ── Pull ─────────────────────────────────────────────────────────────────────

func TestAuthorityPull_DelegatesVisibilityToRepository(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, docs := newTestAuthority(t, ctrl)
	ctx := context.Background()

	visible := []models.Document{serverDoc("list:one", models.DocTypeList, "alice", "alice", "bob")}
	docs.EXPECT().FindVisible(ctx, "bob", models.DocTypeList).Return(visible, nil)

	got, err := svc.Pull(ctx, "bob", models.DocTypeList)
	require.NoError(t, err)
	assert.Equal(t, visible, got)
}

// ── Push: inserts ────────────────────────────────────────────────────────────

func TestAuthorityPush_NewListGetsPusherInAccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, docs := newTestAuthority(t, ctrl)
	ctx := context.Background()

	incoming := serverDoc("list:one", models.DocTypeList, "mallory", "bob")

	docs.EXPECT().GetDocument(ctx, "list:one").Return(models.Document{}, store.ErrNotFound)
	docs.EXPECT().InsertDocument(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, d models.Document) error {
		// The claimed author is ignored; the authenticated pusher is recorded.
		assert.Equal(t, "alice", d.CreatedBy)
		assert.ElementsMatch(t, []string{"bob", "alice"}, d.Access)
		return nil
	})

	conflicts, err := svc.Push(ctx, "alice", models.DocTypeList, []models.Document{incoming})
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestAuthorityPush_NewItemInheritsListAccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, docs := newTestAuthority(t, ctrl)
	ctx := context.Background()

	incoming := serverDoc("item:one", models.DocTypeItem, "alice", "alice")
	incoming.ParentID = "list:one"
	list := serverDoc("list:one", models.DocTypeList, "alice", "alice", "bob", "carol")

	docs.EXPECT().GetDocument(ctx, "item:one").Return(models.Document{}, store.ErrNotFound)
	docs.EXPECT().GetDocument(ctx, "list:one").Return(list, nil)
	docs.EXPECT().InsertDocument(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, d models.Document) error {
		assert.ElementsMatch(t, []string{"alice", "bob", "carol"}, d.Access)
		return nil
	})

	conflicts, err := svc.Push(ctx, "alice", models.DocTypeItem, []models.Document{incoming})
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestAuthorityPush_MarkAccessExcludesItemOwner(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, docs := newTestAuthority(t, ctrl)
	ctx := context.Background()

	incoming := serverDoc("mark:one", models.DocTypeMark, "bob", "alice", "bob", "carol")
	incoming.ParentID = "item:one"
	item := serverDoc("item:one", models.DocTypeItem, "alice", "alice", "bob", "carol")

	docs.EXPECT().GetDocument(ctx, "mark:one").Return(models.Document{}, store.ErrNotFound)
	docs.EXPECT().GetDocument(ctx, "item:one").Return(item, nil)
	docs.EXPECT().InsertDocument(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, d models.Document) error {
		// alice owns the item, so alice never sees the mark.
		assert.ElementsMatch(t, []string{"bob", "carol"}, d.Access)
		return nil
	})

	conflicts, err := svc.Push(ctx, "bob", models.DocTypeMark, []models.Document{incoming})
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestAuthorityPush_MarkOnMissingItemConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, docs := newTestAuthority(t, ctrl)
	ctx := context.Background()

	incoming := serverDoc("mark:one", models.DocTypeMark, "bob", "bob")
	incoming.ParentID = "item:gone"

	docs.EXPECT().GetDocument(ctx, "mark:one").Return(models.Document{}, store.ErrNotFound)
	docs.EXPECT().GetDocument(ctx, "item:gone").Return(models.Document{}, store.ErrNotFound)

	conflicts, err := svc.Push(ctx, "bob", models.DocTypeMark, []models.Document{incoming})
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "mark:one", conflicts[0].DocumentID)
	assert.Nil(t, conflicts[0].ServerDocument)
}

func TestAuthorityPush_InsertRaceFallsBackToUpdate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, docs := newTestAuthority(t, ctrl)
	ctx := context.Background()

	incoming := serverDoc("list:one", models.DocTypeList, "alice", "alice")
	incoming.UpdatedAt = incoming.UpdatedAt.Add(time.Minute)
	raced := serverDoc("list:one", models.DocTypeList, "alice", "alice")

	docs.EXPECT().GetDocument(ctx, "list:one").Return(models.Document{}, store.ErrNotFound)
	docs.EXPECT().InsertDocument(ctx, gomock.Any()).Return(store.ErrDuplicate)
	docs.EXPECT().GetDocument(ctx, "list:one").Return(raced, nil)
	docs.EXPECT().UpdateDocument(ctx, gomock.Any()).Return(nil)

	conflicts, err := svc.Push(ctx, "alice", models.DocTypeList, []models.Document{incoming})
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

// ── Push: updates ────────────────────────────────────────────────────────────

func TestAuthorityPush_DeniedUpdateLeaksNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, docs := newTestAuthority(t, ctrl)
	ctx := context.Background()

	incoming := serverDoc("list:one", models.DocTypeList, "mallory", "mallory")
	existing := serverDoc("list:one", models.DocTypeList, "alice", "alice")

	docs.EXPECT().GetDocument(ctx, "list:one").Return(existing, nil)

	conflicts, err := svc.Push(ctx, "mallory", models.DocTypeList, []models.Document{incoming})
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "access denied", conflicts[0].Error)
	assert.Nil(t, conflicts[0].ServerDocument)
}

func TestAuthorityPush_StaleUpdateReturnsServerVersion(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, docs := newTestAuthority(t, ctrl)
	ctx := context.Background()

	existing := serverDoc("list:one", models.DocTypeList, "alice", "alice")
	incoming := existing
	incoming.UpdatedAt = existing.UpdatedAt.Add(-time.Hour)
	incoming.Fields = json.RawMessage(`{"title":"stale"}`)

	docs.EXPECT().GetDocument(ctx, "list:one").Return(existing, nil)

	conflicts, err := svc.Push(ctx, "alice", models.DocTypeList, []models.Document{incoming})
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	require.NotNil(t, conflicts[0].ServerDocument)
	assert.Equal(t, existing.Fields, conflicts[0].ServerDocument.Fields)
}

func TestAuthorityPush_NonCreatorCannotChangeAccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, docs := newTestAuthority(t, ctrl)
	ctx := context.Background()

	existing := serverDoc("list:one", models.DocTypeList, "alice", "alice", "bob")
	incoming := existing
	incoming.UpdatedAt = existing.UpdatedAt.Add(time.Minute)
	incoming.Access = []string{"bob"}

	docs.EXPECT().GetDocument(ctx, "list:one").Return(existing, nil)
	docs.EXPECT().UpdateDocument(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, d models.Document) error {
		assert.ElementsMatch(t, []string{"alice", "bob"}, d.Access)
		assert.Equal(t, "alice", d.CreatedBy)
		return nil
	})

	conflicts, err := svc.Push(ctx, "bob", models.DocTypeList, []models.Document{incoming})
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestAuthorityPush_CreatorCannotLockThemselvesOut(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, docs := newTestAuthority(t, ctrl)
	ctx := context.Background()

	existing := serverDoc("list:one", models.DocTypeList, "alice", "alice", "bob")
	incoming := existing
	incoming.UpdatedAt = existing.UpdatedAt.Add(time.Minute)
	incoming.Access = []string{"bob"}

	docs.EXPECT().GetDocument(ctx, "list:one").Return(existing, nil)
	docs.EXPECT().UpdateDocument(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, d models.Document) error {
		assert.ElementsMatch(t, []string{"bob", "alice"}, d.Access)
		return nil
	})

	conflicts, err := svc.Push(ctx, "alice", models.DocTypeList, []models.Document{incoming})
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestAuthorityPush_StructurallyInvalidDocumentConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _ := newTestAuthority(t, ctrl)

	// A mark without a parent reference never reaches the repository.
	incoming := serverDoc("mark:one", models.DocTypeMark, "bob", "bob")

	conflicts, err := svc.Push(context.Background(), "bob", models.DocTypeMark, []models.Document{incoming})
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "mark:one", conflicts[0].DocumentID)
	assert.Nil(t, conflicts[0].ServerDocument)
}

func TestAuthorityPush_TypeMismatchConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _ := newTestAuthority(t, ctrl)

	incoming := serverDoc("item:one", models.DocTypeItem, "alice", "alice")

	conflicts, err := svc.Push(context.Background(), "alice", models.DocTypeList, []models.Document{incoming})
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "item:one", conflicts[0].DocumentID)
}
