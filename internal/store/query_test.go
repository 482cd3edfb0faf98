package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-wish-keeper/internal/logger"
	"github.com/MKhiriev/go-wish-keeper/models"
)

func waitForSnapshot(t *testing.T, ch <-chan []models.Document) []models.Document {
	t.Helper()

	select {
	case docs, ok := <-ch:
		require.True(t, ok, "subscription closed unexpectedly")
		return docs
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
		return nil
	}
}

func TestLiveQuery_InitialSnapshot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Put(ctx, testDocument("list:one", models.DocTypeList))
	require.NoError(t, err)

	q := NewLiveQuery(s, logger.Nop())
	out, stop, err := q.Subscribe(ctx, Selector{Type: models.DocTypeList})
	require.NoError(t, err)
	defer stop()

	docs := waitForSnapshot(t, out)
	require.Len(t, docs, 1)
	assert.Equal(t, "list:one", docs[0].ID)
}

func TestLiveQuery_RefreshesOnChange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	q := NewLiveQuery(s, logger.Nop())
	out, stop, err := q.Subscribe(ctx, Selector{Type: models.DocTypeItem, ParentID: "list:one"})
	require.NoError(t, err)
	defer stop()

	assert.Empty(t, waitForSnapshot(t, out))

	item := testDocument("item:one", models.DocTypeItem)
	item.ParentID = "list:one"
	rev, err := s.Put(ctx, item)
	require.NoError(t, err)

	docs := waitForSnapshot(t, out)
	require.Len(t, docs, 1)
	assert.Equal(t, "item:one", docs[0].ID)

	// A tombstone empties the result set.
	require.NoError(t, s.SoftDelete(ctx, "item:one", rev))
	assert.Empty(t, waitForSnapshot(t, out))
}

func TestLiveQuery_IgnoresUnrelatedChanges(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	q := NewLiveQuery(s, logger.Nop())
	out, stop, err := q.Subscribe(ctx, Selector{Type: models.DocTypeMark})
	require.NoError(t, err)
	defer stop()

	assert.Empty(t, waitForSnapshot(t, out))

	_, err = s.Put(ctx, testDocument("list:one", models.DocTypeList))
	require.NoError(t, err)

	select {
	case docs := <-out:
		t.Fatalf("unexpected snapshot for unrelated change: %v", docs)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestLiveQuery_StopClosesChannel(t *testing.T) {
	s := newTestStore(t)

	q := NewLiveQuery(s, logger.Nop())
	out, stop, err := q.Subscribe(context.Background(), Selector{})
	require.NoError(t, err)

	waitForSnapshot(t, out)
	stop()

	select {
	case _, ok := <-out:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription channel not closed")
	}
}

func TestRelevantChange(t *testing.T) {
	item := testDocument("item:one", models.DocTypeItem)
	item.ParentID = "list:one"

	tests := []struct {
		name string
		sel  Selector
		ch   Change
		want bool
	}{
		{
			name: "matching type and parent",
			sel:  Selector{Type: models.DocTypeItem, ParentID: "list:one"},
			ch:   Change{Doc: &item},
			want: true,
		},
		{
			name: "wrong type",
			sel:  Selector{Type: models.DocTypeMark},
			ch:   Change{Doc: &item},
			want: false,
		},
		{
			name: "wrong parent",
			sel:  Selector{ParentID: "list:two"},
			ch:   Change{Doc: &item},
			want: false,
		},
		{
			name: "wrong author",
			sel:  Selector{CreatedBy: "bob"},
			ch:   Change{Doc: &item},
			want: false,
		},
		{
			name: "change without body is always relevant",
			sel:  Selector{Type: models.DocTypeMark},
			ch:   Change{ID: "item:one"},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relevantChange(tt.sel, tt.ch))
		})
	}
}
