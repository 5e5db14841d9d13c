package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-admin/meridian/internal/directory"
)

type record struct {
	ID   int64
	Name string
}

func (r record) EntityID() int64 { return r.ID }

type fakeGateway struct {
	records []record
	nextID  int64

	listErr   error
	createErr error
	updateErr error
	deleteErr error
}

func (g *fakeGateway) List(ctx context.Context) ([]record, error) {
	if g.listErr != nil {
		return nil, g.listErr
	}
	return append([]record(nil), g.records...), nil
}

func (g *fakeGateway) Create(ctx context.Context, draft record) (record, error) {
	if g.createErr != nil {
		return record{}, g.createErr
	}
	g.nextID++
	draft.ID = g.nextID
	g.records = append(g.records, draft)
	return draft, nil
}

func (g *fakeGateway) Update(ctx context.Context, id int64, draft record) (record, error) {
	if g.updateErr != nil {
		return record{}, g.updateErr
	}
	for i, r := range g.records {
		if r.ID == id {
			draft.ID = id
			g.records[i] = draft
			return draft, nil
		}
	}
	return record{}, errors.New("missing")
}

func (g *fakeGateway) Delete(ctx context.Context, id int64) error {
	if g.deleteErr != nil {
		return g.deleteErr
	}
	for i, r := range g.records {
		if r.ID == id {
			g.records = append(g.records[:i], g.records[i+1:]...)
			return nil
		}
	}
	return errors.New("missing")
}

func newTestStore(gw *fakeGateway) *Store[record] {
	return New(directory.Kind("records"), gw, nil)
}

func TestListFailureKeepsPreviousSnapshot(t *testing.T) {
	gw := &fakeGateway{records: []record{{ID: 1, Name: "one"}}, nextID: 1}
	st := newTestStore(gw)

	ctx := context.Background()
	first, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	gw.listErr = errors.New("backend down")
	stale, err := st.List(ctx)
	require.Error(t, err)
	require.Equal(t, first, stale, "previous snapshot must be untouched")
}

func TestCreateAppendsOnlyAfterSuccess(t *testing.T) {
	gw := &fakeGateway{}
	st := newTestStore(gw)
	ctx := context.Background()

	gw.createErr = errors.New("rejected")
	_, err := st.Create(ctx, record{Name: "nope"})
	require.Error(t, err)
	require.Empty(t, st.Snapshot(), "no optimistic insert")

	gw.createErr = nil
	created, err := st.Create(ctx, record{Name: "ok"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Len(t, st.Snapshot(), 1)
}

func TestUpdateReplacesByID(t *testing.T) {
	gw := &fakeGateway{records: []record{{ID: 1, Name: "old"}, {ID: 2, Name: "two"}}, nextID: 2}
	st := newTestStore(gw)
	ctx := context.Background()

	_, err := st.List(ctx)
	require.NoError(t, err)

	updated, err := st.Update(ctx, 1, record{Name: "new"})
	require.NoError(t, err)
	require.Equal(t, "new", updated.Name)

	got, ok := st.Get(1)
	require.True(t, ok)
	require.Equal(t, "new", got.Name)
	other, ok := st.Get(2)
	require.True(t, ok)
	require.Equal(t, "two", other.Name)
}

func TestDeleteRemovesOnlyAfterSuccess(t *testing.T) {
	gw := &fakeGateway{records: []record{{ID: 1, Name: "one"}}, nextID: 1}
	st := newTestStore(gw)
	ctx := context.Background()

	_, err := st.List(ctx)
	require.NoError(t, err)

	gw.deleteErr = errors.New("rejected")
	require.Error(t, st.Delete(ctx, 1))
	_, ok := st.Get(1)
	require.True(t, ok, "unconfirmed delete must not be presented as gone")

	gw.deleteErr = nil
	require.NoError(t, st.Delete(ctx, 1))
	_, ok = st.Get(1)
	require.False(t, ok)
}

func TestRefreshDiscardsSnapshot(t *testing.T) {
	gw := &fakeGateway{records: []record{{ID: 1, Name: "one"}}, nextID: 1}
	st := newTestStore(gw)
	ctx := context.Background()

	_, err := st.List(ctx)
	require.NoError(t, err)

	// The backend changes behind the store's back.
	gw.records = []record{{ID: 2, Name: "two"}}
	require.NoError(t, st.Refresh(ctx))
	snapshot := st.Snapshot()
	require.Len(t, snapshot, 1)
	require.Equal(t, int64(2), snapshot[0].ID)

	gw.listErr = errors.New("backend down")
	require.Error(t, st.Refresh(ctx))
	require.Equal(t, snapshot, st.Snapshot(), "failed refresh keeps the last snapshot")
}
