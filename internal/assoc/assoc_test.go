package assoc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeReplacer struct {
	sets map[int64][]int64
	err  error
}

func newFakeReplacer() *fakeReplacer {
	return &fakeReplacer{sets: make(map[int64][]int64)}
}

func (f *fakeReplacer) Replace(ctx context.Context, ownerID int64, relatedIDs []int64) error {
	if f.err != nil {
		return f.err
	}
	f.sets[ownerID] = append([]int64(nil), relatedIDs...)
	return nil
}

func TestReplaceIsIdempotent(t *testing.T) {
	gw := newFakeReplacer()
	m := NewManager("group_roles", gw)
	ctx := context.Background()

	require.NoError(t, m.Replace(ctx, 1, []int64{10, 11}))
	first := gw.sets[1]
	require.NoError(t, m.Replace(ctx, 1, []int64{10, 11}))
	require.Equal(t, first, gw.sets[1])
	require.Equal(t, []int64{10, 11}, gw.sets[1])
}

func TestReplaceIsFullReplacement(t *testing.T) {
	gw := newFakeReplacer()
	m := NewManager("group_roles", gw)
	ctx := context.Background()

	require.NoError(t, m.Replace(ctx, 1, []int64{10, 11, 12}))
	require.NoError(t, m.Replace(ctx, 1, []int64{11}))
	require.Equal(t, []int64{11}, gw.sets[1], "final state is exactly the submitted set")

	require.NoError(t, m.Replace(ctx, 1, nil))
	require.Empty(t, gw.sets[1])
}

func TestReplaceCollapsesDuplicates(t *testing.T) {
	gw := newFakeReplacer()
	m := NewManager("user_groups", gw)

	require.NoError(t, m.Replace(context.Background(), 7, []int64{3, 1, 3, 2, 1}))
	require.Equal(t, []int64{1, 2, 3}, gw.sets[7])
}

func TestReplaceFailureIsReplaceError(t *testing.T) {
	gw := newFakeReplacer()
	gw.err = errors.New("backend down")
	m := NewManager("group_roles", gw)

	err := m.Replace(context.Background(), 1, []int64{10})
	require.Error(t, err)
	var replaceErr *ReplaceError
	require.ErrorAs(t, err, &replaceErr)
	require.Equal(t, "group_roles", replaceErr.Assoc)
	require.Equal(t, int64(1), replaceErr.OwnerID)
	require.ErrorIs(t, err, gw.err)
}
