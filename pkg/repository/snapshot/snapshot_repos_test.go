//nolint:dupl,funlen,errcheck //ok for this test code
package snapshot_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/yutrace/pkg/model"
	"github.com/mpapenbr/yutrace/pkg/repository/snapshot"
	"github.com/mpapenbr/yutrace/testsupport/basedata"
	"github.com/mpapenbr/yutrace/testsupport/testdb"
)

func TestSave(t *testing.T) {
	pool := testdb.InitTestDb()
	sample := basedata.CreateSampleSnapshot(pool, "existing")
	tests := []struct {
		name    string
		session string
		snap    *model.Snapshot
		wantErr error
	}{
		{name: "new entry", session: "new", snap: sample},
		{name: "replace", session: "existing", snap: basedata.SampleEngine(2).Snapshot()},
		{name: "no name", session: "", snap: sample, wantErr: model.ErrInvalidArgument},
		{name: "no snapshot", session: "x", snap: nil, wantErr: model.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pool.AcquireFunc(context.Background(), func(c *pgxpool.Conn) error {
				_, err := snapshot.Save(context.Background(), c, tt.session, tt.snap)
				return err
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			got, err := snapshot.LoadByName(context.Background(), pool, tt.session)
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.snap, got.Snapshot))
		})
	}
}

func TestSaveKeepsID(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	first, err := snapshot.Save(ctx, pool, "session", basedata.SampleSnapshot())
	require.NoError(t, err)
	second, err := snapshot.Save(ctx, pool, "session", basedata.SampleEngine(3).Snapshot())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLoadByName(t *testing.T) {
	pool := testdb.InitTestDb()
	sample := basedata.CreateSampleSnapshot(pool, "session")

	got, err := snapshot.LoadByName(context.Background(), pool, "session")
	require.NoError(t, err)
	assert.Equal(t, "session", got.Name)
	assert.Equal(t, model.SnapshotVersion, got.Version)
	assert.Empty(t, cmp.Diff(sample, got.Snapshot))

	_, err = snapshot.LoadByName(context.Background(), pool, "unknown")
	assert.ErrorIs(t, err, snapshot.ErrNotFound)
}

func TestDeleteByName(t *testing.T) {
	db := testdb.InitTestDb()
	basedata.CreateSampleSnapshot(db, "session")

	tests := []struct {
		name    string
		session string
		want    int
	}{
		{name: "delete_existing", session: "session", want: 1},
		{name: "delete_non_existing", session: "session", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := snapshot.DeleteByName(context.Background(), db, tt.session)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListNames(t *testing.T) {
	pool := testdb.InitTestDb()
	basedata.CreateSampleSnapshot(pool, "b")
	basedata.CreateSampleSnapshot(pool, "a")

	got, err := snapshot.ListNames(context.Background(), pool)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}
