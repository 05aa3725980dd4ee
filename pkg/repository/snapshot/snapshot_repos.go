//nolint:whitespace //can't make both the linter and editor happy :(
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/mpapenbr/yutrace/pkg/model"
	"github.com/mpapenbr/yutrace/pkg/repository"
)

var ErrNotFound = errors.New("snapshot not found")

// Stored is a snapshot as persisted in the database.
type Stored struct {
	ID        uuid.UUID
	Name      string
	Version   string
	Snapshot  *model.Snapshot
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Save stores snap under name. An existing snapshot with the same name is
// replaced, keeping its id.
func Save(
	ctx context.Context,
	conn repository.Querier,
	name string,
	snap *model.Snapshot,
) (uuid.UUID, error) {
	if name == "" || snap == nil {
		return uuid.Nil, fmt.Errorf("%w: name and snapshot required", model.ErrInvalidArgument)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, err
	}
	row := conn.QueryRow(ctx, `
insert into session_snapshot (id, name, version, data)
values ($1, $2, $3, $4)
on conflict (name) do update
set version=excluded.version, data=excluded.data, updated_at=now()
returning id`,
		id, name, snap.Version, snap)
	if err := row.Scan(&id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func LoadByName(
	ctx context.Context,
	conn repository.Querier,
	name string,
) (*Stored, error) {
	row := conn.QueryRow(ctx, fmt.Sprintf("%s where name=$1", selector), name)
	var item Stored
	if err := scan(&item, row); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}
	return &item, nil
}

// deletes an entry from the database, returns number of rows deleted.
func DeleteByName(ctx context.Context, conn repository.Querier, name string) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from session_snapshot where name=$1", name)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

func ListNames(ctx context.Context, conn repository.Querier) ([]string, error) {
	rows, err := conn.Query(ctx, "select name from session_snapshot order by name")
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// little helper
const selector = string(
	`select id,name,version,data,created_at,updated_at from session_snapshot`)

func scan(e *Stored, row pgx.Row) error {
	e.Snapshot = &model.Snapshot{}
	return row.Scan(&e.ID, &e.Name, &e.Version, e.Snapshot, &e.CreatedAt, &e.UpdatedAt)
}
