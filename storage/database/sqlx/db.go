package sqlxrepos

import (
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/dossiers/core"
)

// psql builds Postgres statements ($n placeholders).
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// NewDB wraps a Postgres connection opened with database.Open.
func NewDB(db *sql.DB) *sqlx.DB {
	return sqlx.NewDb(db, "postgres")
}

// orderBy appends the orderings on allowed fields to q.
func orderBy(q squirrel.SelectBuilder, ordering []core.DBOrdering, allowed ...string) squirrel.SelectBuilder {
	for _, ord := range ordering {
		for _, field := range allowed {
			if ord.Field == field {
				q = q.OrderBy(ord.String())
				break
			}
		}
	}
	return q
}
