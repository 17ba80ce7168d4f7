package repository

import (
    "context"
    "database/sql"
    "errors"
    "fmt"

    "github.com/jmoiron/sqlx"

    "github.com/hotelbook/room-reservation/internal/model"
)

// SQLReservationRepo stores reservations in the reservations table on MySQL
// or Postgres.  The table carries a synthetic id so that update and delete
// can pin a single row, but the id never leaves this type: callers still
// match on the full (name, start_date, end_date, room_id) tuple.
type SQLReservationRepo struct {
    db *sqlx.DB
}

// NewSQLReservationRepo returns a repo bound to db.  Placeholders are
// rebound for the driver db was opened with.
func NewSQLReservationRepo(db *sqlx.DB) *SQLReservationRepo { return &SQLReservationRepo{db: db} }

// reservationRow mirrors the reservations table minus its id column.
type reservationRow struct {
    Name      string `db:"name"`
    StartDate string `db:"start_date"`
    EndDate   string `db:"end_date"`
    RoomID    int    `db:"room_id"`
}

const selectReservations = `SELECT name, start_date, end_date, room_id FROM reservations`

// schemaFor returns the DDL that creates the reservations table and its
// indexes for the given driver.
func schemaFor(driver string) ([]string, error) {
    switch driver {
    case "mysql":
        return []string{`CREATE TABLE IF NOT EXISTS reservations (
    id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    name       VARCHAR(255) NOT NULL,
    start_date CHAR(10)     NOT NULL,
    end_date   CHAR(10)     NOT NULL,
    room_id    INT          NOT NULL,
    CHECK (room_id BETWEEN 1 AND 10),
    CHECK (start_date <= end_date),
    INDEX idx_reservations_room (room_id, start_date, end_date),
    INDEX idx_reservations_name (name)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`}, nil
    case "postgres":
        return []string{
            `CREATE TABLE IF NOT EXISTS reservations (
    id         BIGSERIAL PRIMARY KEY,
    name       TEXT     NOT NULL,
    start_date CHAR(10) NOT NULL,
    end_date   CHAR(10) NOT NULL,
    room_id    INTEGER  NOT NULL CHECK (room_id BETWEEN 1 AND 10),
    CHECK (start_date <= end_date)
)`,
            `CREATE INDEX IF NOT EXISTS idx_reservations_room ON reservations (room_id, start_date, end_date)`,
            `CREATE INDEX IF NOT EXISTS idx_reservations_name ON reservations (name)`,
        }, nil
    default:
        return nil, fmt.Errorf("no reservations schema for driver %q", driver)
    }
}

// EnsureReservationSchema creates the reservations table if it is missing.
func EnsureReservationSchema(ctx context.Context, db *sqlx.DB) error {
    stmts, err := schemaFor(db.DriverName())
    if err != nil {
        return err
    }
    for _, stmt := range stmts {
        if _, err := db.ExecContext(ctx, stmt); err != nil {
            return fmt.Errorf("ensure reservations schema: %w", err)
        }
    }
    return nil
}

func (r *SQLReservationRepo) FindByName(ctx context.Context, name string) ([]model.Reservation, error) {
    return r.selectAll(ctx, selectReservations+` WHERE name = ? ORDER BY start_date, id`, name)
}

func (r *SQLReservationRepo) FindByRoom(ctx context.Context, roomID int) ([]model.Reservation, error) {
    return r.selectAll(ctx, selectReservations+` WHERE room_id = ? ORDER BY start_date, id`, roomID)
}

func (r *SQLReservationRepo) selectAll(ctx context.Context, q string, args ...interface{}) ([]model.Reservation, error) {
    var rows []reservationRow
    if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
        return nil, err
    }
    out := make([]model.Reservation, 0, len(rows))
    for _, row := range rows {
        res, err := fromStrings(row.Name, row.StartDate, row.EndDate, row.RoomID)
        if err != nil {
            return nil, err
        }
        out = append(out, res)
    }
    return out, nil
}

func (r *SQLReservationRepo) Insert(ctx context.Context, res model.Reservation) error {
    const q = `INSERT INTO reservations (name, start_date, end_date, room_id) VALUES (?, ?, ?, ?)`
    _, err := r.db.ExecContext(ctx, r.db.Rebind(q), res.Name, res.StartDate.String(), res.EndDate.String(), res.RoomID)
    return err
}

// Update rewrites the date range of the oldest row matching match.  The
// lookup and the write share a transaction with the row locked.
func (r *SQLReservationRepo) Update(ctx context.Context, match model.Reservation, newStart, newEnd model.Date) (int64, error) {
    return r.withMatchingRow(ctx, match, func(tx *sqlx.Tx, id int64) error {
        const q = `UPDATE reservations SET start_date = ?, end_date = ? WHERE id = ?`
        _, err := tx.ExecContext(ctx, tx.Rebind(q), newStart.String(), newEnd.String(), id)
        return err
    })
}

// Delete removes the oldest row matching match.
func (r *SQLReservationRepo) Delete(ctx context.Context, match model.Reservation) (int64, error) {
    return r.withMatchingRow(ctx, match, func(tx *sqlx.Tx, id int64) error {
        _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM reservations WHERE id = ?`), id)
        return err
    })
}

// withMatchingRow finds one row equal to match and runs fn on its id in the
// same transaction.  It returns 0 without calling fn when nothing matches.
func (r *SQLReservationRepo) withMatchingRow(ctx context.Context, match model.Reservation, fn func(tx *sqlx.Tx, id int64) error) (int64, error) {
    tx, err := r.db.BeginTxx(ctx, nil)
    if err != nil {
        return 0, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    const q = `SELECT id FROM reservations
               WHERE name = ? AND start_date = ? AND end_date = ? AND room_id = ?
               ORDER BY id LIMIT 1 FOR UPDATE`
    var id int64
    err = tx.GetContext(ctx, &id, tx.Rebind(q), match.Name, match.StartDate.String(), match.EndDate.String(), match.RoomID)
    if errors.Is(err, sql.ErrNoRows) {
        return 0, nil
    }
    if err != nil {
        return 0, err
    }
    if err := fn(tx, id); err != nil {
        return 0, err
    }
    if err := tx.Commit(); err != nil {
        return 0, err
    }
    committed = true
    return 1, nil
}
