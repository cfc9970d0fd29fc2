// Package store implements the gateway to the users collection. Every
// operation is a single round trip; there are no retries and no version
// checks, so overlapping updates of the same id are last-write-wins.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	_ "github.com/go-sql-driver/mysql"
	"gitlab.com/william.mucha/users-service/internal/codec"
	"gitlab.com/william.mucha/users-service/internal/model"
)

// ErrNotFound signals that the targeted record no longer exists.
var ErrNotFound = errors.New("record not found")

// ErrUnavailable signals a transport or authentication failure talking to the
// store. Callers surface it and do not retry.
var ErrUnavailable = errors.New("store unavailable")

// Gateway is the record store seen by the rest of the application. Find
// exists because every open of the edit dialog re-fetches the record instead
// of trusting the last list snapshot.
type Gateway interface {
	List(ctx context.Context) ([]model.PersonRecord, error)
	Find(ctx context.Context, id string) (model.PersonRecord, error)
	Create(ctx context.Context, rec model.PersonRecord) (string, error)
	Update(ctx context.Context, id string, rec model.PersonRecord) error
	Delete(ctx context.Context, id string) error
}

// userRow is the raw persisted shape. Country and city arrive as whatever a
// historical writer stored (plain text or a JSON label-value document) and
// are normalized when decoded.
type userRow struct {
	Id          string    `db:"id"`
	Name        string    `db:"name"`
	DateOfBirth time.Time `db:"date_of_birth"`
	Country     string    `db:"country"`
	City        string    `db:"city"`
}

func (r userRow) decode() model.PersonRecord {
	return model.PersonRecord{
		Id:          r.Id,
		Name:        r.Name,
		DateOfBirth: r.DateOfBirth,
		Country:     codec.NormalizeChoice(r.Country),
		City:        codec.NormalizeChoice(r.City),
	}
}

// encodeRow writes the canonical shape: plain values for country and city.
func encodeRow(id string, rec model.PersonRecord) userRow {
	return userRow{
		Id:          id,
		Name:        rec.Name,
		DateOfBirth: rec.DateOfBirth,
		Country:     rec.Country,
		City:        rec.City,
	}
}

// CreateDatabase opens the database connection. The connection parameters are
// taken from the system's environment variables; credentials never live in
// source. clientFoundRows makes RowsAffected count matched rows, so replacing
// a record with identical values does not look like a missing id.
func CreateDatabase() (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s)/test?parseTime=true&clientFoundRows=true",
		os.Getenv("DBUSER"), os.Getenv("DBPWD"), os.Getenv("DBHOST"))
	sqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return sqlDB, nil
}

// SQL is the MySQL-backed Gateway. It is constructed once at process start
// from an explicit database handle; there is no package-level state.
type SQL struct {
	db            *sqlx.DB
	insert        *sqlx.NamedStmt
	selectAll     *sqlx.Stmt
	selectWhereId *sqlx.Stmt
	updateWhereId *sqlx.Stmt
	deleteWhereId *sqlx.Stmt
}

// NewSQL wraps the database handle and prepares all statements. The handle
// can be a real database for production use or a mock within unit tests.
func NewSQL(sqlDB *sql.DB) (*SQL, error) {
	db := sqlx.NewDb(sqlDB, "mysql")
	s := &SQL{db: db}

	// Prepared statements offer a significant speed increase if executed many times.
	var err error
	s.insert, err = db.PrepareNamed(`
		INSERT INTO users (id, name, date_of_birth, country, city)
		VALUES (:id, :name, :date_of_birth, :country, :city)
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	s.selectAll, err = db.Preparex(`
		SELECT * FROM users
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare select all: %w", err)
	}
	s.selectWhereId, err = db.Preparex(`
		SELECT * FROM users WHERE id = ?
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare select: %w", err)
	}
	s.updateWhereId, err = db.Preparex(`
		UPDATE users SET name = ?, date_of_birth = ?, country = ?, city = ? WHERE id = ?
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare update: %w", err)
	}
	s.deleteWhereId, err = db.Preparex(`
		DELETE FROM users WHERE id = ?
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare delete: %w", err)
	}
	return s, nil
}

// List returns all records in store-native order. The order is not guaranteed
// stable across calls.
func (s *SQL) List(ctx context.Context) (recs []model.PersonRecord, err error) {
	defer observe("list", time.Now(), &err)
	var rows []userRow
	if err := s.selectAll.SelectContext(ctx, &rows); err != nil {
		return nil, unavailable("list users", err)
	}
	recs = make([]model.PersonRecord, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, row.decode())
	}
	return recs, nil
}

// Find returns the record with the given id, or ErrNotFound.
func (s *SQL) Find(ctx context.Context, id string) (rec model.PersonRecord, err error) {
	defer observe("find", time.Now(), &err)
	var row userRow
	if err := s.selectWhereId.GetContext(ctx, &row, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PersonRecord{}, ErrNotFound
		}
		return model.PersonRecord{}, unavailable("find user", err)
	}
	return row.decode(), nil
}

// Create stores a new record under a freshly assigned opaque id and returns
// that id. The record's own Id field is ignored.
func (s *SQL) Create(ctx context.Context, rec model.PersonRecord) (id string, err error) {
	defer observe("create", time.Now(), &err)
	id = uuid.NewString()
	if _, err := s.insert.ExecContext(ctx, encodeRow(id, rec)); err != nil {
		return "", unavailable("create user", err)
	}
	return id, nil
}

// Update replaces all fields of the record at id unconditionally. It returns
// ErrNotFound if the id no longer exists.
func (s *SQL) Update(ctx context.Context, id string, rec model.PersonRecord) (err error) {
	defer observe("update", time.Now(), &err)
	result, err := s.updateWhereId.ExecContext(ctx, rec.Name, rec.DateOfBirth, rec.Country, rec.City, id)
	if err != nil {
		return unavailable("update user", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return unavailable("update user", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the record at id. Deleting an id that does not exist is
// success; only transport failures surface.
func (s *SQL) Delete(ctx context.Context, id string) (err error) {
	defer observe("delete", time.Now(), &err)
	if _, err := s.deleteWhereId.ExecContext(ctx, id); err != nil {
		return unavailable("delete user", err)
	}
	return nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}
