package db_store

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migrate_mysql "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"gopkg.in/guregu/null.v4"
)

// Search is one row of search history. Only the outcome is kept, never
// the polygon.
type Search struct {
	Id          int64       `db:"id" json:"id"`
	SessionId   string      `db:"session_id" json:"-"`
	DisplayName string      `db:"display_name" json:"display_name"`
	Query       string      `db:"query" json:"query"`
	Category    string      `db:"category" json:"category"`
	Status      string      `db:"status" json:"status"`
	OSMId       null.String `db:"osm_id" json:"osm_id"`
	AreaM2      null.Float  `db:"area_m2" json:"area_m2"`
	Error       null.String `db:"error" json:"error"`
	CreatedAt   int64       `db:"created_at" json:"created_at"`
}

const (
	searchColumns = "id,session_id,display_name,query,category,status,osm_id,area_m2,error,created_at"
)

type HistoryDBStore struct {
	logger *logrus.Logger
	db     *sqlx.DB
}

func (st *HistoryDBStore) RecordSearch(ctx context.Context, search *Search) error {
	const query = "INSERT INTO searches (session_id,display_name,query,category,status,osm_id,area_m2,error,created_at) VALUES (:session_id,:display_name,:query,:category,:status,:osm_id,:area_m2,:error,:created_at)"

	if search.CreatedAt == 0 {
		search.CreatedAt = time.Now().Unix()
	}

	res, err := st.db.NamedExecContext(ctx, query, search)
	if err != nil {
		return err
	}

	if id, err := res.LastInsertId(); err == nil {
		search.Id = id
	}

	return nil
}

// GetRecentSearches returns the newest searches first.
func (st *HistoryDBStore) GetRecentSearches(ctx context.Context, limit int) (searches []*Search, err error) {
	const query = "SELECT " + searchColumns + " FROM searches ORDER BY id DESC LIMIT ?"

	rows, err := st.db.QueryxContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer func() { err = closeRows(rows, err) }()

	searches = make([]*Search, 0, limit)

	for rows.Next() {
		var search Search
		if err = rows.StructScan(&search); err != nil {
			return nil, err
		}
		searches = append(searches, &search)
	}

	return searches, rows.Err()
}

// PurgeOlderThan removes history older than 'age' and returns the number
// of rows removed.
func (st *HistoryDBStore) PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	const query = "DELETE FROM searches WHERE created_at < ?"

	res, err := st.db.ExecContext(ctx, query, time.Now().Add(-age).Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (st *HistoryDBStore) Close() error {
	return st.db.Close()
}

// closeRows keeps the first error seen.
func closeRows(rows *sqlx.Rows, origErr error) error {
	closeErr := rows.Close()
	if origErr != nil {
		return origErr
	}
	return closeErr
}

func runMigrations(db *sqlx.DB, config DBConfig, migratePath string) error {
	migrateConfig := &migrate_mysql.Config{
		MigrationsTable: "coastline_schema_migrations",
		DatabaseName:    config.Db,
	}

	dbDriver, err := migrate_mysql.WithInstance(db.DB, migrateConfig)
	if err != nil {
		return err
	}

	if !strings.HasPrefix(migratePath, "file://") {
		migratePath = "file://" + migratePath
	}

	m, err := migrate.NewWithDatabaseInstance(migratePath, config.Db, dbDriver)
	if err != nil {
		return fmt.Errorf("failed to run history DB migration: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	return nil
}

func NewHistoryDBStore(config DBConfig, logger *logrus.Logger) (*HistoryDBStore, error) {
	db, err := sqlx.Connect("mysql", config.AsDSN())
	if err != nil {
		return nil, err
	}

	if config.MaxPool > 0 {
		db.SetMaxOpenConns(config.MaxPool)
	}

	if migratePath := config.MigrationsPath; migratePath == "" {
		logger.Infof("skipping history_db migrations: no path given")
	} else {
		logger.Infof("running history_db migrations")
		if err := runMigrations(db, config, migratePath); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &HistoryDBStore{
		logger: logger,
		db:     db,
	}, nil
}
