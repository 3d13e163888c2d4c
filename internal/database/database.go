package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"go-approvals/internal/config"

	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	_ "modernc.org/sqlite"
)

// Database is the handle shared by every repository. Exactly one of SQL and
// Mongo is set, depending on Driver.
type Database struct {
	Driver string
	SQL    *sql.DB
	Mongo  *mongo.Database

	client *mongo.Client
}

// NewDatabase opens the configured store, applies the schema and registers
// lifecycle hooks to close it.
func NewDatabase(lc fx.Lifecycle, cfg *config.Config) (*Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Printf("Closing %s store...", db.Driver)
			return db.Close(ctx)
		},
	})

	return db, nil
}

// Open connects to the store named by cfg.StoreDriver and migrates it.
func Open(ctx context.Context, cfg *config.Config) (*Database, error) {
	var (
		db  *Database
		err error
	)
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		db, err = OpenSQLite(cfg.SQLitePath)
	case config.DriverPostgres:
		db, err = openPostgres(ctx, cfg.PostgresDSN)
	case config.DriverMongo:
		db, err = openMongo(ctx, cfg.MongoURI, cfg.DBName)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close(ctx)
		return nil, err
	}
	return db, nil
}

// OpenSQLite opens (or creates) a SQLite database. Use ":memory:" for an
// ephemeral store.
func OpenSQLite(path string) (*Database, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	sqlDB.SetMaxOpenConns(1) // prevent SQLITE_BUSY and keep :memory: on one connection
	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	log.Printf("Opened SQLite store at %s", path)
	return &Database{Driver: config.DriverSQLite, SQL: sqlDB}, nil
}

func openPostgres(ctx context.Context, dsn string) (*Database, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	log.Println("Connected to PostgreSQL!")
	return &Database{Driver: config.DriverPostgres, SQL: sqlDB}, nil
}

func openMongo(ctx context.Context, uri, name string) (*Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	log.Println("Connected to MongoDB!")
	return &Database{Driver: config.DriverMongo, Mongo: client.Database(name), client: client}, nil
}

// Close releases the underlying connection pool.
func (d *Database) Close(ctx context.Context) error {
	if d.client != nil {
		return d.client.Disconnect(ctx)
	}
	if d.SQL != nil {
		return d.SQL.Close()
	}
	return nil
}

// IsMongo reports whether repositories should use the document backend.
func (d *Database) IsMongo() bool {
	return d.Driver == config.DriverMongo
}

// Ping checks the store is reachable.
func (d *Database) Ping(ctx context.Context) error {
	if d.client != nil {
		return d.client.Ping(ctx, nil)
	}
	return d.SQL.PingContext(ctx)
}
