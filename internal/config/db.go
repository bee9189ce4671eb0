package config

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"storefront/internal/utils"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	DriverMemory = "memory"
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

var (
	DB   *sql.DB
	dbMu sync.Mutex
)

// ConnectDB opens the shared DB connection for the configured persistence
// driver (idempotent). The memory driver needs no connection and returns nil.
func ConnectDB(env Env) (*sql.DB, error) {
	dbMu.Lock()
	defer dbMu.Unlock()

	if DB != nil {
		return DB, nil
	}

	driver := strings.ToLower(strings.TrimSpace(env.PersistenceDriver))
	dsn := strings.TrimSpace(env.DatabaseDSN)
	switch driver {
	case "", DriverMemory:
		return nil, nil
	case DriverMySQL:
		if dsn == "" {
			dsn = "root:@tcp(127.0.0.1:3306)/storefront?parseTime=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"
		}
	case DriverSQLite, "sqlite3":
		driver = DriverSQLite
		if dsn == "" {
			dsn = "file:storefront.db?_pragma=busy_timeout(5000)"
		}
	default:
		return nil, fmt.Errorf("unknown persistence driver %q", env.PersistenceDriver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// one writer at a time
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(10 * time.Minute)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	DB = db
	utils.L().Info("database connected", zap.String("driver", driver))
	return DB, nil
}

// EnsureDB pings the shared connection.
func EnsureDB(ctx context.Context) error {
	dbMu.Lock()
	defer dbMu.Unlock()

	if DB == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return DB.PingContext(ctx)
}

func CloseDB() {
	dbMu.Lock()
	defer dbMu.Unlock()

	if DB != nil {
		_ = DB.Close()
		DB = nil
	}
}
