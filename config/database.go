package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"writium/models"
)

// InitDB opens the Postgres pool and verifies connectivity.
func InitDB(cfg *Config, log *zap.SugaredLogger) (*gorm.DB, error) {
	dsn := withStatementTimeout(cfg.Database.DSN, cfg.Database.StatementTimeoutMillis)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, friendlyDBError(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxIdleTime(10 * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return nil, friendlyDBError(err)
	}

	log.Infow("database connected")
	return db, nil
}

// Migrate creates the schema and seeds the shared guest account.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Article{},
		&models.ArticleVersion{},
		&models.Comment{},
	); err != nil {
		return err
	}

	guest := models.User{Email: "guest@writium.local", DisplayName: "Guest user"}
	return db.FirstOrCreate(&guest, models.User{Email: guest.Email}).Error
}

// withStatementTimeout appends statement_timeout to URL-style DSNs so a
// runaway query cannot hold a pool slot forever.
func withStatementTimeout(dsn string, millis int) string {
	if millis <= 0 {
		return dsn
	}
	u, err := url.Parse(dsn)
	if err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
		return dsn
	}
	q := u.Query()
	if q.Get("statement_timeout") == "" {
		q.Set("statement_timeout", strconv.Itoa(millis))
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// friendlyDBError rewrites the two most common connection failures into
// actionable messages.
func friendlyDBError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "3D000":
			return fmt.Errorf("database does not exist: create it and run `writium migrate` (%w)", err)
		case "28P01":
			return fmt.Errorf("database connection failed: check user and password in DATABASE_URL (%w)", err)
		}
	}
	return err
}
