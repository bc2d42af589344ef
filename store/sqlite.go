package store

import (
	"strings"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLite result codes for constraint failures. The low byte of an extended
// code is its primary code.
const (
	sqliteConstraint           = 19
	sqliteConstraintForeignKey = 787
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

type sqliteError interface {
	error
	Code() int
}

// sqliteConstraintKind maps a constraint failure onto ErrDuplicate or
// ErrNotFound, or returns nil for anything else.
func sqliteConstraintKind(err sqliteError) error {
	switch err.Code() {
	case sqliteConstraintUnique, sqliteConstraintPrimaryKey:
		return ErrDuplicate
	case sqliteConstraintForeignKey:
		return ErrNotFound
	}
	if err.Code()&0xff != sqliteConstraint {
		return nil
	}
	// Connections without extended result codes only report the primary code.
	switch msg := err.Error(); {
	case strings.Contains(msg, "FOREIGN KEY"):
		return ErrNotFound
	case strings.Contains(msg, "UNIQUE"), strings.Contains(msg, "PRIMARY KEY"):
		return ErrDuplicate
	}
	return nil
}

const memoryDSN = ":memory:?_pragma=foreign_keys(1)"

// OpenMemory returns a GormStore over a private in-process SQLite database.
// Nothing survives Close.
func OpenMemory() (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(memoryDSN), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: newIncreasingClock(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)

	if err := Migrate(db); err != nil {
		sqlDB.Close()
		return nil, errors.Wrap(err, "migrate sqlite")
	}
	return NewGormStore(db), nil
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// newIncreasingClock never returns the same instant twice, so rows written
// back to back keep their insertion order under ORDER BY created_at.
func newIncreasingClock() func() time.Time {
	var (
		mu   sync.Mutex
		last time.Time
	)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := time.Now()
		if !now.After(last) {
			now = last.Add(time.Microsecond)
		}
		last = now
		return now
	}
}
