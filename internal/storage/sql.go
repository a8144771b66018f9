package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errMissingDatabase = errors.New("storage: database handle is required")

const (
	columnEntryKey   = "entry_key"
	queryEntryKey    = columnEntryKey + " = ?"
	queryEntryPrefix = columnEntryKey + ` LIKE ? ESCAPE '\'`
	orderEntryKeyAsc = columnEntryKey + " ASC"
)

// Entry is a single persisted key-value pair.
type Entry struct {
	Key             string `gorm:"column:entry_key;primaryKey;size:190;not null"`
	Value           string `gorm:"column:entry_value;type:text;not null"`
	UpdatedAtMillis int64  `gorm:"column:updated_at_ms;not null"`
}

// TableName provides the explicit table binding for GORM.
func (Entry) TableName() string {
	return "kv_entries"
}

// SQLConfig describes the dependencies of the SQL-backed store.
type SQLConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	Logger   *zap.Logger
}

// SQL persists entries in a gorm-managed table, one database file per profile.
type SQL struct {
	db     *gorm.DB
	clock  func() time.Time
	logger *zap.Logger
}

// NewSQL constructs a SQL store. The kv_entries table must already be migrated.
func NewSQL(cfg SQLConfig) (*SQL, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQL{db: cfg.Database, clock: clock, logger: logger}, nil
}

func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}
	var entry Entry
	err := s.db.WithContext(ctx).Where(queryEntryKey, key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		s.logger.Error("kv lookup failed", zap.String("key", key), zap.Error(err))
		return "", false, err
	}
	return entry.Value, true, nil
}

func (s *SQL) Set(ctx context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	entry := Entry{
		Key:             key,
		Value:           value,
		UpdatedAtMillis: s.clock().UTC().UnixMilli(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: columnEntryKey}},
		DoUpdates: clause.AssignmentColumns([]string{"entry_value", "updated_at_ms"}),
	}).Create(&entry).Error
	if err != nil {
		s.logger.Error("kv upsert failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Where(queryEntryKey, key).Delete(&Entry{}).Error; err != nil {
		s.logger.Error("kv delete failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// Keys returns the stored keys sharing prefix, sorted lexically.
func (s *SQL) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.db.WithContext(ctx).
		Model(&Entry{}).
		Where(queryEntryPrefix, escapeLike(prefix)+"%").
		Order(orderEntryKeyAsc).
		Pluck(columnEntryKey, &keys).Error
	if err != nil {
		s.logger.Error("kv key scan failed", zap.String("prefix", prefix), zap.Error(err))
		return nil, err
	}
	return keys, nil
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
