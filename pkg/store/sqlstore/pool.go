package sqlstore

import (
	"database/sql"
	"time"
)

// PoolSettings bounds the connection pool of a backend.
type PoolSettings struct {
	MaxOpen         int           `mapstructure:"max_open"`
	MaxIdle         int           `mapstructure:"max_idle"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// DefaultPoolSettings keeps 5 idle connections, allows 10 more under load
// and recycles connections after 30 minutes.
func DefaultPoolSettings() PoolSettings {
	return PoolSettings{
		MaxOpen:         15,
		MaxIdle:         5,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

func (p PoolSettings) Apply(db *sql.DB) {
	if p.MaxOpen > 0 {
		db.SetMaxOpenConns(p.MaxOpen)
	}
	if p.MaxIdle > 0 {
		db.SetMaxIdleConns(p.MaxIdle)
	}
	if p.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(p.ConnMaxLifetime)
	}
	if p.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(p.ConnMaxIdleTime)
	}
}
