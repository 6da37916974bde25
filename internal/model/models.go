// Package model defines the persisted data models for the clock bot.
package model

import "time"

// LedgerEntry is one clock-in/out record as stored by the SQL backends.
type LedgerEntry struct {
	ID         int64     `db:"id" gorm:"primaryKey;autoIncrement"`
	Name       string    `db:"name" gorm:"not null;index:idx_ledger_entries_name_time,priority:1"`
	Action     string    `db:"action" gorm:"not null"`
	RecordedAt time.Time `db:"recorded_at" gorm:"not null;index:idx_ledger_entries_name_time,priority:2"`
	// Zone is the IANA name or abbreviation the timestamp was captured in.
	Zone      string    `db:"zone"`
	CreatedAt time.Time `db:"created_at" gorm:"autoCreateTime"`
}

// TableName sets the table name for gorm.
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
