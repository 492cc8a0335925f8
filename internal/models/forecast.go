// internal/models/forecast.go
package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrImmutableForecast is returned by any attempt to update or delete a
// persisted forecast run or entry.
var ErrImmutableForecast = errors.New("forecast history is append-only")

// ForecastRun is one versioned batch of predictions.
type ForecastRun struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string          `json:"name" gorm:"size:120;not null"`
	Algorithm string          `json:"algorithm" gorm:"size:80;not null"`
	Version   string          `json:"version" gorm:"size:40"`
	Metadata  JSONB           `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt time.Time       `json:"created_at" gorm:"index"`
	Entries   []ForecastEntry `json:"entries,omitempty" gorm:"foreignKey:RunID"`
}

func (r *ForecastRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Runs and entries are append-only. The hooks only fire for writes that go
// through the models, so raw Table/Exec writes are also guarded by the
// triggers installed in database.RunMigrations.
func (r *ForecastRun) BeforeUpdate(tx *gorm.DB) error { return ErrImmutableForecast }
func (r *ForecastRun) BeforeDelete(tx *gorm.DB) error { return ErrImmutableForecast }

// ForecastEntry is a single predicted value. Month entries carry PeriodStart,
// product entries ProductID and category entries Category.
type ForecastEntry struct {
	ID          uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	RunID       uuid.UUID    `json:"run_id" gorm:"type:uuid;not null;index"`
	Kind        ForecastKind `json:"kind" gorm:"size:40;not null;index"`
	Label       string       `json:"label" gorm:"size:120"`
	PeriodStart *time.Time   `json:"period_start,omitempty"`
	ProductID   *uint        `json:"product_id,omitempty" gorm:"index"`
	Category    string       `json:"category,omitempty" gorm:"size:100"`
	Value       float64      `json:"value"`
	Confidence  *int         `json:"confidence,omitempty"`
	Metadata    JSONB        `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time    `json:"created_at"`
}

func (e *ForecastEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (e *ForecastEntry) BeforeUpdate(tx *gorm.DB) error { return ErrImmutableForecast }
func (e *ForecastEntry) BeforeDelete(tx *gorm.DB) error { return ErrImmutableForecast }

// Source reads the source tag written into the entry metadata.
func (e *ForecastEntry) Source() ForecastSource {
	if e.Metadata == nil {
		return ""
	}
	if s, ok := e.Metadata["source"].(string); ok {
		return ForecastSource(s)
	}
	return ""
}
