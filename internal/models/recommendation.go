// internal/models/recommendation.go
package models

// Recommendation is a stored recommendation card. Rows are written only when
// the caller asks for it.
type Recommendation struct {
	BaseModel
	Title       string             `json:"title" gorm:"size:255;not null"`
	Priority    Priority           `json:"priority" gorm:"size:10;not null;index"`
	Type        RecommendationType `json:"type" gorm:"size:40;not null;index"`
	Description string             `json:"description" gorm:"type:text"`
	Impact      string             `json:"impact" gorm:"size:255"`
	ChangePct   *int               `json:"change_pct,omitempty"`
	ProductID   *uint              `json:"product_id,omitempty" gorm:"index"`
	ProductName string             `json:"product_name" gorm:"size:200"`
	Summary     string             `json:"summary" gorm:"type:text"`
	Source      string             `json:"source" gorm:"size:20"`
	Seed        int64              `json:"seed"`
}
