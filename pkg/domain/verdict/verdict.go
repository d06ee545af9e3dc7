package verdict

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ClearVault/MediaGuard/pkg/moderation"
)

// Record is the persisted audit entry for one moderation decision. Written
// for compliance review; never updated after creation.
type Record struct {
	ID                 uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MediaType          string         `json:"media_type"`
	MediaHash          string         `json:"media_hash" gorm:"index"`
	Verdict            string         `json:"verdict"`
	RejectionReason    string         `json:"rejection_reason"`
	AggregateRiskScore float64        `json:"aggregate_risk_score"`
	Categories         CategoriesJSON `json:"categories" gorm:"type:jsonb"`
	FrameCount         int            `json:"frame_count"`
	StorageKey         string         `json:"storage_key"`
	CreatedAt          time.Time      `json:"created_at"`
}

func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.CreatedAt = time.Now()
	return nil
}

func (r *Record) TableName() string {
	return "moderation_verdicts"
}

// CategoriesJSON stores the classifier findings as a jsonb column.
type CategoriesJSON []moderation.CategoryScore

func (c CategoriesJSON) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (c *CategoriesJSON) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*c = nil
		return nil
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("unsupported type for CategoriesJSON: %T", value)
	}
}
