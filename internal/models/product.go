// internal/models/product.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// MaxTags caps the number of tags a listing may carry.
const MaxTags = 8

// Categories lists the marketplace's standard product categories. AI
// analysis may suggest others; these seed the listing form.
var Categories = []string{
	"Ceramics",
	"Pottery",
	"Textiles & Fabrics",
	"Jewelry & Accessories",
	"Wood Crafts",
	"Metalwork",
	"Home Decor",
	"Art & Collectibles",
	"Traditional Crafts",
}

type Product struct {
	BaseModel
	CreatedBy         uuid.UUID      `json:"created_by" gorm:"type:uuid;not null;index"`
	Title             string         `json:"title" gorm:"size:255;not null"`
	Price             float64        `json:"price" gorm:"type:decimal(10,2);not null"`
	Description       string         `json:"description" gorm:"type:text"`
	Story             string         `json:"story" gorm:"type:text"`
	Category          string         `json:"category" gorm:"size:100;index"`
	Tags              pq.StringArray `json:"tags" gorm:"type:text[]"`
	IsEcoFriendly     bool           `json:"is_eco_friendly" gorm:"default:false"`
	HasGlobalShipping bool           `json:"has_global_shipping" gorm:"default:false"`
	AuthenticityBadge string         `json:"authenticity_badge" gorm:"size:100"`
	ImageURL          string         `json:"image_url" gorm:"size:1024"`
	ImagePath         string         `json:"image_path" gorm:"size:512"`
	Materials         pq.StringArray `json:"materials" gorm:"type:text[]"`
	Techniques        pq.StringArray `json:"techniques" gorm:"type:text[]"`
	Colors            pq.StringArray `json:"colors" gorm:"type:text[]"`
	Style             string         `json:"style" gorm:"size:255"`
	Status            ProductStatus  `json:"status" gorm:"type:varchar(20);default:'draft';index"`
	Views             int64          `json:"views" gorm:"default:0"`
	Likes             int64          `json:"likes" gorm:"default:0"`
	Shipping          ShippingInfo   `json:"shipping" gorm:"type:jsonb"`

	Creator User `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
}

// ShippingInfo is stored as a single jsonb column.
type ShippingInfo struct {
	EstimatedDays string   `json:"estimated_days"`
	Cost          float64  `json:"cost"`
	Regions       []string `json:"regions"`
}

func (s ShippingInfo) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *ShippingInfo) Scan(value interface{}) error {
	if value == nil {
		*s = ShippingInfo{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, s)
}

// NormalizeTags trims, lowercases, drops empties, dedupes while keeping
// first-seen order, and caps the list at MaxTags.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	normalized := make([]string, 0, len(tags))

	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		normalized = append(normalized, tag)
		if len(normalized) == MaxTags {
			break
		}
	}

	return normalized
}

// MatchesSearch reports whether the product matches a case-insensitive
// substring search across title, description, tags, materials and category.
func (p *Product) MatchesSearch(term string) bool {
	term = strings.ToLower(term)
	if term == "" {
		return true
	}

	if strings.Contains(strings.ToLower(p.Title), term) ||
		strings.Contains(strings.ToLower(p.Description), term) ||
		strings.Contains(strings.ToLower(p.Category), term) {
		return true
	}

	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}

	for _, material := range p.Materials {
		if strings.Contains(strings.ToLower(material), term) {
			return true
		}
	}

	return false
}
