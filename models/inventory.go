package models

import "github.com/uptrace/bun"

// TargetFaceCategory is the inventory category holding paper/plastic target faces.
const TargetFaceCategory = "Target Faces"

// InventoryCategory groups inventory items, e.g. "Bows" or "Target Faces".
type InventoryCategory struct {
	bun.BaseModel `bun:"table:inventory_categories,alias:ic"`

	ID          int     `bun:"id,pk,autoincrement" json:"id"`
	Name        string  `bun:"name,notnull,unique" json:"name"`
	Description *string `bun:"description" json:"description,omitempty"`
}

// InventoryItem is a stock line. FaceSizeCM is set for target faces;
// Attributes keeps the free-form per-category data imported from the old system.
type InventoryItem struct {
	bun.BaseModel `bun:"table:inventory_items,alias:ii"`

	ID         int            `bun:"id,pk,autoincrement" json:"id"`
	CategoryID int            `bun:"category_id,notnull" json:"categoryID"`
	Name       string         `bun:"name,notnull" json:"name"`
	Quantity   int            `bun:"quantity,notnull,default:0" json:"quantity"`
	Unit       string         `bun:"unit,notnull,default:'piece'" json:"unit"`
	FaceSizeCM *int           `bun:"face_size_cm" json:"faceSizeCm,omitempty"`
	Attributes map[string]any `bun:"attributes,type:jsonb,nullzero" json:"attributes,omitempty"`

	Category *InventoryCategory `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`
}
