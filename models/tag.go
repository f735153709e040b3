package models

// TagType distinguishes curated tags from ones created on the fly
type TagType string

const (
	TagAdminDefined TagType = "admin-defined"
	TagUserDefined  TagType = "user-defined"
)

type Tag struct {
	Entity
	Name      string  `json:"name" gorm:"uniqueIndex;not null;size:50"`
	Type      TagType `json:"type" gorm:"not null;default:'user-defined'"`
	IsDeleted bool    `json:"isDeleted" gorm:"index"`
}
