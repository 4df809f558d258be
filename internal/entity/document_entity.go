package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Document is one corpus entry owned by the indexing pipeline. The
// workflow only reads this table.
type Document struct {
	Id        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID       `gorm:"type:uuid;index;not null"`
	Title     string          `gorm:"type:varchar(255)"`
	Content   string          `gorm:"type:text"`
	Embedding pgvector.Vector `gorm:"type:vector(768)"` // text-embedding-004 / nomic-embed-text use 768 dimensions
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Document) TableName() string {
	return "documents"
}
