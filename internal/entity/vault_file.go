package entity

import (
	"time"

	"github.com/google/uuid"
)

// VaultFile represents a discovered .sol file for data transfer between layers.
type VaultFile struct {
	ID           uuid.UUID `json:"id"`
	SourcePath   string    `json:"source_path"`
	Filename     string    `json:"filename"`
	FileExt      string    `json:"file_ext"`
	FileSize     int       `json:"file_size"`
	ContentHash  string    `json:"content_hash"` // sha-256, hex
	DiscoveredAt time.Time `json:"discovered_at"`
}
