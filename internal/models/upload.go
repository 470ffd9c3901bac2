package models

type Upload struct {
	BaseModel
	UserID string     `gorm:"not null;index" json:"user_id"`
	Kind   UploadKind `gorm:"type:varchar(30);not null" json:"kind"` // "receipt", "cv", "course_material"
	Path   string     `gorm:"not null" json:"path"`

	OriginalName    string `gorm:"column:original_name" json:"original_name"`        // Original filename from user
	MimeType        string `json:"mime_type"`
	Size            int64  `json:"size"`
	URL             string `gorm:"column:url" json:"url"`                            // Public URL for accessing the file
	StorageProvider string `gorm:"column:storage_provider;default:'local'" json:"-"` // 'local', 's3', 'cloudflare_r2'
}
