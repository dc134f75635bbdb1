package models

import "time"

// GalleryImage is a published tattoo photo.
type GalleryImage struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"image_url"`
	ArtistID  int64     `json:"artist_id,omitempty"`
	Revision  int64     `json:"revision,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (g GalleryImage) RecordID() int64       { return g.ID }
func (g GalleryImage) RecordRevision() int64 { return g.Revision }

// UploadImageRequest is the gallery upload form. File constraints are
// enforced locally before upload.
type UploadImageRequest struct {
	Title string `json:"title" validate:"required"`

	FileName string `json:"-"`
	FileMIME string `json:"-"`
	FileSize int64  `json:"-"`
}
