// internal/models/creative.go
package models

import "time"

// MaxActiveCreatives caps active creatives per campaign.
const MaxActiveCreatives = 5

type Creative struct {
	ID          string     `json:"id"`
	CampaignID  string     `json:"campaign_id"`
	File        string     `json:"file,omitempty"` // base64 payload, empty for URL creatives
	FileName    string     `json:"file_name,omitempty"`
	ExternalURL string     `json:"external_url,omitempty"`
	StorageURL  string     `json:"storage_url,omitempty"` // S3 object URL for uploaded files
	Active      bool       `json:"active"`
	Order       int        `json:"order"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// HasPayload reports whether the creative carries either a file or an
// external URL. The two are mutually exclusive in practice.
func (c *Creative) HasPayload() bool {
	return c.File != "" || c.ExternalURL != "" || c.StorageURL != ""
}

type CreateCreativeRequest struct {
	File        string `json:"file,omitempty"`
	FileName    string `json:"file_name,omitempty"`
	ExternalURL string `json:"external_url,omitempty" validate:"omitempty,url"`
	Active      *bool  `json:"active,omitempty"`
	Order       *int   `json:"order,omitempty" validate:"omitempty,min=0"`
}

type UpdateCreativeRequest struct {
	File        *string `json:"file,omitempty"`
	FileName    *string `json:"file_name,omitempty"`
	ExternalURL *string `json:"external_url,omitempty" validate:"omitempty,url"`
	Active      *bool   `json:"active,omitempty"`
	Order       *int    `json:"order,omitempty" validate:"omitempty,min=0"`
}
