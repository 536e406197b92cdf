package models

import (
	"time"
)

// Draft is the create-post form state of one browser session.
type Draft struct {
	ID              uint      `json:"-" gorm:"primaryKey"`
	SessionID       string    `json:"-" gorm:"uniqueIndex;not null"`
	Title           string    `json:"title"`
	Description     string    `json:"description" gorm:"type:text"`
	Content         string    `json:"content" gorm:"type:text"`
	CoverImage      string    `json:"coverImage"`
	Category        []string  `json:"category" gorm:"serializer:json"`
	PendingCategory string    `json:"-"`
	Open            bool      `json:"-" gorm:"default:false"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}

// DraftForm carries the dialog fields posted by the browser.
type DraftForm struct {
	Title           string   `form:"title"`
	Description     string   `form:"description"`
	Content         string   `form:"content"`
	CoverImage      string   `form:"coverImage"`
	Category        []string `form:"category"`
	PendingCategory string   `form:"newCategory"`
}

func (d *Draft) Apply(f DraftForm) {
	d.Title = f.Title
	d.Description = f.Description
	d.Content = f.Content
	d.CoverImage = f.CoverImage
	d.Category = NormalizeCategories(f.Category)
	d.PendingCategory = f.PendingCategory
}

func (d *Draft) Reset() {
	d.Title = ""
	d.Description = ""
	d.Content = ""
	d.CoverImage = ""
	d.Category = []string{}
	d.PendingCategory = ""
	d.Open = false
}
