package model

import "time"

type Post struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	Tags      []string  `json:"tags"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	Excerpt   string    `json:"excerpt,omitempty"`
	Content   string    `json:"content"` // rendered HTML
}
