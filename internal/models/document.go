// Package models defines the data structures shared by the search engine and its front ends.
package models

// Document is a corpus file as shown to a reader.
type Document struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Content string `json:"content"`
}
