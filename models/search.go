package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SearchResult is a file view annotated by the ranker.
type SearchResult struct {
	FileView
	RelevanceScore         int    `json:"relevance_score"`
	HighlightedName        string `json:"highlighted_name"`
	HighlightedDescription string `json:"highlighted_description"`
}

// SearchHistory records one executed search per user, written best-effort.
type SearchHistory struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	Query       string             `bson:"query" json:"query"`
	Filters     string             `bson:"filters" json:"filters"`
	ResultCount int                `bson:"result_count" json:"result_count"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// SearchResponse is the payload of GET /search.
type SearchResponse struct {
	Query      string            `json:"query"`
	Results    []SearchResult    `json:"results"`
	Pagination Meta              `json:"pagination"`
	Filters    map[string]string `json:"filters"`
}
