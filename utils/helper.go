package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StringToObjectID converts string to MongoDB ObjectID
func StringToObjectID(s string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(s)
}

// IsValidObjectID checks if string is valid MongoDB ObjectID
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}

// FormatFileSize formats file size in human-readable format
func FormatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// ParsePage parses a page query value, defaulting to 1.
func ParsePage(s string) int {
	page, err := strconv.Atoi(s)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ParseLimit parses a page-size query value, bounded to [1, 100], default 20.
func ParseLimit(s string) int {
	limit, err := strconv.Atoi(s)
	if err != nil || limit < 1 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}

// ParseSizeParam parses an optional byte-size facet value.
func ParseSizeParam(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	size, err := strconv.ParseInt(s, 10, 64)
	if err != nil || size < 0 {
		return nil, fmt.Errorf("must be a non-negative integer")
	}
	return &size, nil
}

// ParseDateParam parses an optional date facet value, accepting RFC3339 or
// plain YYYY-MM-DD.
func ParseDateParam(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, nil
	}
	return nil, fmt.Errorf("must be RFC3339 or YYYY-MM-DD")
}

// ParseTagsParam splits a comma-separated tag list, lowercasing each name.
func ParseTagsParam(s string) []string {
	if s == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(s, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// SliceContains reports whether a string slice contains the given value.
func SliceContains(slice []string, value string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

// NormalizeTagName lowercases and trims a tag name.
func NormalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
