package models

import "time"

// ContentEntry tracks the last seen content of one source file.
type ContentEntry struct {
	FilePath    string    `json:"file_path"`
	ContentHash uint64    `json:"content_hash"`
	Size        int64     `json:"size"`
	SeenAt      time.Time `json:"seen_at"`
}

// CacheStats provides metrics about cache performance
type CacheStats struct {
	TotalFiles  int       `json:"total_files"`
	CacheHits   int64     `json:"cache_hits"`
	CacheMisses int64     `json:"cache_misses"`
	HitRate     float64   `json:"hit_rate"`
	LastUpdate  time.Time `json:"last_update"`
}
