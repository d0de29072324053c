package models

import "time"

// WeeklyKPI aggregates schedule execution numbers for one week.
type WeeklyKPI struct {
	WeekStart          time.Time `json:"week_start"`
	ScheduledCount     int       `json:"scheduled_count"`
	CompletedCount     int       `json:"completed_count"`
	CompletionRate     float64   `json:"completion_rate"`
	OpenWorkOrders     int       `json:"open_work_orders"`
	OverdueUncompleted int       `json:"overdue_uncompleted"`
	LowStockParts      int       `json:"low_stock_parts"`
}

// SystemMetrics is a lightweight process snapshot exposed alongside the
// Prometheus endpoint for quick dashboard consumption.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"avg_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"avg_db_query_duration_ms"`
	SchedulesGenerated       uint64    `json:"schedules_generated"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
