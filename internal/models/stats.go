package models

// MonthlyViews is the view total of posts created in one calendar month
// (1-12, all years folded together).
type MonthlyViews struct {
	Month int   `json:"month"`
	Views int64 `json:"views"`
}

// Stats is the dashboard aggregate. TotalPosts includes trashed posts.
type Stats struct {
	TotalPosts    int64          `json:"totalPosts"`
	TotalMessages int64          `json:"totalMessages"`
	TotalViews    int64          `json:"totalViews"`
	MonthlyViews  []MonthlyViews `json:"monthlyViews"`
}
