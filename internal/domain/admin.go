package domain

type AdminInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type SearchRecord struct {
	ID           int64    `json:"id"`
	Age          int      `json:"age"`
	Budget       float64  `json:"budget"`
	Gender       string   `json:"gender,omitempty"`
	Relationship string   `json:"relationship,omitempty"`
	Interests    []string `json:"interests"`
	ResultsCount int      `json:"results_count"`
	CreatedAt    string   `json:"created_at,omitempty"`
}

type CategoryStat struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Stats is the admin dashboard payload.
type Stats struct {
	TotalStores    int            `json:"total_stores"`
	TotalGifts     int            `json:"total_gifts"`
	TotalSearches  int            `json:"total_searches"`
	RecentSearches []SearchRecord `json:"recent_searches"`
	CategoryStats  []CategoryStat `json:"category_stats"`
}
