// internal/workers/analytics/aggregate-dashboard-metrics/models.go
package aggregatedashboardmetrics

type Input struct {
	BureauID string `json:"bureauId"`
	// Window in days the stats cover; 0 means the default of 90.
	WindowDays int `json:"windowDays,omitempty"`
}

type Metrics struct {
	Submissions       int     `json:"submissions"`
	Placements        int     `json:"placements"`
	FeesBilled        float64 `json:"feesBilled"`
	AvgTimeToFillDays float64 `json:"avgTimeToFillDays"`
	ActiveContracts   int     `json:"activeContracts"`
}

type Output struct {
	BureauID   string  `json:"bureauId"`
	WindowDays int     `json:"windowDays"`
	Metrics    Metrics `json:"metrics"`
	FromCache  bool    `json:"fromCache"`
}
