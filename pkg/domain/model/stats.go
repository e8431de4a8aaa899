package model

import "github.com/secmon-lab/argus/pkg/domain/types"

// CaseStats summarizes the cases visible to a principal
type CaseStats struct {
	Total            int                      `json:"total"`
	Open             int                      `json:"open"`
	Closed           int                      `json:"closed"`
	Unassigned       int                      `json:"unassigned"`
	ByStatus         map[types.CaseStatus]int `json:"byStatus"`
	ByPriority       map[types.Priority]int   `json:"byPriority"`
	AverageRiskScore float64                  `json:"averageRiskScore"`
}

// NewCaseStats aggregates cases
func NewCaseStats(cases []*Case) *CaseStats {
	stats := &CaseStats{
		ByStatus:   make(map[types.CaseStatus]int),
		ByPriority: make(map[types.Priority]int),
	}

	var riskTotal int
	for _, c := range cases {
		stats.Total++
		if c.IsClosed() {
			stats.Closed++
		} else {
			stats.Open++
		}
		if c.AssignedTo == "" {
			stats.Unassigned++
		}
		stats.ByStatus[c.Status.Normalize()]++
		stats.ByPriority[c.Priority.Normalize()]++
		riskTotal += c.RiskScore
	}

	if stats.Total > 0 {
		stats.AverageRiskScore = float64(riskTotal) / float64(stats.Total)
	}
	return stats
}
