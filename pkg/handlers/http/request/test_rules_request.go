package request

type TestRulesRequest struct {
	Categories []CategoryScoreInput `json:"categories"`
}

type CategoryScoreInput struct {
	Category string  `json:"category"`
	Severity float64 `json:"severity"`
}
