package request

type GetHistoryRequest struct {
	AgentID  string `json:"agent_id"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

type DeleteHistoryRequest struct {
	HistoryID string `json:"history_id"`
}
