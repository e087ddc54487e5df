package dto

type TriggerIngestionRequest struct {
	DocumentIDs []string `json:"document_ids" binding:"required"`
}

type ListJobsRequest struct {
	PageSize int    `form:"page_size"`
	Cursor   string `form:"cursor"`
}

type ListJobsResponse struct {
	Jobs       []JobDTO `json:"jobs"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

type JobDTO struct {
	JobID       string   `json:"job_id"`
	Status      string   `json:"status"`
	DocumentIDs []string `json:"document_ids"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}
