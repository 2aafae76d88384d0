package models

// SystemStats is the admin dashboard snapshot. Counts cover live files
// only; active users are those seen within the last 30 days.
type SystemStats struct {
	TotalUsers   int64            `json:"total_users"`
	ActiveUsers  int64            `json:"active_users"`
	NewUsersWeek int64            `json:"new_users_week"`
	TotalFiles   int64            `json:"total_files"`
	TotalStorage int64            `json:"total_storage"`
	UploadsToday int64            `json:"uploads_today"`
	FilesByType  map[string]int64 `json:"files_by_type"`
}

type AdminUserListResponse struct {
	Users []User `json:"users"`
	Total int64  `json:"total"`
}
