package dto

// UnreadCountResponse is the unread badge count
type UnreadCountResponse struct {
	Unread int `json:"unread" example:"3"`
}

// MarkAllReadResponse reports how many notifications changed
type MarkAllReadResponse struct {
	Updated int `json:"updated" example:"3"`
}

// BroadcastRequest lets an admin push a notification to a role or everyone
type BroadcastRequest struct {
	Title   string `json:"title" binding:"required,max=120"`
	Message string `json:"message" binding:"required,max=1000"`
	Role    string `json:"role" binding:"omitempty,oneof=ADMIN STUDENT COMPANY"`
	Link    string `json:"link"`
}
