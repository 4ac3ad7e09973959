package http

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Username    string   `json:"username"`
	OnlineUsers []string `json:"online_users"`
}

type MessageItem struct {
	ID        uint64 `json:"id"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type UploadResponse struct {
	Filename string `json:"filename"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
