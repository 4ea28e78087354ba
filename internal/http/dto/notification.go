package dto

type UnreadCount struct {
	Count int `json:"count"`
}

type SMSRequest struct {
	PhoneNumber any `json:"phone_number"`
	Message     any `json:"message"`
}
