package dto

type Message struct {
	Message string `json:"message"`
}
