package models

import "encoding/json"

// ErrorResponse - стандартная структура для ответа об ошибке в формате JSON.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse - успешный ответ обработчика события.
type MessageResponse struct {
	Message  string          `json:"message"`
	Variant  string          `json:"variant,omitempty"`
	Sent     int             `json:"sent,omitempty"`
	Response json.RawMessage `json:"response,omitempty"`
}
