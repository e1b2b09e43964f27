// Package response implements the wire envelope every HTTP handler returns.
package response

import "github.com/google/uuid"

// Code is the response_code enum carried in every envelope, independent of
// HTTP status.
type Code uint16

const (
	CodeOK         Code = 0
	CodeAuth       Code = 1
	CodeInput      Code = 2
	CodeServer     Code = 3
	CodeTimeout    Code = 4
	CodeDatabase   Code = 5
	CodeValidation Code = 6
)

// Envelope is the BaseResponse wire shape returned by every endpoint.
type Envelope struct {
	Data            any    `json:"data"`
	ResponseMessage string `json:"response_message"`
	ResponseCode    Code   `json:"response_code"`
	IsSuccess       bool   `json:"is_success"`
	RequestID       string `json:"request_id"`
}

// OK builds a success envelope carrying data.
func OK(requestID string, data any) Envelope {
	return Envelope{
		Data:            data,
		ResponseMessage: "OK",
		ResponseCode:    CodeOK,
		IsSuccess:       true,
		RequestID:       requestID,
	}
}

// Err builds a failure envelope with no data payload.
func Err(requestID string, code Code, message string) Envelope {
	return Envelope{
		Data:            nil,
		ResponseMessage: message,
		ResponseCode:    code,
		IsSuccess:       false,
		RequestID:       requestID,
	}
}

// NewRequestID generates a UUIDv4 request id, used when an inbound request
// carries none.
func NewRequestID() string {
	return uuid.New().String()
}
