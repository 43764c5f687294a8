package handler

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// NewErrorResponseWithData reports a failure together with the state the
// client should redraw from.
func NewErrorResponseWithData(message string, data interface{}) *Response {
	return &Response{
		Status:  "error",
		Message: message,
		Data:    data,
	}
}
