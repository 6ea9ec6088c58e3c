package filehost

// Response is the JSON envelope returned by every mutating endpoint.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// OK builds a successful Response.
func OK(message string) Response {
	return Response{Success: true, Message: message}
}

// Fail builds a failed Response.
func Fail(message string) Response {
	return Response{Success: false, Message: message}
}
