package models

// Result is the envelope every console endpoint answers with.
type Result struct {
	Success          bool     `json:"success"`
	Data             any      `json:"data,omitempty"`
	Error            string   `json:"error,omitempty"`
	Code             string   `json:"code,omitempty"`
	ValidationErrors []string `json:"validationErrors,omitempty"`
	Redirect         string   `json:"redirect,omitempty"`
}

// OK wraps data in a successful result.
func OK(data any) Result {
	return Result{Success: true, Data: data}
}
