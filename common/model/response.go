package model

// Response HTTP 接口统一信封：{meta, data}
type Response struct {
	Meta MetaInfo    `json:"meta"`
	Data interface{} `json:"data,omitempty"`
}

// MetaInfo code 与 HTTP 状态码一致
type MetaInfo struct {
	Code      int           `json:"code"`
	Type      string        `json:"type"`
	Message   string        `json:"message"`
	RequestID string        `json:"request_id,omitempty"`
	Details   []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail 参数校验失败的字段
type ErrorDetail struct {
	Path string `json:"path"`
	Info string `json:"info"`
}

const (
	ResponseTypeOK              = "OK"
	ResponseTypeValidationError = "ValidationError"
	ResponseTypeUnauthorized    = "Unauthorized"
	ResponseTypeNotFound        = "NotFound"
	ResponseTypeConflict        = "Conflict"
	ResponseTypeUpstreamError   = "UpstreamError"
	ResponseTypeInternalError   = "InternalError"
)
