package transport

// Response statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope wraps every API response. Error holds the localized message,
// Code the stable machine-readable error code.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{Status: StatusSuccess, Data: data, Meta: meta}
}

// NewPage wraps one page of a listing; items is always rendered as an array.
func NewPage[T any](items []T, meta PageMeta) Envelope {
	if items == nil {
		items = []T{}
	}
	return Envelope{Status: StatusSuccess, Data: items, Meta: meta}
}

func NewError(code string, message interface{}, meta interface{}) Envelope {
	return Envelope{Status: StatusError, Code: code, Error: message, Meta: meta}
}

// PageMeta describes a paginated listing.
type PageMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}
