package entity

// ImageDescriptor describes one generated image before it is committed.
// Exactly one of URL and Error is set.
type ImageDescriptor struct {
	ID    string             `json:"id"`
	URL   string             `json:"url,omitempty"`
	Size  string             `json:"size,omitempty"`
	Error *ProviderItemError `json:"error,omitempty"`
}

type ProviderItemError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func (d ImageDescriptor) Failed() bool {
	return d.Error != nil
}
