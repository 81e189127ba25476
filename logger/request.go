package logger

import (
	"github.com/kbukum/faultline/util"
)

// RequestContext is the HTTP context attached to an error record.
type RequestContext struct {
	ID      string              `json:"id,omitempty"`
	Method  string              `json:"method"`
	URL     string              `json:"url"`
	IP      string              `json:"ip"`
	Headers map[string]string   `json:"headers,omitempty"`
	Body    string              `json:"body,omitempty"`
	Params  map[string]string   `json:"params,omitempty"`
	Query   map[string][]string `json:"query,omitempty"`
}

// Sanitized returns a copy with credential headers masked, control
// characters stripped from the URL and the body capped at maxBody bytes.
func (r *RequestContext) Sanitized(maxBody int) *RequestContext {
	if r == nil {
		return nil
	}
	out := *r
	out.URL = util.SanitizeString(r.URL)
	out.Body = util.Truncate(r.Body, maxBody)
	if r.Headers != nil {
		out.Headers = make(map[string]string, len(r.Headers))
		for k, v := range r.Headers {
			out.Headers[k] = util.RedactHeader(k, v)
		}
	}
	return &out
}
