// Copyright 2026 The Servant Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package problem

import (
	"encoding/json"
	"net/http"
)

// ContentType is the Content-Type of RFC 9457 problem responses.
const ContentType = "application/problem+json; charset=utf-8"

// Detail represents an RFC 9457 problem detail.
//
// Example:
//
//	p := problem.Detail{
//		Type:     "about:blank",
//		Title:    "Unsupported Media Type",
//		Status:   415,
//		Instance: "/home/5",
//	}
type Detail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"-"` // Marshaled inline
}

// FromStatus builds a minimal problem detail for an HTTP status code,
// with the request path as the instance URI.
func FromStatus(status int, instance string) Detail {
	return Detail{
		Type:     "about:blank",
		Title:    http.StatusText(status),
		Status:   status,
		Instance: instance,
	}
}

// MarshalJSON merges extension fields into the main JSON object while
// protecting the reserved RFC 9457 field names.
func (p Detail) MarshalJSON() ([]byte, error) {
	m := map[string]any{
		"type":   p.Type,
		"title":  p.Title,
		"status": p.Status,
	}
	if p.Detail != "" {
		m["detail"] = p.Detail
	}
	if p.Instance != "" {
		m["instance"] = p.Instance
	}
	for k, v := range p.Extensions {
		if k != "type" && k != "title" && k != "status" && k != "detail" && k != "instance" {
			m[k] = v
		}
	}

	return json.Marshal(m)
}

// Write renders the problem detail to an HTTP response.
//
// Marshal errors are ignored: the status line and content type are
// already committed by the time the body is written, and a problem
// detail built from plain fields cannot fail to marshal.
func (p Detail) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(p.Status)
	body, err := json.Marshal(p)
	if err != nil {
		return
	}
	_, _ = w.Write(body)
}
