// Package httputil provides shared HTTP response/request utilities for handlers.
//
// Every handler file should use these helpers instead of writing raw
// http.ResponseWriter calls. API routes return JSON {"error": "..."}
// envelopes with conventional status codes; keeping that shape in one
// place is what the frontend relies on.
package httputil
