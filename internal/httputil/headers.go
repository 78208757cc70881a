package httputil

import "net/http"

// UserAgent identifies this client to the backend.
const UserAgent = "campusfair/1.0"

// JSONHeaders returns the headers sent with every backend API call.
func JSONHeaders() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	h.Set("Accept-Encoding", "gzip, br")
	h.Set("User-Agent", UserAgent)
	return h
}
