package api

import "net/http"

// serviceHandler dispatches on the full procedure path, as generated Connect code does.
func serviceHandler(service string, procedures map[string]http.Handler) (string, http.Handler) {
	return "/" + service + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := procedures[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}
