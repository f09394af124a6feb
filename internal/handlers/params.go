package handlers

import "net/http"

// getParam reads a route parameter. pat stores path params in the
// query string under ":name"; the bare name and net/http PathValue
// are fallbacks so handlers stay testable without the router.
func getParam(r *http.Request, name string) string {
	if v := r.URL.Query().Get(":" + name); v != "" {
		return v
	}
	if v := r.URL.Query().Get(name); v != "" {
		return v
	}
	return r.PathValue(name)
}
