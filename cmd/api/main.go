// cmd/api/main.go
package main

import (
	"crypto/subtle"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"strings"
)

// The gateway stands in for the host identity layer: it proxies the
// directory service and enforces the edit-members gate on the role
// endpoint. Session handling and viewer resolution belong to the host.
func main() {
	directoryServiceURL, _ := url.Parse(getEnv("DIRECTORY_SERVICE_URL", "http://localhost:8083"))
	adminToken := os.Getenv("ADMIN_API_TOKEN")
	if adminToken == "" {
		log.Fatal("ADMIN_API_TOKEN must be set")
	}

	directoryProxy := httputil.NewSingleHostReverseProxy(directoryServiceURL)

	http.Handle("/api/v1/directory/role", requireAdminToken(adminToken, stripAPIPrefix(directoryProxy)))
	http.Handle("/api/v1/directory/", stripAPIPrefix(directoryProxy))

	port := getEnv("PORT", "8080")
	log.Printf("API Gateway listening on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, nil))
}

func stripAPIPrefix(next http.Handler) http.Handler {
	return http.StripPrefix("/api/v1/directory", next)
}

// requireAdminToken rejects requests that do not carry the admin bearer
// token. Only holders of the edit-members capability may reach the role
// endpoint.
func requireAdminToken(token string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		presented := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
