package httpapi

import (
	"net/http"
	"strings"
)

// checkBearer 可选的 Bearer 鉴权
// 未携带 Authorization 头时放行（开放模式）；携带时 token 必须非空
func checkBearer(r *http.Request) bool {
	header := r.Header.Get("Authorization")
	if header == "" {
		return true
	}

	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || strings.TrimSpace(token) == "" {
		return false
	}
	return true
}

// withAuth 包装需要鉴权的 Handler
func withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !checkBearer(r) {
			writeJSON(w, http.StatusUnauthorized, Fail("invalid authorization token"))
			return
		}
		next(w, r)
	}
}
