package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterGuardianRoutes 注册危险评估 API 路由
func (r *Router) RegisterGuardianRoutes(g *GuardianHandler, ws *WSHandler) {
	// text analysis
	r.Handle("/guardian/api/v1/analyze/text", withAuth(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		g.AnalyzeText(w, req)
	}))

	// audio analysis (multipart upload)
	r.Handle("/guardian/api/v1/analyze/audio", withAuth(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		g.AnalyzeAudio(w, req)
	}))

	// direct heart rate ingestion
	r.Handle("/guardian/api/v1/heart-rate", withAuth(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		g.HeartRate(w, req)
	}))

	// latest heart rate classification per device
	r.Handle("/guardian/api/v1/heart-rate/latest/", withAuth(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		deviceID := strings.TrimPrefix(req.URL.Path, "/guardian/api/v1/heart-rate/latest/")
		if deviceID == "" || strings.Contains(deviceID, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		g.LatestHeartRate(w, req, deviceID)
	}))

	// guardian notification subscription
	r.Handle("/guardian/api/v1/ws", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		ws.Serve(w, req)
	})

	// health check
	r.Handle("/healthz", g.Health)
}
