package httpserver

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
)

// RegisterStaticRoutes 挂载前端静态文件：
//   - /web/* -> webDir
//   - /      -> 跳转到 /web/
//
// webDir 为空或不存在时什么都不挂，只提供 API。
func RegisterStaticRoutes(r chi.Router, webDir string) bool {
	if webDir == "" {
		return false
	}
	if info, err := os.Stat(webDir); err != nil || !info.IsDir() {
		return false
	}
	fs := http.StripPrefix("/web/", http.FileServer(http.Dir(webDir)))
	r.Handle("/web/*", fs)
	r.Get("/web", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/web/", http.StatusFound)
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/web/", http.StatusFound)
	})
	return true
}
