package demoserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/raysh454/rawdata/internal/logging"
)

// DemoServer serves fixture pages for every scanner path. Each page can have
// several versions that are switched at runtime to show how a page's state
// shows up in a scan.
type DemoServer struct {
	cfg      Config
	logger   logging.Logger
	pages    map[string]PageDefinition
	versions map[string]int // path -> current version
	mu       sync.RWMutex
}

// NewDemoServer creates a new demo server instance.
func NewDemoServer(cfg Config, logger logging.Logger) (*DemoServer, error) {
	if cfg.InitialVersion < 1 {
		cfg.InitialVersion = 1
	}
	pages, err := GetAllPages()
	if err != nil {
		return nil, fmt.Errorf("building demo pages: %w", err)
	}
	pageMap := make(map[string]PageDefinition, len(pages))
	versions := make(map[string]int, len(pages))
	for _, p := range pages {
		pageMap[p.Path] = p
		versions[p.Path] = cfg.InitialVersion
	}

	return &DemoServer{
		cfg:      cfg,
		logger:   logger.With(logging.Field{Key: "component", Value: "demoserver"}),
		pages:    pageMap,
		versions: versions,
	}, nil
}

// Handler returns the demo routes.
func (s *DemoServer) Handler() http.Handler {
	mux := http.NewServeMux()

	for path := range s.pages {
		pattern := path
		if path == "/" {
			pattern = "/{$}"
		}
		mux.HandleFunc(pattern, s.pageHandler(path))
	}

	mux.HandleFunc("/demo/control", s.controlPanelHandler)
	mux.HandleFunc("/demo/set-version", s.setVersionHandler)
	mux.HandleFunc("/demo/get-versions", s.getVersionsHandler)
	mux.HandleFunc("/demo/bump-all", s.bumpAllVersionsHandler)
	mux.HandleFunc("/demo/reset", s.resetVersionsHandler)
	return mux
}

// Run serves until ctx is canceled.
func (s *DemoServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("demo server starting",
		logging.Field{Key: "url", Value: fmt.Sprintf("http://localhost:%d", s.cfg.Port)},
		logging.Field{Key: "control_panel", Value: fmt.Sprintf("http://localhost:%d/demo/control", s.cfg.Port)})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// current returns the page version that should be served for path, falling
// back to the closest lower version.
func (s *DemoServer) current(path string) (PageVersion, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.pages[path]
	if !ok {
		return PageVersion{}, false
	}
	for v := s.versions[path]; v >= 1; v-- {
		if pv, exists := def.Versions[v]; exists {
			return pv, true
		}
	}
	return PageVersion{}, false
}

func (s *DemoServer) pageHandler(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, ok := s.current(path)
		if !ok {
			http.NotFound(w, r)
			return
		}
		for k, v := range page.Headers {
			w.Header().Set(k, v)
		}
		contentType := page.ContentType
		if contentType == "" {
			contentType = "text/html; charset=utf-8"
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(page.Body))
	}
}

func maxVersion(def PageDefinition) int {
	maxV := 1
	for v := range def.Versions {
		maxV = max(maxV, v)
	}
	return maxV
}

// PageInfo describes a page for the control endpoints.
type PageInfo struct {
	Path              string `json:"path"`
	Description       string `json:"description"`
	CurrentVersion    int    `json:"current_version"`
	AvailableVersions []int  `json:"available_versions"`
}

// Pages lists the demo pages sorted by path.
func (s *DemoServer) Pages() []PageInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]PageInfo, 0, len(s.pages))
	for path, def := range s.pages {
		versions := make([]int, 0, len(def.Versions))
		for v := range def.Versions {
			versions = append(versions, v)
		}
		sort.Ints(versions)
		out = append(out, PageInfo{
			Path:              path,
			Description:       def.Description,
			CurrentVersion:    s.versions[path],
			AvailableVersions: versions,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

var controlPanel = template.Must(template.New("control").Parse(controlPanelHTML))

func (s *DemoServer) controlPanelHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := controlPanel.Execute(w, s.Pages()); err != nil {
		s.logger.Warn("rendering control panel", logging.Field{Key: "error", Value: err.Error()})
	}
}

func (s *DemoServer) setVersionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := r.FormValue("path")
	version, err := strconv.Atoi(r.FormValue("version"))
	if err != nil || version < 1 {
		http.Error(w, "Invalid version number", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	_, ok := s.pages[path]
	if ok {
		s.versions[path] = version
	}
	s.mu.Unlock()
	if !ok {
		http.Error(w, "Unknown page", http.StatusNotFound)
		return
	}

	s.logger.Info("page version set", logging.Field{Key: "path", Value: path}, logging.Field{Key: "version", Value: version})
	writeJSON(w, map[string]any{"success": true, "path": path, "version": version})
}

func (s *DemoServer) getVersionsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Pages())
}

// bumpAllVersionsHandler moves every page to its next version, capped at the
// newest one it has.
func (s *DemoServer) bumpAllVersionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	for path := range s.versions {
		s.versions[path] = min(s.versions[path]+1, maxVersion(s.pages[path]))
	}
	s.mu.Unlock()

	writeJSON(w, map[string]any{"success": true, "message": "All versions bumped"})
}

func (s *DemoServer) resetVersionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	for path := range s.versions {
		s.versions[path] = 1
	}
	s.mu.Unlock()

	writeJSON(w, map[string]any{"success": true, "message": "All versions reset to 1"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

const controlPanelHTML = `<!DOCTYPE html>
<html>
<head>
    <title>raw.data Demo Pages</title>
    <style>
        body { font-family: system-ui, sans-serif; max-width: 960px; margin: 0 auto; padding: 20px; background: #f5f5f5; }
        h1 { border-bottom: 2px solid #0b7285; padding-bottom: 8px; }
        .page { background: white; border-radius: 6px; padding: 16px; margin: 12px 0; box-shadow: 0 1px 3px rgba(0,0,0,0.1); }
        .page a { font-weight: bold; color: #0b7285; }
        .desc { color: #555; margin: 6px 0; }
        button { padding: 6px 12px; margin-right: 6px; border: none; border-radius: 4px; cursor: pointer; background: #e9ecef; }
        button.active { background: #0b7285; color: white; }
    </style>
</head>
<body>
    <h1>raw.data Demo Pages</h1>
    <p>Switch versions, then scan the page again to see the change.</p>
    <button onclick="post('/demo/bump-all')">Bump all</button>
    <button onclick="post('/demo/reset')">Reset all</button>
    {{range .}}
    <div class="page">
        <a href="{{.Path}}" target="_blank">{{.Path}}</a>
        <div class="desc">{{.Description}}</div>
        {{$cur := .CurrentVersion}}{{$path := .Path}}
        {{range .AvailableVersions}}
        <button class="{{if eq $cur .}}active{{end}}" onclick="setVersion('{{$path}}', {{.}})">v{{.}}</button>
        {{end}}
    </div>
    {{end}}
    <script>
        function post(url, body) {
            return fetch(url, {
                method: 'POST',
                headers: {'Content-Type': 'application/x-www-form-urlencoded'},
                body: body || ''
            }).then(() => location.reload());
        }
        function setVersion(path, version) {
            post('/demo/set-version', 'path=' + encodeURIComponent(path) + '&version=' + version);
        }
    </script>
</body>
</html>`
