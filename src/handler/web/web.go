package web

import (
	"bytes"
	"html/template"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	"spotit/src/handler/api"
	"spotit/src/handler/webui"
	"spotit/src/jukebox"
	"spotit/src/library"
	"spotit/src/util"
)

type webUI struct {
	build, version string
	urlRoot        string
	jukebox        *jukebox.Jukebox

	template *template.Template
	minifier *minify.M
}

// New creates the router serving the now playing page and the API under
// /data.
func New(build, version, urlRoot string, jukebox *jukebox.Jukebox) (chi.Router, error) {
	web := &webUI{
		build:    build,
		version:  version,
		urlRoot:  urlRoot,
		jukebox:  jukebox,
		minifier: newMinifier(),
	}
	if build == "release" {
		tmpl, err := web.loadTemplate()
		if err != nil {
			return nil, err
		}
		web.template = tmpl
	} else if _, err := webui.Files(build); err != nil {
		return nil, err
	}

	service := chi.NewRouter()
	service.Use(util.LogHandler)
	service.Group(func(r chi.Router) {
		r.Use(middleware.Compress(5))
		r.Get("/", web.nowPlayingPage)
	})
	service.Route("/data", func(r chi.Router) {
		api.InitRouter(r, web.jukebox)
	})
	return service, nil
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), js.Minify)
	return m
}

func (web *webUI) loadTemplate() (*template.Template, error) {
	files, err := webui.Files(web.build)
	if err != nil {
		return nil, err
	}
	return template.ParseFS(files, "page.html")
}

func (web *webUI) getTemplate() (*template.Template, error) {
	if web.template != nil {
		return web.template, nil
	}
	return web.loadTemplate()
}

func (web *webUI) params() map[string]interface{} {
	status := web.jukebox.Status()
	tracks := web.jukebox.Queue().Tracks()
	next := -1
	if status.LookAhead != nil {
		for i, track := range tracks {
			if track.Same(*status.LookAhead) {
				next = i
			}
		}
	}
	return map[string]interface{}{
		"urlroot":  web.urlRoot,
		"version":  web.version,
		"time":     library.FormatDuration(status.Time),
		"duration": library.FormatDuration(status.Duration),
		"status":   status,
		"tracks":   tracks,
		"next":     next,
		"logo":     web.jukebox.Catalog().Logo,
	}
}

func (web *webUI) nowPlayingPage(w http.ResponseWriter, r *http.Request) {
	tmpl, err := web.getTemplate()
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, web.params()); err != nil {
		api.WriteError(w, r, err)
		return
	}

	page, err := web.minifier.Bytes("text/html", buf.Bytes())
	if err != nil {
		log.Warnf("Could not minify page: %v", err)
		page = buf.Bytes()
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}
