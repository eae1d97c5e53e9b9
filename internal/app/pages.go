package app

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/blissevent/invitation/internal/config"
	"github.com/blissevent/invitation/internal/http/middleware"
	internalsettings "github.com/blissevent/invitation/internal/settings"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}} · {{.SiteName}}</title></head>
<body data-page="{{.Page}}"><h1>{{.SiteName}}</h1><p>{{.Title}}</p></body>
</html>
`))

type pageData struct {
	SiteName string
	Title    string
	Page     string
}

// registerPages serves placeholder pages for the frontend routes behind the page gate.
func registerPages(engine *gin.Engine, authn *middleware.Authenticator, store *internalsettings.Store, sessionCfg config.SessionConfig) {
	pages := engine.Group("")
	pages.Use(middleware.PageGate(authn))

	render := func(page, title string) gin.HandlerFunc {
		return func(c *gin.Context) {
			var buf bytes.Buffer
			data := pageData{SiteName: store.SiteName(c.Request.Context()), Title: title, Page: page}
			if errRender := pageTemplate.Execute(&buf, data); errRender != nil {
				log.WithError(errRender).Error("render page")
				c.Status(http.StatusInternalServerError)
				return
			}
			c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
		}
	}

	pages.GET(sessionCfg.LoginPath, render("login", "Sign in"))
	if sessionCfg.LandingPath != sessionCfg.LoginPath {
		pages.GET(sessionCfg.LandingPath, render("home", "Welcome"))
	}
	for _, p := range []struct{ path, page, title string }{
		{"/rsvp", "rsvp", "RSVP"},
		{"/gifts", "gifts", "Gift registry"},
		{"/admin", "admin", "Dashboard"},
	} {
		if p.path == sessionCfg.LoginPath || p.path == sessionCfg.LandingPath {
			continue
		}
		pages.GET(p.path, render(p.page, p.title))
	}
}
