package httpserver

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/UnownHash/Coastline/names"
	"github.com/UnownHash/Coastline/scene"
	"github.com/UnownHash/Coastline/version"
)

//go:embed web
var webFS embed.FS

func parsePageTemplate() (*template.Template, error) {
	return template.ParseFS(webFS, "web/index.html")
}

func staticFileSystem() (http.FileSystem, error) {
	sub, err := fs.Sub(webFS, "web/static")
	if err != nil {
		return nil, err
	}
	return http.FS(sub), nil
}

// clientGeolocationOptions are passed as-is to
// navigator.geolocation.getCurrentPosition.
type clientGeolocationOptions struct {
	EnableHighAccuracy bool  `json:"enableHighAccuracy"`
	Timeout            int64 `json:"timeout"`
	MaximumAge         int64 `json:"maximumAge"`
}

type clientConfig struct {
	Geolocation clientGeolocationOptions `json:"geolocation"`
	InitialView scene.View               `json:"initial_view"`
}

type pageData struct {
	Version   string
	Status    string
	StatusErr bool
	Islands   []string
	Countries []string
	Client    clientConfig
}

func (srv *HTTPServer) handlePage(c *gin.Context) {
	session := getSession(c)

	config := session.Controller.Config()
	options := config.GeolocationOptions()
	status := session.Controller.Status()

	c.HTML(http.StatusOK, "index.html", pageData{
		Version:   version.APP_VERSION,
		Status:    status.Message,
		StatusErr: status.IsError,
		Islands:   names.Islands(),
		Countries: names.Countries(),
		Client: clientConfig{
			Geolocation: clientGeolocationOptions{
				EnableHighAccuracy: options.EnableHighAccuracy,
				Timeout:            options.Timeout.Milliseconds(),
				MaximumAge:         options.MaximumAge.Milliseconds(),
			},
			InitialView: session.Scene.View(),
		},
	})
}
