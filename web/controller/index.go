// Package controller wires the HTTP endpoints of the acquisitions API:
// request validation, authorization rules, and response shaping around the
// service layer.
package controller

import (
	"net/http"

	"github.com/acquisitions/api/web/service"

	"github.com/gin-gonic/gin"
)

// IndexController serves the root, health and API banner endpoints.
type IndexController struct {
	server *service.ServerService
}

func NewIndexController(g *gin.RouterGroup, server *service.ServerService) *IndexController {
	c := &IndexController{server: server}

	g.GET("/", c.index)
	g.GET("/health", c.health)
	g.GET("/api", c.api)

	return c
}

func (a *IndexController) index(c *gin.Context) {
	c.String(http.StatusOK, "hello from acquisitions")
}

func (a *IndexController) health(c *gin.Context) {
	c.JSON(http.StatusOK, a.server.Health())
}

func (a *IndexController) api(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Acquisitions API is running"})
}
