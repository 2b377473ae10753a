package router

import "github.com/gin-gonic/gin"

// Module is a feature slice that mounts its own routes, and any route-level
// middleware, on the group it is given.
type Module interface {
	Register(rg *gin.RouterGroup)
}
