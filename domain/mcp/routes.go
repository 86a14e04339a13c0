package mcp

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mark3labs/mcp-go/server"
)

// Path is where the MCP endpoint is mounted.
const Path = "/api/mcp"

// RegisterRoutes mounts the streamable HTTP transport. POST carries JSON-RPC
// requests, GET opens the server event stream and DELETE ends a session.
func RegisterRoutes(e *echo.Echo, h *server.StreamableHTTPServer) {
	e.Match([]string{http.MethodGet, http.MethodPost, http.MethodDelete}, Path, echo.WrapHandler(h))
}
