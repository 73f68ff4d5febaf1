package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints:
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Header("Content-Type", "application/json")
		c.String(http.StatusOK, swaggerJSON)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>newspulse — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the public endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "newspulse", "version": "v0.1.0" },
  "paths": {
    "/news/trending": {
      "get": {
        "summary": "Trending articles ranked by engagement and freshness",
        "parameters": [
          {"name":"limit","in":"query","schema":{"type":"integer","default":10}},
          {"name":"hours","in":"query","schema":{"type":"integer","default":48}},
          {"name":"preferred_category","in":"query","schema":{"type":"string"}},
          {"name":"preferred_region","in":"query","schema":{"type":"string"}}
        ],
        "responses": { "200": { "description": "ranked articles" } }
      }
    },
    "/news/search": {
      "get": {
        "summary": "Full-text and filtered article search",
        "parameters": [
          {"name":"keywords","in":"query","schema":{"type":"string"}},
          {"name":"start_date","in":"query","schema":{"type":"string"}},
          {"name":"end_date","in":"query","schema":{"type":"string"}},
          {"name":"source","in":"query","schema":{"type":"string"}},
          {"name":"limit","in":"query","schema":{"type":"integer","default":20}}
        ],
        "responses": { "200": { "description": "matching articles" } }
      }
    },
    "/auth/oauth": {
      "post": { "summary": "Third-party identity login", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"token":{"type":"string"},"provider":{"type":"string"}}}}}}, "responses": { "200": { "description": "session payload" }, "400": { "description": "missing email" }, "401": { "description": "invalid provider token" } } }
    },
    "/auth/register": {
      "post": { "summary": "Create a password account", "responses": { "200": { "description": "session payload" }, "409": { "description": "account exists" } } }
    },
    "/auth/login": {
      "post": { "summary": "Password login", "responses": { "200": { "description": "session payload" }, "401": { "description": "invalid credentials" } } }
    },
    "/auth/refresh": {
      "post": { "summary": "Refresh access token", "responses": { "200": { "description": "new access token" }, "401": { "description": "invalid refresh" } } }
    },
    "/auth/logout": {
      "post": { "summary": "Logout and invalidate refresh token", "responses": { "200": { "description": "logged out" } } }
    },
    "/proxy/image": {
      "get": { "summary": "Image proxy (CORS workaround)", "parameters": [{"name":"url","in":"query","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "image bytes" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
