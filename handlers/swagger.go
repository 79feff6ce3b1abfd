package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the patient API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRoutes) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Itakarlapalli Sub Centre API - Swagger</title>
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

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "Itakarlapalli Sub Centre API", "version": "v1.0.0" },
  "components": {
    "schemas": {
      "PatientInput": { "type": "object", "required": ["name","age","village"], "properties": { "name": {"type":"string"}, "age": {"oneOf":[{"type":"integer","minimum":0},{"type":"string"}]}, "village": {"type":"string"} } },
      "Patient": { "type": "object", "properties": { "id": {"type":"integer","format":"int64"}, "name": {"type":"string"}, "age": {"type":"integer"}, "village": {"type":"string"}, "createdAt": {"type":"string","format":"date-time","description":"absent on records imported from the legacy data file"}, "updatedAt": {"type":"string","format":"date-time","description":"absent on records imported from the legacy data file"} } },
      "Error": { "type": "object", "properties": { "error": {"type":"string"}, "field": {"type":"string"} } }
    }
  },
  "paths": {
    "/api/patients": {
      "get": { "summary": "List patients, newest first", "responses": { "200": { "description": "array of patients", "content": { "application/json": { "schema": {"type":"array","items":{"$ref":"#/components/schemas/Patient"}} } } }, "500": { "description": "storage error" } } },
      "post": { "summary": "Add a patient", "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/PatientInput"} } } }, "responses": { "201": { "description": "created patient" }, "400": { "description": "missing or invalid field" }, "500": { "description": "storage error" } } }
    },
    "/api/patients/{id}": {
      "parameters": [ { "name": "id", "in": "path", "required": true, "schema": {"type":"integer","format":"int64"} } ],
      "put": { "summary": "Replace name, age and village", "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/PatientInput"} } } }, "responses": { "200": { "description": "updated patient" }, "400": { "description": "missing or invalid field" }, "404": { "description": "unknown id" }, "500": { "description": "storage error" } } },
      "delete": { "summary": "Delete a patient", "responses": { "200": { "description": "deleted" }, "404": { "description": "unknown id" }, "500": { "description": "storage error" } } }
    },
    "/api/send-message": {
      "post": { "summary": "Relay a contact message to the operator", "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["name","phone","message"],"properties":{"name":{"type":"string"},"phone":{"type":"string"},"email":{"type":"string"},"message":{"type":"string"}}} } } }, "responses": { "200": { "description": "sent" }, "400": { "description": "missing field" }, "500": { "description": "relay failure" } } }
    },
    "/api/health": { "get": { "summary": "Service status", "responses": { "200": { "description": "ok" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
