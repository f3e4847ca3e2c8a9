// Package docs holds the swagger description of the API, served at /swagger/index.html.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/classify-issue": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "summary": "Classify an issue photo",
                "parameters": [
                    {"type": "file", "description": "issue photo", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "classifier result, relayed verbatim", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/reverse-geocode": {
            "get": {
                "produces": ["application/json"],
                "summary": "Readable address for a coordinate pair",
                "parameters": [
                    {"type": "number", "description": "latitude", "name": "lat", "in": "query", "required": true},
                    {"type": "number", "description": "longitude", "name": "lng", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ReadableAddress"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/issues": {
            "get": {
                "produces": ["application/json"],
                "summary": "List issues, newest first",
                "parameters": [
                    {"type": "string", "description": "comma separated statuses", "name": "status", "in": "query"},
                    {"type": "string", "description": "comma separated departments", "name": "department", "in": "query"},
                    {"type": "string", "description": "comma separated priorities", "name": "priority", "in": "query"},
                    {"type": "string", "description": "title or description substring", "name": "search", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Issue"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Report a new issue",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Issue"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/issues/stats": {
            "get": {
                "produces": ["application/json"],
                "summary": "Dashboard statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.IssueStats"}}
                }
            }
        },
        "/api/issues/{id}": {
            "get": {
                "produces": ["application/json"],
                "summary": "Get one issue",
                "parameters": [{"type": "string", "description": "issue id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Issue"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/issues/{id}/status": {
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Change an issue's status",
                "parameters": [{"type": "string", "description": "issue id", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Issue"}}}
            }
        },
        "/api/issues/{id}/department": {
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Route an issue to a department",
                "parameters": [{"type": "string", "description": "issue id", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Issue"}}}
            }
        },
        "/api/issues/{id}/assign-contractor": {
            "post": {
                "produces": ["application/json"],
                "summary": "Hand an issue to a contractor",
                "parameters": [{"type": "string", "description": "issue id", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Issue"}}}
            }
        }
    },
    "definitions": {
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "details": {"type": "string"}
            }
        },
        "models.ReadableAddress": {
            "type": "object",
            "properties": {"readable": {"type": "string"}}
        },
        "models.Issue": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "status": {"type": "string"},
                "priority": {"type": "string"},
                "department": {"type": "string"},
                "ai_category": {"type": "string"},
                "ai_confidence": {"type": "number"},
                "image_url": {"type": "string"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "user_id": {"type": "string"},
                "assigned_to": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"},
                "resolved_at": {"type": "string"}
            }
        },
        "models.IssueStats": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "resolved": {"type": "integer"},
                "open": {"type": "integer"},
                "in_progress": {"type": "integer"},
                "resolved_pct": {"type": "integer"},
                "open_pct": {"type": "integer"},
                "in_progress_pct": {"type": "integer"},
                "satisfaction": {"type": "integer"},
                "avg_response_hours": {"type": "number"},
                "weekly": {"type": "object"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Civic Issues API",
	Description:      "Issue triage, image classification forwarding and reverse geocoding for the civic issue dashboard.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
