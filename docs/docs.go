// Package docs holds the Swagger document served at /swagger. Regenerate it
// with go generate ./cmd/server after changing handler annotations.
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
        "/": {
            "get": {
                "description": "Plain-text message confirming the detector is up",
                "produces": ["text/plain"],
                "tags": ["detection"],
                "summary": "Service banner",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "string"}}
                }
            }
        },
        "/detect": {
            "post": {
                "description": "Runs the detector, reads the plate that follows a without-helmet detection and returns the annotated image",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["detection"],
                "summary": "Detect helmet violations in an image",
                "parameters": [
                    {"type": "file", "description": "Image to inspect", "name": "image", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/inspect.DetectResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/shared.APIError"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/shared.APIError"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/shared.APIError"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/health/ready": {
            "get": {
                "description": "Checks the detector and OCR sidecars, Redis and ffmpeg",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/health.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/health.HealthResponse"}}
                }
            }
        },
        "/process_video": {
            "post": {
                "description": "Draws detection boxes on every frame and returns the re-encoded MP4",
                "consumes": ["multipart/form-data"],
                "produces": ["video/mp4"],
                "tags": ["detection"],
                "summary": "Annotate a video",
                "parameters": [
                    {"type": "file", "description": "Video to annotate", "name": "video", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/shared.APIError"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/shared.APIError"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/shared.APIError"}}
                }
            }
        },
        "/ws/violations": {
            "get": {
                "description": "WebSocket stream of plates read alongside helmet violations",
                "tags": ["alerts"],
                "summary": "Violation feed",
                "responses": {
                    "101": {"description": "Switching Protocols"}
                }
            }
        }
    },
    "definitions": {
        "health.ComponentStatus": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "latency_ms": {"type": "integer"},
                "status": {"type": "string"}
            }
        },
        "health.HealthResponse": {
            "type": "object",
            "properties": {
                "components": {"type": "object", "additionalProperties": {"$ref": "#/definitions/health.ComponentStatus"}},
                "stats": {"type": "object"},
                "status": {"type": "string"},
                "timestamp": {"type": "string"},
                "uptime_seconds": {"type": "integer"},
                "version": {"type": "string"}
            }
        },
        "inspect.DetectResponse": {
            "type": "object",
            "properties": {
                "filename": {"type": "string", "example": "bike.jpg"},
                "helmet_violation": {"type": "boolean", "example": true},
                "image": {"type": "string", "example": "/9j/4AAQSkZJRg..."},
                "number_plate_text": {"type": "string", "example": "KA05MX1234"}
            }
        },
        "shared.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "invalid_image"},
                "details": {"type": "object"},
                "error": {"type": "string", "example": "Invalid image file"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Helmet Detector API",
	Description:      "Detects riders without helmets in images and videos and reads the offending number plate",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
