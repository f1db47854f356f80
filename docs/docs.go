// Package docs registers the OpenAPI description served under /swagger.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/events": {
            "get": {
                "produces": ["text/event-stream"],
                "tags": ["ui"],
                "summary": "Status stream (Server-Sent Events)",
                "description": "Emits \"update\" with the temperature (or None), \"reload\" on mode changes, \"fault\" on faults and a periodic \"ping\".",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/kettle/status": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["kettle"],
                "summary": "Get kettle status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.KettleStatus"}},
                    "401": {"description": "Unauthorized"},
                    "500": {"description": "Internal Server Error"}
                }
            }
        },
        "/api/v1/kettle/target": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["kettle"],
                "summary": "Boil to a target temperature",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/models.TargetRequest"}}],
                "responses": {
                    "202": {"description": "Accepted"},
                    "400": {"description": "Bad Request"},
                    "409": {"description": "test run in progress"}
                }
            }
        },
        "/api/v1/kettle/test": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["kettle"],
                "summary": "Start a timed test run",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/models.TargetRequest"}}],
                "responses": {
                    "202": {"description": "Accepted"},
                    "400": {"description": "Bad Request"},
                    "409": {"description": "test run in progress"}
                }
            }
        },
        "/api/v1/logs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["logs"],
                "summary": "List the run journal",
                "parameters": [
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {"enum": ["MODE_CHANGED", "FAULT"], "type": "string", "name": "type", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "count, events"},
                    "400": {"description": "Bad Request"}
                }
            }
        }
    },
    "definitions": {
        "models.TargetRequest": {
            "type": "object",
            "required": ["target_temp_c"],
            "properties": {"target_temp_c": {"type": "integer", "example": 90}}
        },
        "models.KettleStatus": {
            "type": "object",
            "properties": {
                "mode": {"type": "string"},
                "current_temp_c": {"type": "integer"},
                "target_temp_c": {"type": "integer"},
                "heater_on": {"type": "boolean"},
                "no_liquid": {"type": "boolean"},
                "sensor_fault": {"type": "boolean"},
                "stalled_ms": {"type": "integer"},
                "test_finished": {"type": "boolean"},
                "test_elapsed_ms": {"type": "integer"},
                "message": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Smart Kettle API",
	Description:      "Thermal controller for an electric kettle with a dry-boil cutoff.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
