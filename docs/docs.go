// Package docs registers the OpenAPI document served under /swagger.
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
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}}
            }
        },
        "/auth/sign-up": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Create an admin account",
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/handlers.authCredentials"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/auth/sign-in": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Issue a bearer token",
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/handlers.authCredentials"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/api/v1/events": {
            "get": {
                "produces": ["application/json"],
                "tags": ["map"],
                "summary": "List configured events",
                "responses": {"200": {"description": "count, events", "schema": {"type": "object", "additionalProperties": true}}}
            }
        },
        "/api/v1/map": {
            "get": {
                "produces": ["application/json"],
                "tags": ["map"],
                "summary": "Map overlays",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.MapResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/api/v1/layers/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["map"],
                "summary": "Layer features",
                "parameters": [{"type": "string", "example": "event-190", "description": "Layer id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "GeoJSON FeatureCollection", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/api/v1/admin/map/rebuild": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Rebuild the map",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.MapResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/api/v1/admin/imports": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Import history",
                "parameters": [
                    {"enum": ["LOCATIONS", "CITIES", "RESET"], "type": "string", "description": "Import kind", "name": "kind", "in": "query"},
                    {"type": "integer", "default": 50, "description": "Max runs (1-500)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "count, runs", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/api/v1/admin/imports/locations/{eventId}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Import an event's locations",
                "parameters": [{"type": "integer", "example": 190, "description": "Event id", "name": "eventId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/importer.LocationReport"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/api/v1/admin/imports/cities": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["text/html"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Import the city list",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/importer.CityReport"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/api/v1/admin/imports/cities/reset": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Reset city event lists",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/importer.CityReport"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/ws": {
            "get": {
                "tags": ["map"],
                "summary": "Map build stream",
                "responses": {"101": {"description": "Switching Protocols"}}
            }
        }
    },
    "definitions": {
        "handlers.authCredentials": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string", "example": "admin"},
                "password": {"type": "string", "example": "secret"}
            }
        },
        "handlers.errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "handlers.OverlayResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "example": "event-190"},
                "label": {"type": "string", "example": "July 2023"},
                "kind": {"type": "string", "example": "event"},
                "event_id": {"type": "integer", "example": 190},
                "features": {"type": "integer", "example": 57}
            }
        },
        "handlers.MapResponse": {
            "type": "object",
            "properties": {
                "overlays": {"type": "array", "items": {"$ref": "#/definitions/handlers.OverlayResponse"}},
                "default": {"type": "string", "example": "event-190"},
                "built_at": {"type": "string"},
                "missing": {"type": "array", "items": {"type": "string"}}
            }
        },
        "importer.LocationReport": {
            "type": "object",
            "properties": {
                "event_id": {"type": "integer"},
                "locations": {"type": "integer"},
                "remote": {"type": "integer"},
                "skipped": {"type": "integer"},
                "linked_cities": {"type": "integer"},
                "unmatched": {"type": "array", "items": {"type": "string"}}
            }
        },
        "importer.CityReport": {
            "type": "object",
            "properties": {
                "cities": {"type": "integer"},
                "geocoded": {"type": "integer"},
                "not_geocoded": {"type": "array", "items": {"type": "string"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Puzzled Pint Map API",
	Description:      "Event location overlays, city list and data imports for the Puzzled Pint map.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
