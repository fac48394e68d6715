// Package docs holds the OpenAPI description served under /swagger.
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
        "/dashboard": {
            "get": {
                "produces": ["application/json"],
                "tags": ["stats"],
                "summary": "Punch score, remaining amounts and progress",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Dashboard"}}
                }
            }
        },
        "/form-defaults": {
            "get": {
                "produces": ["application/json"],
                "tags": ["workouts"],
                "summary": "Pre-filled values for a new entry",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.FormDefaults"}}
                }
            }
        },
        "/weight": {
            "get": {
                "produces": ["application/json"],
                "tags": ["stats"],
                "summary": "Weight samples, oldest first",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.WeightPoint"}}}
                }
            }
        },
        "/workouts": {
            "get": {
                "produces": ["application/json"],
                "tags": ["workouts"],
                "summary": "Workout history, newest first",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Workout"}}}
                }
            },
            "post": {
                "description": "Saves the day's record. A -1 in one activity field deletes that day, in two or more it erases the history.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["workouts"],
                "summary": "Submit the workout form",
                "parameters": [
                    {"description": "Workout form", "name": "form", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.submitWorkoutRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.SubmitResult"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "delete": {
                "tags": ["workouts"],
                "summary": "Erase the whole history",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/workouts/{date}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["workouts"],
                "summary": "One day's record",
                "parameters": [
                    {"type": "string", "description": "YYYY-MM-DD", "name": "date", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Workout"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "delete": {
                "tags": ["workouts"],
                "summary": "Delete one day's record",
                "parameters": [
                    {"type": "string", "description": "YYYY-MM-DD", "name": "date", "in": "path", "required": true}
                ],
                "responses": {"204": {"description": "No Content"}}
            }
        }
    },
    "definitions": {
        "domain.ActivityTotals": {
            "type": "object",
            "properties": {
                "crunches": {"type": "number"},
                "distance": {"type": "number"},
                "pushups": {"type": "number"},
                "squats": {"type": "number"}
            }
        },
        "domain.Dashboard": {
            "type": "object",
            "properties": {
                "complete_punches": {"type": "integer"},
                "progress": {"$ref": "#/definitions/domain.ActivityTotals"},
                "remaining": {"$ref": "#/definitions/domain.ActivityTotals"},
                "totals": {"$ref": "#/definitions/domain.ActivityTotals"},
                "workouts": {"type": "integer"}
            }
        },
        "domain.FormDefaults": {
            "type": "object",
            "properties": {
                "crunches": {"type": "integer"},
                "date": {"type": "string"},
                "distance": {"type": "number"},
                "pushups": {"type": "integer"},
                "squats": {"type": "integer"},
                "weight": {"type": "number"}
            }
        },
        "domain.WeightPoint": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "weight": {"type": "number"}
            }
        },
        "domain.Workout": {
            "type": "object",
            "properties": {
                "crunches": {"type": "integer"},
                "date": {"type": "string"},
                "distance": {"type": "number"},
                "pushups": {"type": "integer"},
                "squats": {"type": "integer"},
                "weight": {"type": "number"}
            }
        },
        "http.submitWorkoutRequest": {
            "type": "object",
            "properties": {
                "crunches": {"type": "string"},
                "date": {"type": "string"},
                "distance": {"type": "string"},
                "pushups": {"type": "string"},
                "squats": {"type": "string"},
                "weight": {"type": "string"}
            }
        },
        "services.SubmitResult": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "enum": ["upsert", "delete", "clear"]},
                "date": {"type": "string"},
                "workouts": {"type": "array", "items": {"$ref": "#/definitions/domain.Workout"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "One Punch Tracker API",
	Description:      "Daily workout log scored in punches.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
