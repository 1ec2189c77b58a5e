package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "TeachFlow API",
        "description": "Weekly school timetable service: lookups, availability, stored grids and seeded auto-build",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Classes", "description": "Class lookup and subject plans"},
        {"name": "Teachers", "description": "Teacher roster and weekly availability"},
        {"name": "Schedule", "description": "Stored timetables and auto-build"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/api/v1/classes": {
            "get": {
                "tags": ["Classes"],
                "summary": "List classes",
                "parameters": [
                    {"name": "grade", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/classes/{id}/subjects": {
            "get": {
                "tags": ["Classes"],
                "summary": "Subject plan for a class",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Class not found"}
                }
            }
        },
        "/api/v1/teachers": {
            "get": {
                "tags": ["Teachers"],
                "summary": "List teachers",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/teachers/{id}": {
            "get": {
                "tags": ["Teachers"],
                "summary": "Get one teacher",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Teacher not found"}
                }
            }
        },
        "/api/v1/teachers/{id}/availability": {
            "put": {
                "tags": ["Teachers"],
                "summary": "Replace weekly availability",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateAvailabilityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Malformed availability"},
                    "404": {"description": "Teacher not found"}
                }
            }
        },
        "/api/v1/schedule": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Load a class's timetable",
                "parameters": [
                    {"name": "classId", "in": "query", "required": true, "type": "string"},
                    {"name": "teacher", "in": "query", "required": false, "type": "string"},
                    {"name": "subject", "in": "query", "required": false, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Class not found"}
                }
            },
            "put": {
                "tags": ["Schedule"],
                "summary": "Replace a class's timetable wholesale",
                "parameters": [
                    {"name": "classId", "in": "query", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Class not found"}
                }
            },
            "delete": {
                "tags": ["Schedule"],
                "summary": "Delete a class's stored timetable",
                "parameters": [
                    {"name": "classId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Cleared"},
                    "404": {"description": "Nothing stored"}
                }
            }
        },
        "/api/v1/schedule/auto": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Build a timetable proposal automatically",
                "parameters": [
                    {"name": "classId", "in": "query", "required": true, "type": "string"},
                    {"name": "seed", "in": "query", "type": "integer", "description": "Shuffle seed; omit for a fresh one"}
                ],
                "responses": {
                    "200": {"description": "Built; leftover_unassigned in meta", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Class not found"},
                    "412": {"description": "No subject plan or empty teacher pool"}
                }
            }
        },
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "Session": {
            "type": "object",
            "properties": {
                "subject": {"type": "string"},
                "teacher": {"type": "string"},
                "room": {"type": "string"}
            }
        },
        "TimetableGrid": {
            "type": "object",
            "description": "Day name to an array of exactly seven cells, each a Session or null",
            "additionalProperties": {
                "type": "array",
                "items": {"$ref": "#/definitions/Session"}
            }
        },
        "SaveScheduleRequest": {
            "type": "object",
            "required": ["schedule"],
            "properties": {
                "schedule": {"$ref": "#/definitions/TimetableGrid"}
            }
        },
        "AvailabilityWindow": {
            "type": "object",
            "properties": {
                "start": {"type": "string", "example": "08:00"},
                "end": {"type": "string", "example": "12:00"}
            }
        },
        "AvailabilityDay": {
            "type": "object",
            "properties": {
                "enabled": {"type": "boolean"},
                "slots": {"type": "array", "items": {"$ref": "#/definitions/AvailabilityWindow"}}
            }
        },
        "UpdateAvailabilityRequest": {
            "type": "object",
            "required": ["availability"],
            "properties": {
                "availability": {
                    "type": "object",
                    "description": "Keys: Mon, Tue, Wed, Thu, Sat",
                    "additionalProperties": {"$ref": "#/definitions/AvailabilityDay"}
                }
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_items": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
