package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Exam Logistics API",
        "description": "Roster intake, exam seating plans and invigilator duty allocation",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Roster", "description": "Build student rosters from rows, records, text or files"},
        {"name": "Seating", "description": "Seat allocation (fill, branch-mix)"},
        {"name": "Invigilators", "description": "Duty allocation and duty roster PDF"},
        {"name": "Seating Plans", "description": "Stored seating plans"},
        {"name": "Exports", "description": "Asynchronous PDF/CSV exports of stored plans"}
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
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is unreachable"}
                }
            }
        },
        "/roster/parse": {
            "post": {
                "tags": ["Roster"],
                "summary": "Build a roster from rows, records or text",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RosterRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "No usable rows", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/roster/upload": {
            "post": {
                "tags": ["Roster"],
                "summary": "Build a roster from a CSV, XLSX or text file",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "type": "file", "required": true},
                    {"name": "headerPresent", "in": "formData", "type": "boolean"},
                    {"name": "idColumn", "in": "formData", "type": "string"},
                    {"name": "nameColumn", "in": "formData", "type": "string"},
                    {"name": "branchColumn", "in": "formData", "type": "string"},
                    {"name": "duplicates", "in": "formData", "type": "string", "enum": ["keep", "reject", "merge"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/seating/allocate": {
            "post": {
                "tags": ["Seating"],
                "summary": "Allocate students to rooms and assemble a seating plan",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AllocateSeatsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "201": {"description": "Plan allocated and saved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/invigilators/allocate": {
            "post": {
                "tags": ["Invigilators"],
                "summary": "Assign invigilators to exam sessions",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AllocateDutiesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/invigilators/allocate/pdf": {
            "post": {
                "tags": ["Invigilators"],
                "summary": "Render the duty roster as PDF",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AllocateDutiesRequest"}}
                ],
                "responses": {
                    "200": {"description": "PDF document"}
                }
            }
        },
        "/seating-plans": {
            "get": {
                "tags": ["Seating Plans"],
                "summary": "List stored seating plans",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/seating-plans/{id}": {
            "get": {
                "tags": ["Seating Plans"],
                "summary": "Get a stored seating plan",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Seating Plans"],
                "summary": "Delete a stored seating plan",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/seating-plans/{id}/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue a PDF or CSV export of a stored plan",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export job status",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/download/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export",
                "produces": ["application/pdf", "text/csv"],
                "parameters": [
                    {"name": "token", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "403": {"description": "Expired or invalid token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Student": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "branch": {"type": "string"}
            },
            "required": ["id"]
        },
        "RosterMapping": {
            "type": "object",
            "properties": {
                "idColumn": {"type": "string"},
                "nameColumn": {"type": "string"},
                "branchColumn": {"type": "string"}
            }
        },
        "RosterRequest": {
            "type": "object",
            "properties": {
                "rows": {"type": "array", "items": {"type": "array", "items": {"type": "string"}}},
                "records": {"type": "array", "items": {"type": "object"}},
                "fields": {"type": "array", "items": {"type": "string"}},
                "text": {"type": "string"},
                "headerPresent": {"type": "boolean"},
                "mapping": {"$ref": "#/definitions/RosterMapping"},
                "duplicates": {"type": "string", "enum": ["keep", "reject", "merge"]},
                "existing": {"type": "array", "items": {"$ref": "#/definitions/Student"}}
            }
        },
        "Room": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "capacity": {"type": "integer"},
                "rows": {"type": "integer"},
                "cols": {"type": "integer"},
                "college": {"type": "string"},
                "exam": {"type": "string"}
            }
        },
        "AllocateSeatsRequest": {
            "type": "object",
            "properties": {
                "students": {"type": "array", "items": {"$ref": "#/definitions/Student"}},
                "roster": {"$ref": "#/definitions/RosterRequest"},
                "rooms": {"type": "array", "items": {"$ref": "#/definitions/Room"}},
                "roomsText": {"type": "string"},
                "strategy": {"type": "string", "enum": ["fill", "branch-mix"]},
                "seed": {"type": "integer"},
                "duplicateRooms": {"type": "string", "enum": ["keep", "reject", "merge"]},
                "save": {"type": "boolean"},
                "name": {"type": "string"}
            }
        },
        "Invigilator": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "Session": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "exam": {"type": "string"},
                "room": {"type": "string"},
                "time": {"type": "string"},
                "required": {"type": "integer"}
            }
        },
        "AllocateDutiesRequest": {
            "type": "object",
            "properties": {
                "invigilators": {"type": "array", "items": {"$ref": "#/definitions/Invigilator"}},
                "invigilatorsText": {"type": "string"},
                "sessions": {"type": "array", "items": {"$ref": "#/definitions/Session"}},
                "sessionsText": {"type": "string"},
                "title": {"type": "string"}
            }
        },
        "CreateExportRequest": {
            "type": "object",
            "properties": {
                "format": {"type": "string", "enum": ["pdf", "csv"]},
                "title": {"type": "string"}
            },
            "required": ["format"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
