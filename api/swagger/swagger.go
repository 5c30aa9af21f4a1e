package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Presensi Kuliah API",
        "description": "Academic calendar and attendance reconciliation service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "auth", "description": "Sign-in and profile"},
        {"name": "users", "description": "Admin account management"},
        {"name": "calendar", "description": "Meeting series and academic events"},
        {"name": "schedule", "description": "Weekly timetable"},
        {"name": "attendance", "description": "Submission, evaluation and recap"},
        {"name": "enrollment", "description": "Take/skip choices"},
        {"name": "dashboard", "description": "Admin summary"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Sign in",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["auth"],
                "summary": "Sign out",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["auth"],
                "summary": "Current profile",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar": {
            "get": {
                "tags": ["calendar"],
                "summary": "List the calendar",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar/meetings": {
            "post": {
                "tags": ["calendar"],
                "summary": "Generate the meeting series",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateMeetingsRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "INVALID_COUNT or INVALID_DATE"}
                }
            }
        },
        "/calendar/meetings/{id}": {
            "put": {
                "tags": ["calendar"],
                "summary": "Move a meeting and shift the rest",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ShiftMeetingRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Meeting not found"}
                }
            }
        },
        "/calendar/active": {
            "get": {
                "tags": ["calendar"],
                "summary": "Locate the active meeting",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "description": "YYYY-MM-DD, defaults to today"}
                ],
                "responses": {
                    "200": {"description": "OK, data is null when no meeting is active", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar/entries": {
            "post": {
                "tags": ["calendar"],
                "summary": "Add a calendar entry",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateEntryRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar/{id}": {
            "delete": {
                "tags": ["calendar"],
                "summary": "Delete a calendar entry",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/schedule": {
            "get": {
                "tags": ["schedule"],
                "summary": "List course sessions",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "kelas", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["schedule"],
                "summary": "Add a course session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/mine": {
            "get": {
                "tags": ["schedule"],
                "summary": "The caller's timetable",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/{id}": {
            "get": {
                "tags": ["schedule"],
                "summary": "Get one course session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["schedule"],
                "summary": "Update a course session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseSessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["schedule"],
                "summary": "Delete a course session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/attendance": {
            "post": {
                "tags": ["attendance"],
                "summary": "Submit attendance for the active meeting",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Window closed or no active meeting"}
                }
            }
        },
        "/attendance/today": {
            "get": {
                "tags": ["attendance"],
                "summary": "Evaluate today's sessions",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/matrix": {
            "put": {
                "tags": ["attendance"],
                "summary": "Save the lecturer recap",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MatrixSaveRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Session belongs to another lecturer"}
                }
            }
        },
        "/attendance/matrix/{sessionId}": {
            "get": {
                "tags": ["attendance"],
                "summary": "Lecturer recap for a course session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "sessionId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/matrix/{sessionId}/export": {
            "get": {
                "tags": ["attendance"],
                "summary": "Export the attendance card",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "sessionId", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "required": true, "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "meetings", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/attendance/history/{sessionId}": {
            "get": {
                "tags": ["attendance"],
                "summary": "Student history for a course session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "sessionId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments": {
            "get": {
                "tags": ["enrollment"],
                "summary": "List my enrollments",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["enrollment"],
                "summary": "Take or skip a course session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/{sessionId}": {
            "delete": {
                "tags": ["enrollment"],
                "summary": "Clear a choice",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "sessionId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["users"],
                "summary": "List accounts",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "role", "in": "query", "type": "string", "enum": ["ADMIN", "DOSEN", "MAHASISWA"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["users"],
                "summary": "Create an account",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/users/{id}/active": {
            "patch": {
                "tags": ["users"],
                "summary": "Enable or disable an account",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetActiveRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "User not found"}
                }
            }
        },
        "/users/{id}/kelas": {
            "patch": {
                "tags": ["users"],
                "summary": "Move a student to another class",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetKelasRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "User not found"}
                }
            }
        },
        "/dashboard/summary": {
            "get": {
                "tags": ["dashboard"],
                "summary": "Dashboard counts",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "refresh", "in": "query", "type": "boolean", "description": "discard the cached copy first"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "GenerateMeetingsRequest": {
            "type": "object",
            "properties": {
                "count": {"type": "integer", "minimum": 1, "maximum": 20},
                "start_date": {"type": "string", "description": "YYYY-MM-DD"}
            },
            "required": ["count", "start_date"]
        },
        "ShiftMeetingRequest": {
            "type": "object",
            "properties": {
                "start_date": {"type": "string", "description": "YYYY-MM-DD"},
                "title": {"type": "string", "description": "optional new title for the edited meeting"}
            },
            "required": ["start_date"]
        },
        "CreateEntryRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "date": {"type": "string", "description": "YYYY-MM-DD"},
                "end_date": {"type": "string", "description": "YYYY-MM-DD, optional; defaults to date for a single-day entry"}
            },
            "required": ["title", "date"]
        },
        "CourseSessionRequest": {
            "type": "object",
            "properties": {
                "kode": {"type": "string"},
                "matkul": {"type": "string"},
                "kelas": {"type": "string"},
                "dosen_id": {"type": "string"},
                "dosen_name": {"type": "string"},
                "hari": {"type": "string", "enum": ["senin", "selasa", "rabu", "kamis", "jumat", "sabtu", "minggu"]},
                "jam_mulai": {"type": "string"},
                "jam_selesai": {"type": "string"},
                "ruang": {"type": "string"},
                "sks": {"type": "integer"}
            },
            "required": ["kode", "matkul", "kelas", "dosen_id", "dosen_name", "hari", "jam_mulai", "jam_selesai", "sks"]
        },
        "SubmitRequest": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "status": {"type": "string", "enum": ["H", "I", "S"]},
                "note": {"type": "string"}
            },
            "required": ["session_id", "status"]
        },
        "MatrixSaveRequest": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "cells": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/MatrixCell"}
                }
            },
            "required": ["session_id", "cells"]
        },
        "MatrixCell": {
            "type": "object",
            "properties": {
                "nim": {"type": "string"},
                "sequence_number": {"type": "integer"},
                "status": {"type": "string", "enum": ["H", "I", "S", "A"]},
                "note": {"type": "string"}
            },
            "required": ["nim", "sequence_number", "status"]
        },
        "EnrollmentRequest": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "state": {"type": "string", "enum": ["taken", "skipped"]}
            },
            "required": ["session_id", "state"]
        },
        "CreateUserRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 6},
                "name": {"type": "string"},
                "role": {"type": "string", "enum": ["ADMIN", "DOSEN", "MAHASISWA"]},
                "member_id": {"type": "string", "description": "NIM or NIP, required for non-admin roles"},
                "kelas": {"type": "string", "description": "required for students"}
            },
            "required": ["email", "password", "name", "role"]
        },
        "SetActiveRequest": {
            "type": "object",
            "properties": {
                "active": {"type": "boolean"}
            },
            "required": ["active"]
        },
        "SetKelasRequest": {
            "type": "object",
            "properties": {
                "kelas": {"type": "string"}
            },
            "required": ["kelas"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "per_page": {"type": "integer"},
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
