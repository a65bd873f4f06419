package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Hostel Gate Pass API",
        "description": "Gate-pass request and approval service for hostel residents",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login, token refresh and session management"},
        {"name": "GatePasses", "description": "Gate-pass submission, review and export"},
        {"name": "Dashboard", "description": "Status summaries"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate by email and password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token pair issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Rotate a refresh token",
                "responses": {
                    "200": {"description": "New token pair"},
                    "401": {"description": "Token expired or revoked"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke the presented refresh token",
                "responses": {
                    "204": {"description": "Session revoked"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current account profile",
                "responses": {
                    "200": {"description": "Directory record"}
                }
            }
        },
        "/auth/change-password": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Change the current user's password",
                "responses": {
                    "204": {"description": "Password changed, sessions revoked"}
                }
            }
        },
        "/gate-passes": {
            "get": {
                "tags": ["GatePasses"],
                "summary": "List gate passes visible to the caller",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "enum": ["PENDING", "APPROVED", "REJECTED"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Passes in creation order"}
                }
            },
            "post": {
                "tags": ["GatePasses"],
                "summary": "Submit a leave request (students only)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateGatePassRequest"}}
                ],
                "responses": {
                    "201": {"description": "Pass created with status PENDING"},
                    "400": {"description": "Validation failure"},
                    "403": {"description": "Caller is not a student"}
                }
            }
        },
        "/gate-passes/pending": {
            "get": {
                "tags": ["GatePasses"],
                "summary": "List all pending requests (staff only)",
                "responses": {
                    "200": {"description": "Pending passes in creation order"},
                    "403": {"description": "Caller is not staff"}
                }
            }
        },
        "/gate-passes/{id}": {
            "get": {
                "tags": ["GatePasses"],
                "summary": "Fetch one gate pass",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "The pass"},
                    "404": {"description": "Unknown identifier"}
                }
            }
        },
        "/gate-passes/{id}/review": {
            "post": {
                "tags": ["GatePasses"],
                "summary": "Approve or reject a pending pass (staff only)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReviewGatePassRequest"}}
                ],
                "responses": {
                    "200": {"description": "Reviewed pass"},
                    "404": {"description": "Unknown identifier"},
                    "409": {"description": "Already reviewed"}
                }
            }
        },
        "/gate-passes/{id}/pdf": {
            "get": {
                "tags": ["GatePasses"],
                "summary": "Printable permit for an approved pass",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF document"},
                    "409": {"description": "Pass is not approved"}
                }
            }
        },
        "/gate-passes/export": {
            "get": {
                "tags": ["GatePasses"],
                "summary": "CSV export of the register (staff only)",
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "CSV document"}
                }
            }
        },
        "/dashboard/summary": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Status counts and recent activity",
                "responses": {
                    "200": {"description": "Summary payload"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "CreateGatePassRequest": {
            "type": "object",
            "required": ["reason", "destination", "depart_at", "return_at"],
            "properties": {
                "reason": {"type": "string"},
                "destination": {"type": "string"},
                "depart_at": {"type": "string", "format": "date-time"},
                "return_at": {"type": "string", "format": "date-time"}
            }
        },
        "ReviewGatePassRequest": {
            "type": "object",
            "required": ["decision"],
            "properties": {
                "decision": {"type": "string", "enum": ["APPROVED", "REJECTED"]},
                "remarks": {"type": "string"}
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
                "pagination": {"type": "object"},
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
