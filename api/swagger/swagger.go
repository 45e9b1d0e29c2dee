package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Thesis Hub API",
        "description": "Authorization and lifecycle backend for thesis/capstone management",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and token lifecycle"},
        {"name": "Principals", "description": "Principal management and cascade lifecycle"},
        {"name": "Roles", "description": "Semester-scoped role assignments"},
        {"name": "Semesters", "description": "Semester management and cascade lifecycle"},
        {"name": "Topics", "description": "Topic proposal, review and cascade lifecycle"},
        {"name": "Audit", "description": "Append-only audit trail"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate principal",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Tokens issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Rotate refresh token",
                "responses": {
                    "200": {"description": "Tokens rotated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Token expired or revoked"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke refresh token",
                "responses": {
                    "204": {"description": "Session ended"}
                }
            }
        },
        "/principals": {
            "get": {
                "tags": ["Principals"],
                "summary": "List principals",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Principals"],
                "summary": "Create principal",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/principals/{id}": {
            "get": {
                "tags": ["Principals"],
                "summary": "Get principal",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Principals"],
                "summary": "Update principal",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Updated"}
                }
            },
            "delete": {
                "tags": ["Principals"],
                "summary": "Soft-delete principal and dependents",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "semester_id", "in": "query", "required": false, "type": "string", "description": "Limit the cascade to one semester"}
                ],
                "responses": {
                    "200": {"description": "Cascade summary", "schema": {"$ref": "#/definitions/CascadeResult"}},
                    "409": {"description": "Protected principal"}
                }
            }
        },
        "/principals/{id}/restore": {
            "post": {
                "tags": ["Principals"],
                "summary": "Restore soft-deleted principal",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Cascade summary", "schema": {"$ref": "#/definitions/CascadeResult"}}
                }
            }
        },
        "/principals/{id}/roles": {
            "get": {
                "tags": ["Roles"],
                "summary": "List active role assignments",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/roles": {
            "post": {
                "tags": ["Roles"],
                "summary": "Grant role",
                "responses": {
                    "201": {"description": "Granted"},
                    "400": {"description": "Scope rule violated"}
                }
            }
        },
        "/roles/{id}": {
            "delete": {
                "tags": ["Roles"],
                "summary": "Revoke role assignment",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Revoked"}
                }
            }
        },
        "/semesters": {
            "get": {
                "tags": ["Semesters"],
                "summary": "List semesters",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Semesters"],
                "summary": "Create semester",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/semesters/{id}": {
            "get": {
                "tags": ["Semesters"],
                "summary": "Get semester",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "tags": ["Semesters"],
                "summary": "Update semester",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Updated"}}
            },
            "delete": {
                "tags": ["Semesters"],
                "summary": "Soft-delete semester and everything scoped to it",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Cascade summary", "schema": {"$ref": "#/definitions/CascadeResult"}}
                }
            }
        },
        "/semesters/{id}/restore": {
            "post": {
                "tags": ["Semesters"],
                "summary": "Restore soft-deleted semester",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Cascade summary"}}
            }
        },
        "/topics": {
            "get": {
                "tags": ["Topics"],
                "summary": "List topics",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Topics"],
                "summary": "Propose topic",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/topics/{id}": {
            "get": {
                "tags": ["Topics"],
                "summary": "Get topic",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "tags": ["Topics"],
                "summary": "Update topic",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Updated"}}
            },
            "delete": {
                "tags": ["Topics"],
                "summary": "Soft-delete topic and its subtree",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Cascade summary", "schema": {"$ref": "#/definitions/CascadeResult"}},
                    "409": {"description": "Active registration blocks deletion"}
                }
            }
        },
        "/topics/{id}/restore": {
            "post": {
                "tags": ["Topics"],
                "summary": "Restore soft-deleted topic",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Cascade summary"}}
            }
        },
        "/audit": {
            "get": {
                "tags": ["Audit"],
                "summary": "List audit records",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/audit/{entity_type}/{entity_id}/export": {
            "get": {
                "tags": ["Audit"],
                "summary": "Export audit trail as PDF",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "entity_type", "in": "path", "required": true, "type": "string"},
                    {"name": "entity_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF document"},
                    "404": {"description": "No records for entity"}
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
        "CascadeResult": {
            "type": "object",
            "properties": {
                "root_type": {"type": "string"},
                "root_id": {"type": "string"},
                "already_in_state": {"type": "boolean"},
                "root_mutated": {"type": "boolean"},
                "affected": {"type": "object", "additionalProperties": {"type": "integer"}}
            }
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
