package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "GPD API",
        "description": "Demand portfolio approval and signature workflow API",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Demands", "description": "Demand portfolio"},
        {"name": "Approvals", "description": "Approval queue and decisions"},
        {"name": "Requirements", "description": "Functional requirements and signatures"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Login with email and password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/approvals/pending": {
            "get": {
                "tags": ["Approvals"],
                "summary": "List demands pending the caller's decision",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Caller holds no approval role"}
                }
            }
        },
        "/demands": {
            "get": {
                "tags": ["Demands"],
                "summary": "List demands",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "description": "Comma separated status filter"},
                    {"name": "organization_id", "in": "query", "type": "string"},
                    {"name": "created_by", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Demands"],
                "summary": "Create demand",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateDemandRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/demands/{id}": {
            "get": {
                "tags": ["Demands"],
                "summary": "Get demand",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/demands/{id}/decision": {
            "post": {
                "tags": ["Approvals"],
                "summary": "Record the caller's decision on a demand",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DecisionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Caller may not decide at the demand's current stage"},
                    "409": {"description": "Duplicate decision or concurrent update"}
                }
            }
        },
        "/demands/{id}/timeline": {
            "get": {
                "tags": ["Demands"],
                "summary": "Chronological history of a demand",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/requirements": {
            "get": {
                "tags": ["Requirements"],
                "summary": "List functional requirements",
                "parameters": [
                    {"name": "scope", "in": "query", "type": "string", "description": "pending, handled, mine or all"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Requirements"],
                "summary": "Create functional requirement",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRequirementRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/requirements/{id}": {
            "get": {
                "tags": ["Requirements"],
                "summary": "Get requirement with its signatures",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/requirements/{id}/approve": {
            "post": {
                "tags": ["Requirements"],
                "summary": "Approve as the current signer",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/SignRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Caller is not the current signer"},
                    "409": {"description": "Requirement already settled or concurrent update"}
                }
            }
        },
        "/requirements/{id}/reject": {
            "post": {
                "tags": ["Requirements"],
                "summary": "Reject as the current signer",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/SignRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Caller is not the current signer"},
                    "409": {"description": "Requirement already settled or concurrent update"}
                }
            }
        },
        "/requirements/{id}/timeline": {
            "get": {
                "tags": ["Requirements"],
                "summary": "Chronological history of a requirement",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Demand": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "code": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "status": {"type": "string"},
                "organization_id": {"type": "string"},
                "created_by": {"type": "string"},
                "version": {"type": "integer"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "ApprovalRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "demand_id": {"type": "string"},
                "approver_id": {"type": "string"},
                "level": {"type": "string"},
                "decision": {"type": "string"},
                "reason": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "FunctionalRequirement": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "sector": {"type": "string"},
                "status": {"type": "string"},
                "approver_ids": {"type": "array", "items": {"type": "string"}},
                "current_approver_id": {"type": "string"},
                "version": {"type": "integer"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "Signature": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "requirement_id": {"type": "string"},
                "signer_id": {"type": "string"},
                "status": {"type": "string"},
                "token": {"type": "string"},
                "comment": {"type": "string"},
                "signed_at": {"type": "string"}
            }
        },
        "TimelineEntry": {
            "type": "object",
            "properties": {
                "source": {"type": "string"},
                "action": {"type": "string"},
                "actor_id": {"type": "string"},
                "actor_name": {"type": "string"},
                "detail": {"type": "string"},
                "occurred_at": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "CreateDemandRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "organization_id": {"type": "string"}
            },
            "required": ["title", "organization_id"]
        },
        "DecisionRequest": {
            "type": "object",
            "properties": {
                "decision": {"type": "string", "enum": ["APPROVED", "REJECTED", "INFO_REQUESTED"]},
                "reason": {"type": "string"}
            },
            "required": ["decision"]
        },
        "CreateRequirementRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "sector": {"type": "string"},
                "approver_ids": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["title", "description", "sector", "approver_ids"]
        },
        "SignRequest": {
            "type": "object",
            "properties": {
                "comment": {"type": "string"}
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
