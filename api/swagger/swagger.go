package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Study Vault API",
        "description": "Academic resource portal: catalog, uploads, moderation and community board",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Catalog", "description": "Branches, semesters, categories, streams and cycles"},
        {"name": "Resources", "description": "Uploads and the approved catalog"},
        {"name": "Votes", "description": "Per-browser up and down votes"},
        {"name": "Moderation", "description": "Pending and approved queues"},
        {"name": "Community", "description": "Q&A board with a rolling window"}
    ],
    "paths": {
        "/taxonomy": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Catalog tables",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/resources": {
            "get": {
                "tags": ["Resources"],
                "summary": "List approved resources in one catalog location",
                "parameters": [
                    {"name": "branch", "in": "query", "required": true, "type": "string"},
                    {"name": "semester", "in": "query", "type": "integer"},
                    {"name": "stream", "in": "query", "type": "string"},
                    {"name": "cycle", "in": "query", "type": "string"},
                    {"name": "category", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Resources"],
                "summary": "Submit a resource for moderation",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "branch", "in": "formData", "required": true, "type": "string"},
                    {"name": "semester", "in": "formData", "type": "integer"},
                    {"name": "stream", "in": "formData", "type": "string"},
                    {"name": "cycle", "in": "formData", "type": "string"},
                    {"name": "category", "in": "formData", "required": true, "type": "string"},
                    {"name": "subject", "in": "formData", "required": true, "type": "string"},
                    {"name": "uploaderAlias", "in": "formData", "type": "string"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/resources/{id}": {
            "get": {
                "tags": ["Resources"],
                "summary": "Get one approved resource",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/resources/{id}/vote": {
            "get": {
                "tags": ["Votes"],
                "summary": "Caller's current vote",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Votes"],
                "summary": "Press the up or down vote button",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VoteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Counter update failed; data holds the rolled back outcome", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/session": {
            "post": {
                "tags": ["Moderation"],
                "summary": "Exchange the moderation password for a session token",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SessionRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/resources": {
            "get": {
                "tags": ["Moderation"],
                "summary": "List a moderation queue",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "status", "in": "query", "type": "string", "enum": ["pending", "approved"]}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/resources/stream": {
            "get": {
                "tags": ["Moderation"],
                "summary": "Live moderation events (server-sent events)",
                "produces": ["text/event-stream"],
                "parameters": [{"name": "token", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "Event stream"}}
            }
        },
        "/admin/resources/export": {
            "get": {
                "tags": ["Moderation"],
                "summary": "Download a queue report",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "enum": ["pending", "approved"]},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "Report file"}}
            }
        },
        "/admin/resources/{id}/approve": {
            "post": {
                "tags": ["Moderation"],
                "summary": "Approve a pending resource",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/resources/{id}": {
            "delete": {
                "tags": ["Moderation"],
                "summary": "Reject or remove a resource",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Storage delete failed; record kept", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/community/posts": {
            "get": {
                "tags": ["Community"],
                "summary": "Recent posts, newest first",
                "parameters": [{"name": "branch", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Community"],
                "summary": "Open a thread",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreatePostRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/community/posts/{id}/replies": {
            "get": {
                "tags": ["Community"],
                "summary": "Replies, oldest first",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Community"],
                "summary": "Reply to a post",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateReplyRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/community/stream": {
            "get": {
                "tags": ["Community"],
                "summary": "Live board events (server-sent events)",
                "produces": ["text/event-stream"],
                "responses": {"200": {"description": "Event stream"}}
            }
        }
    },
    "definitions": {
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
                "meta": {"type": "object"}
            }
        },
        "VoteRequest": {
            "type": "object",
            "required": ["direction"],
            "properties": {
                "direction": {"type": "string", "enum": ["up", "down"]},
                "displayed": {"type": "integer"}
            }
        },
        "SessionRequest": {
            "type": "object",
            "required": ["password"],
            "properties": {"password": {"type": "string"}}
        },
        "CreatePostRequest": {
            "type": "object",
            "required": ["title", "body", "branch"],
            "properties": {
                "title": {"type": "string"},
                "body": {"type": "string"},
                "branch": {"type": "string"},
                "authorAlias": {"type": "string"}
            }
        },
        "CreateReplyRequest": {
            "type": "object",
            "required": ["replyText"],
            "properties": {
                "replyText": {"type": "string"},
                "authorAlias": {"type": "string"}
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
