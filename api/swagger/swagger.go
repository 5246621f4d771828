package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Commune Intent API",
        "description": "Message intent detection and event scheduling pipeline",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Messages", "description": "Chat message ingestion and intent detection"},
        {"name": "Intents", "description": "Admin review of detected intents"},
        {"name": "Notifications", "description": "Per-admin intent notification inbox"},
        {"name": "Calendar", "description": "Materialized community events"},
        {"name": "Digest", "description": "Pending-intent exports"}
    ],
    "paths": {
        "/messages": {
            "post": {
                "tags": ["Messages"],
                "summary": "Run intent detection for a chat message",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/IngestMessageRequest"}}
                ],
                "responses": {
                    "200": {"description": "Already classified", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "201": {"description": "Classified", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Detection already in progress"}
                }
            }
        },
        "/communities/{communityId}/intents": {
            "get": {
                "tags": ["Intents"],
                "summary": "List unprocessed intents",
                "parameters": [
                    {"name": "communityId", "in": "path", "required": true, "type": "string"},
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/intents/{id}": {
            "patch": {
                "tags": ["Intents"],
                "summary": "Store edited details on an unprocessed event intent",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConfirmIntentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Intent already processed"}
                }
            }
        },
        "/intents/{id}/confirm": {
            "post": {
                "tags": ["Intents"],
                "summary": "Confirm an event intent into a calendar event",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/ConfirmIntentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Missing or malformed date/time"},
                    "409": {"description": "Intent already processed"}
                }
            }
        },
        "/intents/{id}/dismiss": {
            "post": {
                "tags": ["Intents"],
                "summary": "Dismiss an intent from the caller's review view; the stored intent is untouched",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List the caller's intent notifications",
                "parameters": [
                    {"name": "unread", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications/{id}/read": {
            "patch": {
                "tags": ["Notifications"],
                "summary": "Mark one notification as read",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/communities/{communityId}/events": {
            "get": {
                "tags": ["Calendar"],
                "summary": "List a community's calendar events",
                "parameters": [
                    {"name": "communityId", "in": "path", "required": true, "type": "string"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/events/{id}": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Fetch one calendar event",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/communities/{communityId}/digest/pending-events": {
            "get": {
                "tags": ["Digest"],
                "summary": "Download the pending event intents digest as PDF",
                "parameters": [
                    {"name": "communityId", "in": "path", "required": true, "type": "string"}
                ],
                "produces": ["application/pdf"],
                "responses": {
                    "200": {"description": "PDF document"}
                }
            }
        }
    },
    "definitions": {
        "IngestMessageRequest": {
            "type": "object",
            "properties": {
                "message_id": {"type": "string"},
                "content": {"type": "string"},
                "user_id": {"type": "string"},
                "community_id": {"type": "string"},
                "created_at": {"type": "string"}
            },
            "required": ["message_id", "content", "user_id", "community_id"]
        },
        "ConfirmIntentRequest": {
            "type": "object",
            "properties": {
                "details": {"$ref": "#/definitions/EventDetails"}
            }
        },
        "EventDetails": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "date": {"type": "string"},
                "time": {"type": "string"},
                "location": {"type": "string"},
                "suggested_duration": {"type": "integer"},
                "suggested_capacity": {"type": "integer"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "is_online": {"type": "boolean"},
                "meeting_url": {"type": "string"}
            }
        },
        "MessageIntent": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "message_id": {"type": "string"},
                "community_id": {"type": "string"},
                "intent_type": {"type": "string"},
                "confidence": {"type": "number"},
                "details": {"type": "object"},
                "detected_by": {"type": "string"},
                "is_processed": {"type": "boolean"},
                "processed_at": {"type": "string"},
                "processed_by": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "CalendarEvent": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "community_id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "location": {"type": "string"},
                "is_online": {"type": "boolean"},
                "meeting_url": {"type": "string"},
                "capacity": {"type": "integer"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "source_intent_id": {"type": "string"},
                "created_by": {"type": "string"}
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
