package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "AIT CMMS API",
        "description": "Preventive maintenance scheduling and CMMS backend",
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
        {"name": "Auth", "description": "Login and session introspection"},
        {"name": "Schedule", "description": "Weekly PM schedule generation and tracking"},
        {"name": "Equipment", "description": "Asset roster management"},
        {"name": "Work Orders", "description": "Corrective maintenance"},
        {"name": "Parts", "description": "MRO stock"},
        {"name": "Dashboard", "description": "Weekly KPI summary"},
        {"name": "Reports", "description": "Async CSV/PDF exports"}
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
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current user profile",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/generate": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Generate a weekly PM schedule preview",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule": {
            "get": {
                "tags": ["Schedule"],
                "summary": "List one week's schedule",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "weekStart", "in": "query", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Schedule"],
                "summary": "Generate and persist a weekly schedule",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateScheduleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/{id}/complete": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Mark a scheduled PM completed",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CompleteScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already completed"}
                }
            }
        },
        "/schedule/{id}/stale": {
            "delete": {
                "tags": ["Schedule"],
                "summary": "Clear a stale uncompleted schedule row",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/equipment": {
            "get": {
                "tags": ["Equipment"],
                "summary": "List equipment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Equipment"],
                "summary": "Register equipment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateEquipmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Equipment number already registered"}
                }
            }
        },
        "/equipment/{bfmNo}": {
            "get": {
                "tags": ["Equipment"],
                "summary": "Get equipment by BFM number",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "bfmNo", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Equipment"],
                "summary": "Update equipment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "bfmNo", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateEquipmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/equipment/{bfmNo}/status": {
            "patch": {
                "tags": ["Equipment"],
                "summary": "Change equipment lifecycle status",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "bfmNo", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateEquipmentStatusRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/work-orders": {
            "get": {
                "tags": ["Work Orders"],
                "summary": "List work orders",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "bfmNo", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Work Orders"],
                "summary": "Open a work order",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateWorkOrderRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/work-orders/{id}": {
            "get": {
                "tags": ["Work Orders"],
                "summary": "Get a work order",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/work-orders/{id}/status": {
            "patch": {
                "tags": ["Work Orders"],
                "summary": "Change work order status",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateWorkOrderStatusRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/work-orders/{id}/close": {
            "post": {
                "tags": ["Work Orders"],
                "summary": "Close a work order with resolution notes",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CloseWorkOrderRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/parts": {
            "get": {
                "tags": ["Parts"],
                "summary": "List parts",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "lowStock", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Parts"],
                "summary": "Register a part",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreatePartRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/parts/{id}": {
            "get": {
                "tags": ["Parts"],
                "summary": "Get a part",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/parts/{id}/stock": {
            "post": {
                "tags": ["Parts"],
                "summary": "Adjust part stock",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AdjustStockRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Stock would go negative"}
                }
            }
        },
        "/dashboard/kpi": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Weekly KPI summary",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "weekStart", "in": "query", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/system": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Process metrics snapshot",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue an async export job",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Report job status",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Report belongs to another user"}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a finished export by signed token",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "produces": ["text/csv", "application/pdf"],
                "responses": {
                    "200": {"description": "File stream"},
                    "403": {"description": "Invalid or expired download token"}
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
        "GenerateScheduleRequest": {
            "type": "object",
            "properties": {
                "weekStart": {"type": "string", "format": "date"},
                "maxPms": {"type": "integer"}
            },
            "required": ["weekStart"]
        },
        "CompleteScheduleRequest": {
            "type": "object",
            "properties": {
                "technician": {"type": "string"},
                "completedAt": {"type": "string", "format": "date"}
            }
        },
        "CreateEquipmentRequest": {
            "type": "object",
            "properties": {
                "bfmNo": {"type": "string"},
                "description": {"type": "string"},
                "hasWeekly": {"type": "boolean"},
                "hasMonthly": {"type": "boolean"},
                "hasSixMonth": {"type": "boolean"},
                "hasAnnual": {"type": "boolean"},
                "location": {"type": "string"}
            },
            "required": ["bfmNo", "description"]
        },
        "UpdateEquipmentRequest": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "hasWeekly": {"type": "boolean"},
                "hasMonthly": {"type": "boolean"},
                "hasSixMonth": {"type": "boolean"},
                "hasAnnual": {"type": "boolean"},
                "status": {"type": "string", "enum": ["Active", "Run to Failure", "Missing", "Deactivated"]},
                "location": {"type": "string"}
            },
            "required": ["description", "status"]
        },
        "UpdateEquipmentStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["Active", "Run to Failure", "Missing", "Deactivated"]}
            },
            "required": ["status"]
        },
        "CreateWorkOrderRequest": {
            "type": "object",
            "properties": {
                "bfmNo": {"type": "string"},
                "description": {"type": "string"},
                "technician": {"type": "string"}
            },
            "required": ["bfmNo", "description"]
        },
        "UpdateWorkOrderStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["Open", "In Progress"]},
                "technician": {"type": "string"}
            },
            "required": ["status"]
        },
        "CloseWorkOrderRequest": {
            "type": "object",
            "properties": {
                "rootCause": {"type": "string"},
                "downtimeHours": {"type": "number"}
            },
            "required": ["rootCause"]
        },
        "CreatePartRequest": {
            "type": "object",
            "properties": {
                "partNumber": {"type": "string"},
                "description": {"type": "string"},
                "location": {"type": "string"},
                "qtyOnHand": {"type": "integer"},
                "reorderPoint": {"type": "integer"},
                "unitCost": {"type": "number"}
            },
            "required": ["partNumber", "description"]
        },
        "AdjustStockRequest": {
            "type": "object",
            "properties": {
                "delta": {"type": "integer"},
                "reason": {"type": "string"}
            },
            "required": ["delta"]
        },
        "ReportRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["WEEKLY_SCHEDULE", "EQUIPMENT", "WORK_ORDERS", "LOW_STOCK"]},
                "format": {"type": "string", "enum": ["csv", "pdf"]},
                "weekStart": {"type": "string", "format": "date"},
                "status": {"type": "string"}
            },
            "required": ["type", "format"]
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
