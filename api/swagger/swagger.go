package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Gym Back Office API",
        "description": "Subscriptions, payments, check-in and staff attendance for the front desk",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {
            "name": "Check-In",
            "description": "Scanner endpoints"
        },
        {
            "name": "Subscriptions",
            "description": "Session subscription ledger"
        },
        {
            "name": "Payments",
            "description": "Receipts and balance payments"
        },
        {
            "name": "Sessions",
            "description": "Session history"
        },
        {
            "name": "Staff",
            "description": "Staff registry and shifts"
        },
        {
            "name": "Members",
            "description": "Loyalty points"
        },
        {
            "name": "Reports",
            "description": "File exports"
        },
        {
            "name": "Health",
            "description": "Probes"
        }
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": [
                    "Health"
                ],
                "summary": "Liveness probe",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "tags": [
                    "Health"
                ],
                "summary": "Readiness probe",
                "responses": {
                    "200": {
                        "description": "Ready"
                    },
                    "503": {
                        "description": "A dependency is down"
                    }
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": [
                    "Health"
                ],
                "summary": "Prometheus metrics",
                "responses": {
                    "200": {
                        "description": "Prometheus exposition"
                    }
                }
            }
        },
        "/api/v1/check-in": {
            "post": {
                "tags": [
                    "Check-In"
                ],
                "summary": "Apply a scanned code (anonymous self check-in allowed)",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CheckInRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "504": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "get": {
                "tags": [
                    "Check-In"
                ],
                "summary": "Validate a code without consuming it",
                "parameters": [
                    {
                        "name": "code",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "service_type",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/subscriptions/{serviceType}": {
            "get": {
                "tags": [
                    "Subscriptions"
                ],
                "summary": "List subscriptions",
                "parameters": [
                    {
                        "name": "serviceType",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "pt",
                            "nutrition",
                            "physiotherapy",
                            "group_class"
                        ]
                    },
                    {
                        "name": "search",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "provider",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "band",
                        "in": "query",
                        "type": "string",
                        "enum": [
                            "zero",
                            "low",
                            "normal"
                        ]
                    },
                    {
                        "name": "kind",
                        "in": "query",
                        "type": "string",
                        "enum": [
                            "regular",
                            "day_use"
                        ]
                    },
                    {
                        "name": "status",
                        "in": "query",
                        "type": "string",
                        "enum": [
                            "active",
                            "expiring_soon",
                            "expired"
                        ]
                    },
                    {
                        "name": "sort",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "order",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "post": {
                "tags": [
                    "Subscriptions"
                ],
                "summary": "Sell a subscription",
                "parameters": [
                    {
                        "name": "serviceType",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "pt",
                            "nutrition",
                            "physiotherapy",
                            "group_class"
                        ]
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateSubscriptionRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "put": {
                "tags": [
                    "Subscriptions"
                ],
                "summary": "Correct a subscription",
                "parameters": [
                    {
                        "name": "serviceType",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "pt",
                            "nutrition",
                            "physiotherapy",
                            "group_class"
                        ]
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdateSubscriptionRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "delete": {
                "tags": [
                    "Subscriptions"
                ],
                "summary": "Delete a subscription with its history (ADMIN)",
                "parameters": [
                    {
                        "name": "serviceType",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "pt",
                            "nutrition",
                            "physiotherapy",
                            "group_class"
                        ]
                    },
                    {
                        "name": "number",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "id",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Deleted"
                    },
                    "404": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/subscriptions/{serviceType}/lookup": {
            "get": {
                "tags": [
                    "Subscriptions"
                ],
                "summary": "Get a subscription by number or id",
                "parameters": [
                    {
                        "name": "serviceType",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "pt",
                            "nutrition",
                            "physiotherapy",
                            "group_class"
                        ]
                    },
                    {
                        "name": "number",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "id",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/subscriptions/{serviceType}/summary": {
            "get": {
                "tags": [
                    "Subscriptions"
                ],
                "summary": "Counts by status, band and kind plus outstanding balance",
                "parameters": [
                    {
                        "name": "serviceType",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "pt",
                            "nutrition",
                            "physiotherapy",
                            "group_class"
                        ]
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/subscriptions/{serviceType}/renew": {
            "post": {
                "tags": [
                    "Subscriptions"
                ],
                "summary": "Add sessions to a subscription",
                "parameters": [
                    {
                        "name": "serviceType",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "pt",
                            "nutrition",
                            "physiotherapy",
                            "group_class"
                        ]
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/RenewSubscriptionRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/subscriptions/{serviceType}/pay-remaining": {
            "post": {
                "tags": [
                    "Payments"
                ],
                "summary": "Pay against the outstanding balance",
                "parameters": [
                    {
                        "name": "serviceType",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "pt",
                            "nutrition",
                            "physiotherapy",
                            "group_class"
                        ]
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/PayRemainingRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/subscriptions/{serviceType}/payments": {
            "get": {
                "tags": [
                    "Payments"
                ],
                "summary": "List payment receipts",
                "parameters": [
                    {
                        "name": "serviceType",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "pt",
                            "nutrition",
                            "physiotherapy",
                            "group_class"
                        ]
                    },
                    {
                        "name": "number",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "id",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "from",
                        "in": "query",
                        "type": "string",
                        "format": "date"
                    },
                    {
                        "name": "to",
                        "in": "query",
                        "type": "string",
                        "format": "date"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/subscriptions/{serviceType}/sessions": {
            "get": {
                "tags": [
                    "Sessions"
                ],
                "summary": "Session history",
                "parameters": [
                    {
                        "name": "serviceType",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "pt",
                            "nutrition",
                            "physiotherapy",
                            "group_class"
                        ]
                    },
                    {
                        "name": "number",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "id",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "provider",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "from",
                        "in": "query",
                        "type": "string",
                        "format": "date"
                    },
                    {
                        "name": "to",
                        "in": "query",
                        "type": "string",
                        "format": "date"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "post": {
                "tags": [
                    "Sessions"
                ],
                "summary": "Register a session by subscription number",
                "parameters": [
                    {
                        "name": "serviceType",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "pt",
                            "nutrition",
                            "physiotherapy",
                            "group_class"
                        ]
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/RegisterSessionRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/subscriptions/{serviceType}/sessions/{id}": {
            "delete": {
                "tags": [
                    "Sessions"
                ],
                "summary": "Delete a session record (the session is not restored)",
                "parameters": [
                    {
                        "name": "serviceType",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "pt",
                            "nutrition",
                            "physiotherapy",
                            "group_class"
                        ]
                    },
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Deleted"
                    },
                    "404": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/staff": {
            "get": {
                "tags": [
                    "Staff"
                ],
                "summary": "List staff",
                "parameters": [
                    {
                        "name": "search",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "position",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "active",
                        "in": "query",
                        "type": "boolean"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "post": {
                "tags": [
                    "Staff"
                ],
                "summary": "Add a staff member",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateStaffRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/staff/{id}": {
            "get": {
                "tags": [
                    "Staff"
                ],
                "summary": "Get a staff member",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "put": {
                "tags": [
                    "Staff"
                ],
                "summary": "Update a staff member",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdateStaffRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "delete": {
                "tags": [
                    "Staff"
                ],
                "summary": "Deactivate a staff member",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Deactivated"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/staff/attendance": {
            "get": {
                "tags": [
                    "Staff"
                ],
                "summary": "Staff shift history",
                "parameters": [
                    {
                        "name": "staff_id",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "open",
                        "in": "query",
                        "type": "boolean"
                    },
                    {
                        "name": "from",
                        "in": "query",
                        "type": "string",
                        "format": "date"
                    },
                    {
                        "name": "to",
                        "in": "query",
                        "type": "string",
                        "format": "date"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/staff/attendance/{id}": {
            "delete": {
                "tags": [
                    "Staff"
                ],
                "summary": "Delete a shift record",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Deleted"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/members": {
            "post": {
                "tags": [
                    "Members"
                ],
                "summary": "Open a loyalty account",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateMemberRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/members/{number}/points": {
            "get": {
                "tags": [
                    "Members"
                ],
                "summary": "Points balance and history",
                "parameters": [
                    {
                        "name": "number",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "post": {
                "tags": [
                    "Members"
                ],
                "summary": "Award or adjust points",
                "parameters": [
                    {
                        "name": "number",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AwardPointsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/reports/staff-attendance": {
            "get": {
                "tags": [
                    "Reports"
                ],
                "summary": "Staff timesheet export",
                "parameters": [
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "enum": [
                            "csv",
                            "pdf",
                            "xlsx"
                        ]
                    },
                    {
                        "name": "from",
                        "in": "query",
                        "type": "string",
                        "format": "date"
                    },
                    {
                        "name": "to",
                        "in": "query",
                        "type": "string",
                        "format": "date"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Report file",
                        "schema": {
                            "type": "file"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "text/csv",
                    "application/pdf",
                    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
                ]
            }
        },
        "/api/v1/reports/sessions/{serviceType}": {
            "get": {
                "tags": [
                    "Reports"
                ],
                "summary": "Session report export",
                "parameters": [
                    {
                        "name": "serviceType",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "pt",
                            "nutrition",
                            "physiotherapy",
                            "group_class"
                        ]
                    },
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "enum": [
                            "csv",
                            "pdf",
                            "xlsx"
                        ]
                    },
                    {
                        "name": "from",
                        "in": "query",
                        "type": "string",
                        "format": "date"
                    },
                    {
                        "name": "to",
                        "in": "query",
                        "type": "string",
                        "format": "date"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Report file",
                        "schema": {
                            "type": "file"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "text/csv",
                    "application/pdf",
                    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
                ]
            }
        }
    },
    "definitions": {
        "CheckInRequest": {
            "type": "object",
            "required": [
                "code"
            ],
            "properties": {
                "code": {
                    "type": "string"
                },
                "service_type": {
                    "type": "string"
                }
            }
        },
        "PaymentPart": {
            "type": "object",
            "properties": {
                "method": {
                    "type": "string"
                },
                "amount": {
                    "type": "string",
                    "example": "150.00"
                },
                "points": {
                    "type": "integer"
                }
            }
        },
        "PaymentInput": {
            "type": "object",
            "properties": {
                "method": {
                    "type": "string",
                    "enum": [
                        "cash",
                        "visa",
                        "instapay",
                        "wallet",
                        "points"
                    ]
                },
                "methods": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/PaymentPart"
                    }
                },
                "staff_name": {
                    "type": "string"
                }
            }
        },
        "CreateSubscriptionRequest": {
            "type": "object",
            "required": [
                "client_name"
            ],
            "properties": {
                "client_name": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                },
                "provider_name": {
                    "type": "string"
                },
                "member_number": {
                    "type": "integer"
                },
                "subscription_number": {
                    "type": "integer"
                },
                "day_use": {
                    "type": "boolean"
                },
                "sessions_purchased": {
                    "type": "integer"
                },
                "price_per_session": {
                    "type": "string",
                    "example": "150.00"
                },
                "remaining_amount": {
                    "type": "string",
                    "example": "150.00"
                },
                "start_date": {
                    "type": "string",
                    "format": "date"
                },
                "expiry_date": {
                    "type": "string",
                    "format": "date"
                },
                "payment": {
                    "$ref": "#/definitions/PaymentInput"
                }
            }
        },
        "UpdateSubscriptionRequest": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "number": {
                    "type": "integer"
                },
                "client_name": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                },
                "provider_name": {
                    "type": "string"
                },
                "member_number": {
                    "type": "integer"
                },
                "sessions_remaining": {
                    "type": "integer"
                },
                "remaining_amount": {
                    "type": "string",
                    "example": "150.00"
                },
                "start_date": {
                    "type": "string",
                    "format": "date"
                },
                "expiry_date": {
                    "type": "string",
                    "format": "date"
                }
            }
        },
        "RenewSubscriptionRequest": {
            "type": "object",
            "required": [
                "sessions"
            ],
            "properties": {
                "id": {
                    "type": "string"
                },
                "number": {
                    "type": "integer"
                },
                "sessions": {
                    "type": "integer"
                },
                "price_per_session": {
                    "type": "string",
                    "example": "150.00"
                },
                "remaining_amount": {
                    "type": "string",
                    "example": "150.00"
                },
                "provider_name": {
                    "type": "string"
                },
                "start_date": {
                    "type": "string",
                    "format": "date"
                },
                "expiry_date": {
                    "type": "string",
                    "format": "date"
                },
                "payment": {
                    "$ref": "#/definitions/PaymentInput"
                }
            }
        },
        "PayRemainingRequest": {
            "type": "object",
            "required": [
                "amount"
            ],
            "properties": {
                "id": {
                    "type": "string"
                },
                "number": {
                    "type": "integer"
                },
                "amount": {
                    "type": "string",
                    "example": "150.00"
                },
                "method": {
                    "type": "string"
                },
                "methods": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/PaymentPart"
                    }
                },
                "staff_name": {
                    "type": "string"
                }
            }
        },
        "RegisterSessionRequest": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "number": {
                    "type": "integer"
                },
                "session_date": {
                    "type": "string",
                    "format": "date-time"
                },
                "notes": {
                    "type": "string"
                }
            }
        },
        "CreateStaffRequest": {
            "type": "object",
            "required": [
                "name",
                "position"
            ],
            "properties": {
                "staff_number": {
                    "type": "integer"
                },
                "name": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                },
                "position": {
                    "type": "string"
                },
                "salary": {
                    "type": "string",
                    "example": "150.00"
                }
            }
        },
        "UpdateStaffRequest": {
            "type": "object",
            "required": [
                "staff_number",
                "name",
                "position"
            ],
            "properties": {
                "staff_number": {
                    "type": "integer"
                },
                "name": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                },
                "position": {
                    "type": "string"
                },
                "salary": {
                    "type": "string",
                    "example": "150.00"
                },
                "is_active": {
                    "type": "boolean"
                }
            }
        },
        "CreateMemberRequest": {
            "type": "object",
            "required": [
                "name",
                "phone"
            ],
            "properties": {
                "member_number": {
                    "type": "integer"
                },
                "name": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                },
                "points": {
                    "type": "integer"
                }
            }
        },
        "AwardPointsRequest": {
            "type": "object",
            "required": [
                "points"
            ],
            "properties": {
                "points": {
                    "type": "integer"
                },
                "action": {
                    "type": "string",
                    "enum": [
                        "earned",
                        "adjusted"
                    ]
                },
                "description": {
                    "type": "string"
                }
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_count": {
                    "type": "integer"
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "pagination": {
                    "$ref": "#/definitions/Pagination"
                },
                "meta": {
                    "type": "object"
                }
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
