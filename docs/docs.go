// Package docs registers the OpenAPI description served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Login", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}, "429": {"description": "Too Many Requests"}}}},
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Register a new user", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}},
        "/auth/verify-otp": {"post": {"tags": ["auth"], "summary": "Verify email code", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/auth/resend-otp": {"post": {"tags": ["auth"], "summary": "Resend email code", "responses": {"200": {"description": "OK"}, "429": {"description": "Too Many Requests"}}}},
        "/auth/forgot-password": {"post": {"tags": ["auth"], "summary": "Forgot password", "responses": {"200": {"description": "OK"}}}},
        "/auth/reset-password": {"post": {"tags": ["auth"], "summary": "Reset password", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/auth/logout": {"post": {"tags": ["auth"], "summary": "Logout", "responses": {"200": {"description": "OK"}}}},
        "/session": {"get": {"tags": ["session"], "summary": "Current session", "responses": {"200": {"description": "OK"}}}},
        "/bootstrap": {"get": {"tags": ["session"], "summary": "Bootstrap status", "responses": {"200": {"description": "OK"}}}},
        "/location": {"get": {"tags": ["session"], "summary": "Device location", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}},
        "/wallet": {"get": {"tags": ["wallet"], "summary": "Wallet state", "responses": {"200": {"description": "OK"}}}},
        "/wallet/connect": {"post": {"tags": ["wallet"], "summary": "Connect wallet", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "422": {"description": "Unprocessable Entity"}, "502": {"description": "Bad Gateway"}, "503": {"description": "Service Unavailable"}}}},
        "/wallet/disconnect": {"post": {"tags": ["wallet"], "summary": "Disconnect wallet locally", "responses": {"200": {"description": "OK"}}}},
        "/wallet/link": {"delete": {"tags": ["wallet"], "summary": "Unlink wallet", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}, "502": {"description": "Bad Gateway"}}}},
        "/settings/wallet-status": {"get": {"tags": ["wallet"], "summary": "Wallet settings", "responses": {"200": {"description": "OK"}, "202": {"description": "Accepted"}, "302": {"description": "Found"}}}},
        "/host/wallet": {"get": {"tags": ["host"], "summary": "Host wallet", "responses": {"200": {"description": "OK"}, "202": {"description": "Accepted"}, "302": {"description": "Found"}}}},
        "/profile": {
            "get": {"tags": ["profile"], "summary": "Current profile", "responses": {"200": {"description": "OK"}, "202": {"description": "Accepted"}, "302": {"description": "Found"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["profile"], "summary": "Update profile", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "302": {"description": "Found"}}}
        },
        "/admin/bootstrap": {"get": {"tags": ["admin"], "summary": "Bootstrap diagnostics", "responses": {"200": {"description": "OK"}, "202": {"description": "Accepted"}, "302": {"description": "Found"}}}},
        "/health": {"get": {"tags": ["health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}},
        "/health/ready": {"get": {"tags": ["health"], "summary": "Readiness probe", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "rentclient API",
	Description:      "Session, wallet and route guard host of the rental marketplace client.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
