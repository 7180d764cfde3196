// Package docs - описание API для swagger UI (/swagger/*).
// Обновляется командой: swag init -g cmd/api/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}
            }
        },
        "/api/v1/scenarios": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Scenarios"],
                "summary": "Сценарии доступности",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/scenarios/rings": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Scenarios"],
                "summary": "Кольца сценариев",
                "parameters": [
                    {"type": "number", "name": "lat", "in": "query"},
                    {"type": "number", "name": "lon", "in": "query"},
                    {"type": "string", "name": "active", "in": "query"}
                ],
                "responses": {"200": {"description": "GeoJSON FeatureCollection"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/v1/sources": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Sources"],
                "summary": "Источники объектов",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/sources/{id}/features": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Sources"],
                "summary": "Объекты источника в видимой области",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "number", "name": "sw_lat", "in": "query", "required": true},
                    {"type": "number", "name": "sw_lon", "in": "query", "required": true},
                    {"type": "number", "name": "ne_lat", "in": "query", "required": true},
                    {"type": "number", "name": "ne_lon", "in": "query", "required": true},
                    {"type": "integer", "default": 2000, "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "GeoJSON FeatureCollection"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/api/v1/sources/{id}/buffers": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Sources"],
                "summary": "Пешие буферы объектов",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "number", "name": "sw_lat", "in": "query", "required": true},
                    {"type": "number", "name": "sw_lon", "in": "query", "required": true},
                    {"type": "number", "name": "ne_lat", "in": "query", "required": true},
                    {"type": "number", "name": "ne_lon", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "GeoJSON FeatureCollection"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/api/v1/reachability/evaluate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Reachability"],
                "summary": "Оценка достижимости",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/v1/sessions": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Открыть сессию карты",
                "parameters": [{"name": "request", "in": "body", "schema": {"type": "object"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/v1/sessions/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Состояние сессии",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "tags": ["Sessions"],
                "summary": "Закрыть сессию",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "Session closed"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/v1/sessions/{id}/origin": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Перенести точку отсчёта",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/v1/sessions/{id}/scenarios/{name}": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Включить или выключить сценарий",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "name", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/v1/sessions/{id}/sources/{source}": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Показать или скрыть слой источника",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "source", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/v1/sessions/{id}/viewport": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Сдвиг или масштаб карты",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "boolean", "name": "immediate", "in": "query"},
                    {"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"202": {"description": "Accepted"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/v1/submissions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Submissions"],
                "summary": "Последние анкеты из архива",
                "parameters": [{"type": "integer", "default": 50, "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Submissions"],
                "summary": "Отправить анкету",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "422": {"description": "Unprocessable Entity"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/api/v1/submissions/form": {
            "post": {
                "consumes": ["multipart/form-data", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["Submissions"],
                "summary": "Отправить анкету обычной формой",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "422": {"description": "Unprocessable Entity"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/api/v1/submissions/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Submissions"],
                "summary": "Анкета из архива",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "503": {"description": "Service Unavailable"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Survey Reachability API",
	Description:      "Карта сценариев доступности для анкеты: объекты ArcGIS, оценка достижимости от точки отсчёта, кольца сценариев и отправка анкеты в таблицу.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
