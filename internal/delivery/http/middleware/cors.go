package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS - страница анкеты открывается с другого домена, поэтому origins задаются в конфиге.
// Пустая строка разрешает любой origin (без credentials).
func CORS(origins string) fiber.Handler {
	cfg := cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Accept,Accept-Language",
	}
	if origins != "" {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}
