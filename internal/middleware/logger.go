package middleware

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// Logger writes slow or failed requests to dest, typically the zerolog
// logger. Event streams are skipped.
func Logger(dest io.Writer, slow time.Duration) fiber.Handler {
	return logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/api/sse"
		},
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "15:04:05",
		Output: &filteredWriter{
			dest:             dest,
			slowThreshold:    slow,
			errorStatusFloor: fiber.StatusBadRequest,
		},
	})
}

// filteredWriter discards lines of fast, successful requests. Lines look
// like "15:04:05 | 200 | 1.23ms | GET /path".
type filteredWriter struct {
	dest             io.Writer
	slowThreshold    time.Duration
	errorStatusFloor int
}

func (w *filteredWriter) Write(p []byte) (int, error) {
	parts := strings.Split(strings.TrimSpace(string(p)), "|")
	if len(parts) < 3 {
		return w.dest.Write(p)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if status, _ := strconv.Atoi(parts[1]); status >= w.errorStatusFloor {
		return w.dest.Write(p)
	}
	// fiber renders microseconds as "µs", which time.ParseDuration accepts.
	if d, err := time.ParseDuration(parts[2]); err == nil && d >= w.slowThreshold {
		return w.dest.Write(p)
	}
	return len(p), nil
}

func CORS(origins string) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Admin-Key",
		AllowMethods: "GET, POST, PUT, OPTIONS",
	})
}
