package middleware

import "github.com/gofiber/fiber/v2"

// NoCache marks responses as non-cacheable. Presigned download URLs expire;
// a cached copy would hand out dead links.
func NoCache() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		c.Set(fiber.HeaderCacheControl, "no-store")
		return err
	}
}
