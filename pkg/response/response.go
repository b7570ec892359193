package response

import "github.com/gofiber/fiber/v2"

// Envelope standar biar konsisten
type Envelope map[string]any

// ---- In-band ----

// Server menulis body {success, ...payload}. Status transport tidak dipakai
// untuk menandai gagal; client wajib cek field success.
func Server(c *fiber.Ctx, status int, success bool, payload Envelope) error {
	body := make(Envelope, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = success
	return c.Status(status).JSON(body)
}

func Success(c *fiber.Ctx, payload Envelope) error {
	return Server(c, fiber.StatusOK, true, payload)
}

func Failure(c *fiber.Ctx, statusMessage, msg string) error {
	return Server(c, fiber.StatusOK, false, Envelope{
		"statusMessage": statusMessage,
		"error":         msg,
	})
}

// ---- Sukses ----
func OK(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{"data": data})
}

// ---- Error umum ----
type APIError struct {
	Message string         `json:"message"`
	Detail  map[string]any `json:"detail,omitempty"`
}

func Error(c *fiber.Ctx, code int, msg string) error {
	return c.Status(code).JSON(Envelope{"error": APIError{Message: msg}})
}
