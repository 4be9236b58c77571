package view

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	flashCookie = "flash"
	flashKey    = "flash_state"
)

// Flash categories
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-time message shown on the next rendered page
type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

type flashState struct {
	incoming  []Flash
	pending   []Flash
	hadCookie bool
	consumed  bool
}

// FlashMiddleware carries flash messages across redirects in a cookie.
// Messages added during a request are shown by the page rendered in the same
// response or, when the response is a redirect, by the next rendered page.
func FlashMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			st := &flashState{}
			if ck, err := c.Cookie(flashCookie); err == nil {
				st.incoming = decodeFlashes(ck.Value)
				st.hadCookie = true
			}
			c.Set(flashKey, st)

			c.Response().Before(func() {
				switch {
				case st.consumed && st.hadCookie:
					c.SetCookie(flashCookieValue("", -1))
				case !st.consumed && len(st.pending) > 0:
					all := append(append([]Flash{}, st.incoming...), st.pending...)
					c.SetCookie(flashCookieValue(encodeFlashes(all), 0))
				}
			})

			return next(c)
		}
	}
}

func state(c echo.Context) *flashState {
	if st, ok := c.Get(flashKey).(*flashState); ok {
		return st
	}
	st := &flashState{}
	c.Set(flashKey, st)
	return st
}

// AddFlash queues a message for display
func AddFlash(c echo.Context, category, message string) {
	st := state(c)
	st.pending = append(st.pending, Flash{Category: category, Message: message})
}

// Success queues a success message
func Success(c echo.Context, message string) {
	AddFlash(c, FlashSuccess, message)
}

// Error queues an error message
func Error(c echo.Context, message string) {
	AddFlash(c, FlashError, message)
}

// Flashes returns and consumes every message waiting for display
func Flashes(c echo.Context) []Flash {
	st := state(c)
	st.consumed = true
	return append(append([]Flash{}, st.incoming...), st.pending...)
}

func flashCookieValue(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     flashCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func encodeFlashes(flashes []Flash) string {
	data, err := json.Marshal(flashes)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

func decodeFlashes(value string) []Flash {
	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(data, &flashes); err != nil {
		return nil
	}
	return flashes
}
