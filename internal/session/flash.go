package session

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// FlashCookieName holds one-shot notices between a redirect and the page
// that follows it. A cookie works for anonymous visitors as well.
const FlashCookieName = "bp_flash"

// Flash levels.
const (
	LevelSuccess = "success"
	LevelError   = "error"
	LevelInfo    = "info"
)

// Flash is a notice shown once on the next rendered page.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// AddFlash queues a notice for the next page. Notices still pending in the
// request cookie and those queued earlier on w are kept.
func AddFlash(w http.ResponseWriter, r *http.Request, level, message string) {
	flashes := append(pendingFlashes(w, r), Flash{Level: level, Message: message})
	payload, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	dropSetCookie(w.Header(), FlashCookieName)
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlashes returns the pending notices and expires the cookie.
func PopFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	flashes := readFlashes(r)
	if _, err := r.Cookie(FlashCookieName); err == nil {
		http.SetCookie(w, &http.Cookie{
			Name:     FlashCookieName,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			MaxAge:   -1,
		})
	}
	return flashes
}

func readFlashes(r *http.Request) []Flash {
	cookie, err := r.Cookie(FlashCookieName)
	if err != nil {
		return nil
	}
	return decodeFlashes(cookie.Value)
}

// pendingFlashes prefers a flash cookie already set on the response, which
// replaces whatever the request carried.
func pendingFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	for _, line := range w.Header().Values("Set-Cookie") {
		if c, err := http.ParseSetCookie(line); err == nil && c.Name == FlashCookieName {
			return decodeFlashes(c.Value)
		}
	}
	return readFlashes(r)
}

func dropSetCookie(h http.Header, name string) {
	lines := h.Values("Set-Cookie")
	if len(lines) == 0 {
		return
	}
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if c, err := http.ParseSetCookie(line); err == nil && c.Name == name {
			continue
		}
		kept = append(kept, line)
	}
	h.Del("Set-Cookie")
	for _, line := range kept {
		h.Add("Set-Cookie", line)
	}
}

func decodeFlashes(value string) []Flash {
	if value == "" {
		return nil
	}
	payload, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(payload, &flashes); err != nil {
		return nil
	}
	return flashes
}
