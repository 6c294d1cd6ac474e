package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func cookieNamed(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestFlashRoundTrip(t *testing.T) {
	w := httptest.NewRecorder()
	AddFlash(w, httptest.NewRequest("POST", "/post/create/", nil), LevelSuccess, "Post created successfully!")

	c := cookieNamed(w.Result().Cookies(), FlashCookieName)
	if c == nil {
		t.Fatal("expected flash cookie")
	}
	if !c.HttpOnly {
		t.Error("expected HttpOnly flash cookie")
	}

	req := httptest.NewRequest("GET", "/post/hello/", nil)
	req.AddCookie(c)
	w2 := httptest.NewRecorder()
	flashes := PopFlashes(w2, req)

	if len(flashes) != 1 {
		t.Fatalf("got %d flashes, want 1", len(flashes))
	}
	if flashes[0].Level != LevelSuccess || flashes[0].Message != "Post created successfully!" {
		t.Errorf("flash = %+v", flashes[0])
	}

	expired := cookieNamed(w2.Result().Cookies(), FlashCookieName)
	if expired == nil || expired.MaxAge != -1 {
		t.Errorf("expected flash cookie to be expired, got %+v", expired)
	}
}

func TestAddFlashKeepsPending(t *testing.T) {
	w := httptest.NewRecorder()
	AddFlash(w, httptest.NewRequest("GET", "/", nil), LevelInfo, "first")
	first := cookieNamed(w.Result().Cookies(), FlashCookieName)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(first)
	w2 := httptest.NewRecorder()
	AddFlash(w2, req, LevelError, "second")

	req2 := httptest.NewRequest("GET", "/", nil)
	req2.AddCookie(cookieNamed(w2.Result().Cookies(), FlashCookieName))
	flashes := PopFlashes(httptest.NewRecorder(), req2)
	if len(flashes) != 2 || flashes[0].Message != "first" || flashes[1].Message != "second" {
		t.Errorf("flashes = %+v", flashes)
	}
}

func TestAddFlashTwiceInOneResponse(t *testing.T) {
	w := httptest.NewRecorder()
	http.SetCookie(w, &http.Cookie{Name: "other", Value: "1"})
	r := httptest.NewRequest("POST", "/admin/comments/", nil)
	AddFlash(w, r, LevelSuccess, "first")
	AddFlash(w, r, LevelInfo, "second")

	var flashCookies int
	for _, c := range w.Result().Cookies() {
		if c.Name == FlashCookieName {
			flashCookies++
		}
	}
	if flashCookies != 1 {
		t.Fatalf("got %d flash cookies, want 1", flashCookies)
	}
	if cookieNamed(w.Result().Cookies(), "other") == nil {
		t.Error("unrelated cookie was dropped")
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookieNamed(w.Result().Cookies(), FlashCookieName))
	flashes := PopFlashes(httptest.NewRecorder(), req)
	if len(flashes) != 2 || flashes[0].Message != "first" || flashes[1].Message != "second" {
		t.Errorf("flashes = %+v", flashes)
	}
}

func TestPopFlashesWithoutCookie(t *testing.T) {
	w := httptest.NewRecorder()
	if got := PopFlashes(w, httptest.NewRequest("GET", "/", nil)); got != nil {
		t.Errorf("expected no flashes, got %+v", got)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("no cookie should be written when nothing is pending")
	}
}

func TestPopFlashesIgnoresGarbage(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: FlashCookieName, Value: "!!not-base64"})
	if got := PopFlashes(httptest.NewRecorder(), req); got != nil {
		t.Errorf("expected nil for malformed cookie, got %+v", got)
	}
}
