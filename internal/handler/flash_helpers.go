package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"blackboxscan/internal/web"

	"github.com/gin-gonic/gin"
)

const (
	flashCookieName = "flash_message"
	flashCookieTTL  = 30 * time.Second
)

// setFlash stores a signed flash cookie (HMAC-SHA256 signature followed by
// the JSON payload, base64url encoded).
func (h *Handler) setFlash(c *gin.Context, flash web.Flash) error {
	jsonData, err := json.Marshal(flash)
	if err != nil {
		return fmt.Errorf("failed to marshal flash message: %w", err)
	}

	mac := hmac.New(sha256.New, h.flashSecret)
	mac.Write(jsonData)
	signedData := append(mac.Sum(nil), jsonData...)

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookieName,
		base64.URLEncoding.EncodeToString(signedData),
		int(flashCookieTTL.Seconds()),
		"/",
		"",
		h.secureCookies,
		true,
	)
	return nil
}

// popFlash reads, verifies and deletes the flash cookie. A missing cookie
// yields nil without error.
func (h *Handler) popFlash(c *gin.Context) (*web.Flash, error) {
	cookie, err := c.Cookie(flashCookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get flash cookie: %w", err)
	}

	c.SetCookie(flashCookieName, "", -1, "/", "", h.secureCookies, true)

	signedData, err := base64.URLEncoding.DecodeString(cookie)
	if err != nil {
		return nil, fmt.Errorf("failed to decode flash cookie: %w", err)
	}
	if len(signedData) < sha256.Size {
		return nil, errors.New("invalid flash cookie length")
	}

	receivedSig := signedData[:sha256.Size]
	jsonData := signedData[sha256.Size:]

	mac := hmac.New(sha256.New, h.flashSecret)
	mac.Write(jsonData)
	if !hmac.Equal(receivedSig, mac.Sum(nil)) {
		return nil, errors.New("invalid flash cookie signature")
	}

	var flash web.Flash
	if err := json.Unmarshal(jsonData, &flash); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flash message: %w", err)
	}
	return &flash, nil
}
