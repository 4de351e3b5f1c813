package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Cross site cookies must be Secure, so SameSite=None is only used when the
// cookie is.
func setCookie(c *gin.Context, name, value string, ttl time.Duration, secure bool) {
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	cookie := http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	}
	if ttl > 0 {
		cookie.Expires = time.Now().Add(ttl).UTC()
		cookie.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(c.Writer, &cookie)
}

func clearCookie(c *gin.Context, name string, secure bool) {
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	})
}
