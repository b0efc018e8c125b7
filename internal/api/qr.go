package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/victornm/jeopardy/internal/errors"
)

const qrSize = 320

// QRCode renders a PNG pointing at the board, for players joining from their phones.
func (a *API) QRCode(c *gin.Context) {
	url := a.publicURL
	if url == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		url = scheme + "://" + c.Request.Host + "/"
	}

	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		writeError(c, errors.Internal(err))
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
