package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/victornm/jeopardy/internal/errors"
	"github.com/victornm/jeopardy/internal/game"
	"github.com/victornm/jeopardy/internal/session"
)

const maxBankSize = 4 << 20

// Export downloads the board as a question bank file.
func (a *API) Export(c *gin.Context) {
	b, err := a.ss.Export(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, game.BankFilename))
	c.Data(http.StatusOK, game.BankMIMEType, b)
}

// Import replaces the board with an uploaded question bank, sent either as the raw request
// body or as the "file" field of a multipart form.
func (a *API) Import(c *gin.Context) {
	data, err := readBank(c)
	if err != nil {
		writeError(c, err)
		return
	}

	st, err := a.ss.Import(c.Request.Context(), session.ImportRequest{Data: data})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, st)
}

func readBank(c *gin.Context) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBankSize)
	r := io.Reader(c.Request.Body)

	if c.ContentType() == "multipart/form-data" {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, errors.New(errors.CodeInvalidArgument,
				errors.WithMessagef("missing file: %v", err),
				errors.WithCause(err),
			)
		}

		f, err := fh.Open()
		if err != nil {
			return nil, errors.Internal(err)
		}
		defer f.Close()

		r = io.LimitReader(f, maxBankSize)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("read question bank: %v", err),
			errors.WithCause(err),
		)
	}

	return data, nil
}
