package homespace

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

// handleUploadInstant accepts a multipart upload from the gallery page and
// answers JSON so the page can refresh its grid without a full reload.
func (a *App) handleUploadInstant(c echo.Context) error {
	acct, ok := a.currentAccount(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"success": false,
			"message": "Not authenticated",
		})
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"message": "No file provided",
		})
	}

	kind, err := Classify(fh.Filename)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"message": "File type not allowed",
		})
	}

	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	item, err := a.Media.Upload(acct.Username, fh.Filename, src)
	if err != nil {
		if errors.Is(err, ErrInvalidFile) {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"success": false,
				"message": "File type not allowed",
			})
		}
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"filename": item.Filename,
		"message":  "Upload successful",
		"type":     string(kind),
	})
}

// handleServeUpload streams a stored media file to an authorized viewer.
// ?size=thumb selects the thumbnail rendition for gallery images.
func (a *App) handleServeUpload(c echo.Context) error {
	acct, _ := a.currentAccount(c)
	filename := c.Param("filename")

	var (
		rc   io.ReadCloser
		mime string
		err  error
	)
	if c.QueryParam("size") == "thumb" {
		rc, mime, err = a.Media.ServeThumb(acct.Username, acct.Role, filename)
	} else {
		rc, mime, err = a.Media.Serve(acct.Username, acct.Role, filename)
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return c.String(http.StatusNotFound, "Not found")
	case errors.Is(err, ErrForbidden):
		return c.String(http.StatusForbidden, "Forbidden")
	case err != nil:
		return err
	}
	defer rc.Close()

	return c.Stream(http.StatusOK, mime, rc)
}

func (a *App) handleDeleteMedia(c echo.Context) error {
	acct, _ := a.currentAccount(c)
	filename := c.FormValue("filename")
	if err := a.Media.Delete(acct.Username, filename); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/image-gallery")
}

func (a *App) handleGallery(c echo.Context) error {
	acct, _ := a.currentAccount(c)
	page, err := a.Pages.GetOrCreate(acct.Username)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Gallery(page, CsrfToken(c)))
}

func (a *App) handleSetBackground(c echo.Context) error {
	acct, _ := a.currentAccount(c)
	filename := c.FormValue("filename")
	err := a.Media.SetBackground(acct.Username, filename)
	switch {
	case errors.Is(err, ErrNotOwned):
		return c.String(http.StatusForbidden, "Forbidden")
	case err != nil:
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/personal-page")
}

func (a *App) handleToggleVisibility(c echo.Context) error {
	acct, _ := a.currentAccount(c)
	filename := c.FormValue("filename")
	if _, err := a.Media.ToggleVisibility(acct.Username, filename); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/image-gallery")
}
