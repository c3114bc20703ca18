package homespace

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (a *App) handleIndex(c echo.Context) error {
	if _, ok := a.currentAccount(c); ok {
		return c.Redirect(http.StatusSeeOther, "/home")
	}
	return c.Redirect(http.StatusSeeOther, "/public")
}

func (a *App) handlePublicHome(c echo.Context) error {
	return Render(c, a.Views.PublicHome())
}

func (a *App) handleLoginForm(c echo.Context) error {
	if _, ok := a.currentAccount(c); ok {
		return c.Redirect(http.StatusSeeOther, "/home")
	}
	return Render(c, a.Views.Login("", CsrfToken(c)))
}

func (a *App) handleLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return RenderStatus(c, http.StatusTooManyRequests,
			a.Views.Login("Too many attempts. Try again later.", CsrfToken(c)))
	}

	username := c.FormValue("username")
	password := c.FormValue("password")

	if !a.Users.VerifyCredentials(username, password) {
		a.loginLimiter.Record(ip)
		return RenderStatus(c, http.StatusUnauthorized,
			a.Views.Login("Invalid username or password.", CsrfToken(c)))
	}

	if err := setUserSession(c, username); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/home")
}

func (a *App) handleLogout(c echo.Context) error {
	if err := clearUserSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/public")
}

func (a *App) handleRegisterForm(c echo.Context) error {
	if _, ok := a.currentAccount(c); ok {
		return c.Redirect(http.StatusSeeOther, "/home")
	}
	return Render(c, a.Views.Register("", CsrfToken(c)))
}

func (a *App) handleRegister(c echo.Context) error {
	err := a.Users.Register(
		c.FormValue("username"),
		c.FormValue("password"),
		c.FormValue("confirm_password"),
	)
	if err != nil {
		return RenderStatus(c, http.StatusBadRequest,
			a.Views.Register(registerErrorMessage(err), CsrfToken(c)))
	}
	return c.Redirect(http.StatusSeeOther, "/register-success")
}

func registerErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmptyField):
		return "All fields are required."
	case errors.Is(err, ErrUsernameTooShort):
		return "Username must be at least 3 characters."
	case errors.Is(err, ErrPasswordTooShort):
		return "Password must be at least 3 characters."
	case errors.Is(err, ErrPasswordMismatch):
		return "Passwords do not match."
	case errors.Is(err, ErrUsernameTaken):
		return "That username is already taken."
	case errors.Is(err, ErrUsernamePending):
		return "That username is already awaiting approval."
	default:
		return "Registration failed."
	}
}

func (a *App) handleRegisterSuccess(c echo.Context) error {
	return Render(c, a.Views.RegisterSuccess())
}

func (a *App) handleHome(c echo.Context) error {
	acct, _ := a.currentAccount(c)
	return Render(c, a.Views.Home(acct, CsrfToken(c)))
}

func (a *App) handleEditProfileForm(c echo.Context) error {
	acct, _ := a.currentAccount(c)
	return Render(c, a.Views.EditProfile(acct, CsrfToken(c)))
}

func (a *App) handleEditProfile(c echo.Context) error {
	acct, _ := a.currentAccount(c)
	err := a.Users.UpdateProfile(
		acct.Username,
		c.FormValue("message"),
		c.FormValue("bg_color"),
		c.FormValue("text_color"),
	)
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/home")
}

// handlePersonalPage shows the viewer their own page, unfiltered.
func (a *App) handlePersonalPage(c echo.Context) error {
	acct, _ := a.currentAccount(c)
	page, err := a.Pages.GetOrCreate(acct.Username)
	if err != nil {
		return err
	}
	a.recordVisit(c, acct.Username)
	view := PageView{
		Owner:           acct.Username,
		Viewer:          acct.Username,
		ViewerIsAdmin:   acct.IsAdmin(),
		Title:           page.Title,
		Description:     page.Description,
		BgColor:         page.BgColor,
		TextColor:       page.TextColor,
		Images:          page.Images,
		Audio:           page.Audio,
		Video:           page.Video,
		BackgroundImage: page.BackgroundImage,
	}
	return Render(c, a.Views.PersonalPage(view, CsrfToken(c)))
}

// handleViewUser shows another user's page filtered by the access policy.
// Owners and admins see everything; other viewers see public items only.
func (a *App) handleViewUser(c echo.Context) error {
	acct, _ := a.currentAccount(c)
	target := c.QueryParam("username")
	if target == "" {
		return c.Redirect(http.StatusSeeOther, "/personal-page")
	}
	if _, ok := a.Users.FindAccount(target); !ok {
		return RenderStatus(c, http.StatusNotFound, a.Views.UserNotFound(target))
	}
	page, err := a.Pages.GetOrCreate(target)
	if err != nil {
		return err
	}
	a.recordVisit(c, target)
	view := PageView{
		Owner:           target,
		Viewer:          acct.Username,
		ViewerIsAdmin:   acct.IsAdmin(),
		Title:           page.Title,
		Description:     page.Description,
		BgColor:         page.BgColor,
		TextColor:       page.TextColor,
		Images:          visibleItems(page.Images, acct.Username, acct.Role, target),
		Audio:           visibleItems(page.Audio, acct.Username, acct.Role, target),
		Video:           visibleItems(page.Video, acct.Username, acct.Role, target),
		BackgroundImage: visibleBackground(page, acct.Username, acct.Role, target),
	}
	return Render(c, a.Views.PersonalPage(view, CsrfToken(c)))
}

func (a *App) handleEditPersonalPageForm(c echo.Context) error {
	acct, _ := a.currentAccount(c)
	page, err := a.Pages.GetOrCreate(acct.Username)
	if err != nil {
		return err
	}
	return Render(c, a.Views.EditPersonalPage(page, CsrfToken(c)))
}

func (a *App) handleEditPersonalPage(c echo.Context) error {
	acct, _ := a.currentAccount(c)
	page, err := a.Pages.GetOrCreate(acct.Username)
	if err != nil {
		return err
	}
	page.Title = c.FormValue("title")
	page.Description = c.FormValue("description")
	page.BgColor = c.FormValue("bg_color")
	page.TextColor = c.FormValue("text_color")
	if err := a.Pages.Save(acct.Username, page); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/personal-page")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
