package homespace

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/homespace/activity"
)

func (a *App) handleAdmin(c echo.Context) error {
	acct, _ := a.currentAccount(c)
	return Render(c, a.Views.AdminPanel(a.Moderation.View(), acct.Username, CsrfToken(c)))
}

func (a *App) handleAdminApprove(c echo.Context) error {
	username := c.FormValue("username")
	if err := a.Moderation.Approve(username); err != nil {
		c.Logger().Warnf("approve %q: %v", username, err)
	}
	return c.Redirect(http.StatusSeeOther, "/admin")
}

func (a *App) handleAdminReject(c echo.Context) error {
	username := c.FormValue("username")
	if err := a.Moderation.Reject(username); err != nil {
		c.Logger().Warnf("reject %q: %v", username, err)
	}
	return c.Redirect(http.StatusSeeOther, "/admin")
}

func (a *App) handleAdminRole(c echo.Context) error {
	acct, _ := a.currentAccount(c)
	username := c.FormValue("username")
	role := Role(c.FormValue("role"))
	if role != RoleAdmin && role != RoleUser {
		return c.Redirect(http.StatusSeeOther, "/admin")
	}
	if err := a.Moderation.SetRole(acct.Username, username, role); err != nil {
		c.Logger().Warnf("set role %q -> %s: %v", username, role, err)
	}
	return c.Redirect(http.StatusSeeOther, "/admin")
}

func (a *App) handleAdminTogglePanel(c echo.Context) error {
	if _, err := a.Moderation.TogglePanel(); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin")
}

// handleAdminActivity returns aggregated page-visit totals as JSON.
func (a *App) handleAdminActivity(c echo.Context) error {
	if a.activityStore == nil {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	stats, err := a.activityStore.GetStats(30, 10)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// recordVisit logs a personal-page view. Visit logging never blocks or
// fails the request that triggered it.
func (a *App) recordVisit(c echo.Context, page string) {
	if a.activityStore == nil {
		return
	}
	v := &activity.Visit{
		Page:      page,
		Viewer:    currentUsername(c),
		IPHash:    activity.HashIP(c.RealIP()),
		Timestamp: time.Now(),
	}
	go func() {
		if err := a.activityStore.SaveVisit(v); err != nil {
			a.Echo.Logger.Warnf("record visit: %v", err)
		}
	}()
}
