package handler

import (
	"errors"
	"net/http"

	"rental-service/internal/middleware"
	"rental-service/internal/store"
	"rental-service/internal/view"
	"rental-service/pkg/logger"
	"rental-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// formError shows message above a re-rendered form page
func formError(c echo.Context, code int, page, message string, data echo.Map) error {
	view.Error(c, message)
	return c.Render(code, page, data)
}

// AdminLoginPage shows the administrator login form
func (h *Handler) AdminLoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "admin_login", echo.Map{"Form": &AdminLoginForm{}})
}

// AdminLogin checks administrator credentials and starts a session
func (h *Handler) AdminLogin(c echo.Context) error {
	log := logger.FromContext(c)

	form := new(AdminLoginForm)
	if err := c.Bind(form); err != nil {
		return formError(c, http.StatusBadRequest, "admin_login", "Invalid form submission", echo.Map{"Form": &AdminLoginForm{}})
	}
	if err := c.Validate(form); err != nil {
		return formError(c, http.StatusUnprocessableEntity, "admin_login",
			formMessage(form, err, "Please fill all fields"), echo.Map{"Form": form})
	}

	admin, err := h.db(c).AuthenticateAdmin(form.Username, form.Password)
	if errors.Is(err, store.ErrInvalidCredentials) {
		prometheus.RecordLogin(string(middleware.KindAdmin), false)
		log.Warn("Admin login failed", zap.String("username", form.Username))
		return formError(c, http.StatusUnauthorized, "admin_login",
			"Invalid username or password", echo.Map{"Form": form})
	}
	if err != nil {
		return err
	}

	principal := middleware.Principal{Kind: middleware.KindAdmin, ID: admin.ID, Name: admin.Username}
	if err := h.sessions.Issue(c, principal); err != nil {
		return err
	}

	prometheus.RecordLogin(string(middleware.KindAdmin), true)
	log.Info("Admin logged in", zap.Uint("admin_id", admin.ID))
	view.Success(c, "Login successful!")
	return seeOther(c, "/admin/dashboard")
}

// AdminLogout ends the administrator session
func (h *Handler) AdminLogout(c echo.Context) error {
	h.sessions.Clear(c, middleware.KindAdmin)
	view.Success(c, "Logged out successfully")
	return seeOther(c, middleware.KindAdmin.LoginPath())
}

// TenantLoginPage shows the tenant login form
func (h *Handler) TenantLoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "tenant_login", echo.Map{"Form": &TenantLoginForm{}})
}

// TenantLogin checks tenant credentials and starts a session
func (h *Handler) TenantLogin(c echo.Context) error {
	log := logger.FromContext(c)

	form := new(TenantLoginForm)
	if err := c.Bind(form); err != nil {
		return formError(c, http.StatusBadRequest, "tenant_login", "Invalid form submission", echo.Map{"Form": &TenantLoginForm{}})
	}
	if err := c.Validate(form); err != nil {
		return formError(c, http.StatusUnprocessableEntity, "tenant_login",
			formMessage(form, err, "Please fill all fields"), echo.Map{"Form": form})
	}

	tenant, err := h.db(c).AuthenticateTenant(form.Email, form.Password)
	if errors.Is(err, store.ErrInvalidCredentials) {
		prometheus.RecordLogin(string(middleware.KindTenant), false)
		log.Warn("Tenant login failed")
		return formError(c, http.StatusUnauthorized, "tenant_login",
			"Invalid email or password", echo.Map{"Form": form})
	}
	if err != nil {
		return err
	}

	principal := middleware.Principal{Kind: middleware.KindTenant, ID: tenant.ID, Name: tenant.Name}
	if err := h.sessions.Issue(c, principal); err != nil {
		return err
	}

	prometheus.RecordLogin(string(middleware.KindTenant), true)
	log.Info("Tenant logged in", zap.Uint("tenant_id", tenant.ID))
	view.Success(c, "Login successful!")
	return seeOther(c, "/tenant/dashboard")
}

// TenantLogout ends the tenant session
func (h *Handler) TenantLogout(c echo.Context) error {
	h.sessions.Clear(c, middleware.KindTenant)
	view.Success(c, "Logged out successfully")
	return seeOther(c, middleware.KindTenant.LoginPath())
}
