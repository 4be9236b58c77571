package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"time"

	"rental-service/internal/middleware"
	"rental-service/internal/store"
	"rental-service/internal/upload"
	"rental-service/internal/view"
	"rental-service/pkg/logger"
	"rental-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Handler serves the administrator and tenant pages
type Handler struct {
	store    *store.Store
	uploads  *upload.Storage
	sessions *middleware.Sessions
	renderer *view.Renderer
	now      func() time.Time
}

// New creates a Handler
func New(s *store.Store, uploads *upload.Storage, sessions *middleware.Sessions, renderer *view.Renderer) *Handler {
	return &Handler{
		store:    s,
		uploads:  uploads,
		sessions: sessions,
		renderer: renderer,
		now:      time.Now,
	}
}

// Register installs the renderer, validator and error page on e and mounts every route.
// uploadLimit caps the body of form posts that carry attachments, e.g. "2M".
func (h *Handler) Register(e *echo.Echo, uploadLimit string) {
	e.Renderer = h.renderer
	e.Validator = NewFormValidator()
	e.HTTPErrorHandler = h.HTTPErrorHandler
	e.Use(view.FlashMiddleware())

	bodyLimit := echomiddleware.BodyLimit(uploadLimit)

	e.GET("/", h.Index)
	e.GET("/health", h.HealthCheck)
	e.Static("/"+upload.PublicPrefix, h.uploads.Root())

	admin := e.Group("/admin")
	admin.GET("/login", h.AdminLoginPage)
	admin.POST("/login", h.AdminLogin)
	admin.GET("/logout", h.AdminLogout)

	adminPages := admin.Group("", h.sessions.RequireAdmin())
	adminPages.GET("/dashboard", h.AdminDashboard)
	adminPages.GET("/add_tenant", h.AddTenantPage)
	adminPages.POST("/add_tenant", h.AddTenant, bodyLimit)
	adminPages.GET("/tenants", h.ListTenants)
	adminPages.GET("/tenant/:id", h.TenantDetail)
	adminPages.POST("/tenant/:id/delete", h.DeleteTenant)
	adminPages.GET("/payments", h.ListPayments)
	adminPages.POST("/approve_payment/:id", h.ApprovePayment)
	adminPages.GET("/monthly-payment-status", h.MonthlyPaymentStatus)
	adminPages.POST("/monthly-payment-status", h.MonthlyPaymentStatus)
	adminPages.GET("/complaints", h.ListComplaints)
	adminPages.POST("/complaint/resolve/:id", h.ResolveComplaint)

	tenant := e.Group("/tenant")
	tenant.GET("/login", h.TenantLoginPage)
	tenant.POST("/login", h.TenantLogin)
	tenant.GET("/logout", h.TenantLogout)

	tenantPages := tenant.Group("", h.sessions.RequireTenant())
	tenantPages.GET("/dashboard", h.TenantDashboard)
	tenantPages.GET("/profile", h.TenantProfile)
	tenantPages.GET("/add_payment", h.AddPaymentPage)
	tenantPages.POST("/add_payment", h.AddPayment, bodyLimit)
	tenantPages.GET("/payments", h.TenantPayments)
	tenantPages.GET("/complaint/new", h.RaiseComplaintPage)
	tenantPages.POST("/complaint/new", h.RaiseComplaint)
	tenantPages.GET("/complaints", h.TenantComplaints)
}

// Index sends visitors to the administrator login
func (h *Handler) Index(c echo.Context) error {
	return c.Redirect(http.StatusFound, middleware.KindAdmin.LoginPath())
}

// HTTPErrorHandler renders failed requests as an error page
func (h *Handler) HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Something went wrong. Please try again."

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch code {
		case http.StatusNotFound:
			message = "Page not found"
		case http.StatusRequestEntityTooLarge:
			message = "File too large. Uploads are limited to 2 MB."
		default:
			message = http.StatusText(code)
		}
	}

	log := logger.FromContext(c)
	if code >= http.StatusInternalServerError {
		log.Error("Request failed", zap.Error(err))
		prometheus.RecordError("internal")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.Render(code, "error", echo.Map{"Code": code, "Message": message})
	}
	if err != nil {
		log.Error("Failed to render error page", zap.Error(err))
	}
}

// db returns the store bound to the request context
func (h *Handler) db(c echo.Context) *store.Store {
	return h.store.WithContext(c.Request().Context())
}

func seeOther(c echo.Context, path string) error {
	return c.Redirect(http.StatusSeeOther, path)
}

func idParam(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.ErrNotFound
	}
	return uint(id), nil
}

// formFile returns the uploaded file for name, or nil when none was sent
func formFile(c echo.Context, name string) *multipart.FileHeader {
	fh, err := c.FormFile(name)
	if err != nil || fh.Filename == "" {
		return nil
	}
	return fh
}

// saveUpload stores an optional attachment and returns its path, or "" when none was sent
func (h *Handler) saveUpload(c echo.Context, category upload.Category, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", nil
	}

	stored, err := h.uploads.SaveFile(category, fh)
	switch {
	case errors.Is(err, upload.ErrExtensionNotAllowed):
		prometheus.RecordUpload(category.Dir, "rejected")
	case err != nil:
		prometheus.RecordUpload(category.Dir, "failed")
		logger.FromContext(c).Error("Failed to store upload",
			zap.String("category", category.Dir), zap.Error(err))
	default:
		prometheus.RecordUpload(category.Dir, "stored")
	}
	return stored, err
}

// removeUploads deletes stored attachments, logging rather than failing
func (h *Handler) removeUploads(c echo.Context, paths ...*string) {
	for _, p := range paths {
		if p == nil || *p == "" {
			continue
		}
		if err := h.uploads.Remove(*p); err != nil {
			logger.FromContext(c).Warn("Failed to remove upload", zap.String("path", *p), zap.Error(err))
		}
	}
}

// validationMessage describes the first invalid field of a store validation error
func validationMessage(verr *store.ValidationError) string {
	fields := make([]string, 0, len(verr.Fields))
	for f := range verr.Fields {
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		return "Invalid input"
	}
	sort.Strings(fields)
	return fmt.Sprintf("Invalid %s: %s", fields[0], verr.Fields[fields[0]])
}
