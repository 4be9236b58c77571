package handler

import (
	"errors"
	"fmt"
	"net/http"

	"rental-service/internal/paystatus"
	"rental-service/internal/store"
	"rental-service/internal/upload"
	"rental-service/internal/view"
	"rental-service/pkg/logger"
	"rental-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AdminDashboard shows tenant, payment and complaint counters
func (h *Handler) AdminDashboard(c echo.Context) error {
	counts, err := h.db(c).AdminCounts()
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "admin_dashboard", echo.Map{"Counts": counts})
}

// AddTenantPage shows the onboarding form
func (h *Handler) AddTenantPage(c echo.Context) error {
	return c.Render(http.StatusOK, "add_tenant", echo.Map{"Form": &TenantForm{}})
}

// AddTenant onboards a tenant with optional profile photo and ID proof
func (h *Handler) AddTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("create")

	form := new(TenantForm)
	if err := c.Bind(form); err != nil {
		return formError(c, http.StatusBadRequest, "add_tenant", "Invalid form submission", echo.Map{"Form": &TenantForm{}})
	}
	data := echo.Map{"Form": form}

	if err := c.Validate(form); err != nil {
		return formError(c, http.StatusUnprocessableEntity, "add_tenant",
			formMessage(form, err, "Please fill all required fields"), data)
	}
	in, err := form.Input()
	if err != nil {
		return formError(c, http.StatusUnprocessableEntity, "add_tenant", err.Error(), data)
	}

	profile := formFile(c, "profile_photo")
	if profile != nil && !upload.Allowed(profile.Filename) {
		return formError(c, http.StatusUnprocessableEntity, "add_tenant",
			"Profile photo must be a JPG, JPEG, or PNG file", data)
	}
	idProof := formFile(c, "id_proof_photo")
	if idProof != nil && !upload.Allowed(idProof.Filename) {
		return formError(c, http.StatusUnprocessableEntity, "add_tenant",
			"ID proof must be a JPG, JPEG, or PNG file", data)
	}

	profilePath, err := h.saveUpload(c, upload.ProfilePhoto, profile)
	if err != nil {
		return formError(c, http.StatusInternalServerError, "add_tenant", "Error saving profile photo", data)
	}
	if profilePath != "" {
		in.ProfilePhoto = &profilePath
	}
	idProofPath, err := h.saveUpload(c, upload.IDProof, idProof)
	if err != nil {
		h.removeUploads(c, in.ProfilePhoto)
		return formError(c, http.StatusInternalServerError, "add_tenant", "Error saving ID proof photo", data)
	}
	if idProofPath != "" {
		in.IDProofPhoto = &idProofPath
	}

	tenant, err := h.db(c).CreateTenant(in)
	if err != nil {
		h.removeUploads(c, in.ProfilePhoto, in.IDProofPhoto)

		var verr *store.ValidationError
		switch {
		case errors.Is(err, store.ErrEmailTaken):
			return formError(c, http.StatusConflict, "add_tenant", "Email already registered", data)
		case errors.As(err, &verr):
			return formError(c, http.StatusUnprocessableEntity, "add_tenant", validationMessage(verr), data)
		default:
			log.Error("Failed to create tenant", zap.Error(err))
			prometheus.RecordError("tenant_creation_failed")
			return formError(c, http.StatusInternalServerError, "add_tenant", "Error adding tenant", data)
		}
	}

	log.Info("Tenant created", zap.Uint("tenant_id", tenant.ID), zap.String("room", tenant.RoomNumber))
	view.Success(c, fmt.Sprintf("Tenant %s added successfully!", tenant.Name))
	return seeOther(c, "/admin/tenants")
}

// ListTenants shows every tenant, newest first
func (h *Handler) ListTenants(c echo.Context) error {
	tenants, err := h.db(c).ListTenants()
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "tenants", echo.Map{"Tenants": tenants})
}

// TenantDetail shows one tenant with their payment history
func (h *Handler) TenantDetail(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	db := h.db(c)
	tenant, err := db.GetTenant(id)
	if errors.Is(err, store.ErrNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	payments, err := db.TenantPayments(id, 0)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "tenant_detail", echo.Map{"Tenant": tenant, "Payments": payments})
}

// DeleteTenant removes a tenant, their payments, complaints and attachments
func (h *Handler) DeleteTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("delete")

	id, err := idParam(c)
	if err != nil {
		return err
	}

	tenant, err := h.db(c).DeleteTenant(id)
	if errors.Is(err, store.ErrNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}

	h.removeUploads(c, tenant.ProfilePhoto, tenant.IDProofPhoto)
	for i := range tenant.Payments {
		h.removeUploads(c, tenant.Payments[i].PaymentProof)
	}

	log.Info("Tenant deleted", zap.Uint("tenant_id", id), zap.Int("payments", len(tenant.Payments)))
	view.Success(c, fmt.Sprintf("Tenant %s deleted", tenant.Name))
	return seeOther(c, "/admin/tenants")
}

// ListPayments shows payments, optionally only pending or approved ones
func (h *Handler) ListPayments(c echo.Context) error {
	filter := store.ParsePaymentFilter(c.QueryParam("status"))
	payments, err := h.db(c).ListPayments(filter)
	if err != nil {
		return err
	}

	status := string(filter)
	if status == "" {
		status = "all"
	}
	return c.Render(http.StatusOK, "admin_payments", echo.Map{"Payments": payments, "Filter": status})
}

// ApprovePayment marks a payment approved
func (h *Handler) ApprovePayment(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := idParam(c)
	if err != nil {
		return err
	}

	payment, err := h.db(c).ApprovePayment(id)
	if errors.Is(err, store.ErrNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}

	prometheus.RecordPaymentOperation("approve")
	log.Info("Payment approved", zap.Uint("payment_id", payment.ID), zap.Uint("tenant_id", payment.TenantID))
	view.Success(c, "Payment approved successfully!")
	return seeOther(c, "/admin/payments?status=pending")
}

// MonthlyPaymentStatus shows who has and has not paid for a selected month
func (h *Handler) MonthlyPaymentStatus(c echo.Context) error {
	now := h.now()
	period := paystatus.ParseSelection(c.FormValue("month"), c.FormValue("year"), now)

	report, err := paystatus.NewAggregator(h.db(c)).Report(period)
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, "admin_monthly_status", echo.Map{
		"Months":   paystatus.MonthOptions(),
		"Years":    paystatus.YearOptions(now),
		"Selected": period,
		"Report":   report,
	})
}

// ListComplaints shows complaints, optionally only pending or resolved ones
func (h *Handler) ListComplaints(c echo.Context) error {
	filter := store.ParseComplaintFilter(c.QueryParam("status"))
	complaints, err := h.db(c).ListComplaints(filter)
	if err != nil {
		return err
	}

	status := string(filter)
	if status == "" {
		status = "all"
	}
	return c.Render(http.StatusOK, "admin_complaints", echo.Map{"Complaints": complaints, "Filter": status})
}

// ResolveComplaint closes a pending complaint
func (h *Handler) ResolveComplaint(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := idParam(c)
	if err != nil {
		return err
	}

	complaint, err := h.db(c).ResolveComplaint(id, h.now())
	switch {
	case errors.Is(err, store.ErrNotFound):
		return echo.ErrNotFound
	case errors.Is(err, store.ErrAlreadyResolved):
		view.Error(c, "Complaint is already resolved")
	case err != nil:
		return err
	default:
		prometheus.RecordComplaintOperation("resolve")
		log.Info("Complaint resolved", zap.Uint("complaint_id", complaint.ID))
		view.Success(c, "Complaint resolved successfully!")
	}
	return seeOther(c, "/admin/complaints?status=pending")
}
