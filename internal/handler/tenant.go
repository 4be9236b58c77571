package handler

import (
	"errors"
	"net/http"

	"rental-service/internal/middleware"
	"rental-service/internal/model"
	"rental-service/internal/store"
	"rental-service/internal/upload"
	"rental-service/internal/view"
	"rental-service/pkg/logger"
	"rental-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// currentTenant loads the tenant of the signed-in principal
func (h *Handler) currentTenant(c echo.Context) (*model.Tenant, error) {
	return h.db(c).GetTenant(middleware.PrincipalFrom(c).ID)
}

// tenantGone ends a session whose tenant no longer exists; other errors pass through
func (h *Handler) tenantGone(c echo.Context, err error) error {
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	logger.FromContext(c).Warn("Session refers to a deleted tenant",
		zap.Uint("tenant_id", middleware.PrincipalFrom(c).ID))
	h.sessions.Clear(c, middleware.KindTenant)
	view.Error(c, "Please login to access this page")
	return seeOther(c, middleware.KindTenant.LoginPath())
}

// TenantDashboard shows recent payments and open items
func (h *Handler) TenantDashboard(c echo.Context) error {
	summary, err := h.db(c).TenantSummary(middleware.PrincipalFrom(c).ID)
	if err != nil {
		return h.tenantGone(c, err)
	}
	return c.Render(http.StatusOK, "tenant_dashboard", echo.Map{"Summary": summary})
}

// TenantProfile shows the signed-in tenant's details
func (h *Handler) TenantProfile(c echo.Context) error {
	tenant, err := h.currentTenant(c)
	if err != nil {
		return h.tenantGone(c, err)
	}
	return c.Render(http.StatusOK, "tenant_profile", echo.Map{"Tenant": tenant})
}

func paymentPage(tenant *model.Tenant, form *PaymentForm) echo.Map {
	return echo.Map{"Tenant": tenant, "Form": form, "Months": model.Months}
}

// AddPaymentPage shows the payment submission form
func (h *Handler) AddPaymentPage(c echo.Context) error {
	tenant, err := h.currentTenant(c)
	if err != nil {
		return h.tenantGone(c, err)
	}
	return c.Render(http.StatusOK, "add_payment", paymentPage(tenant, &PaymentForm{}))
}

// AddPayment records a pending payment with an optional proof image
func (h *Handler) AddPayment(c echo.Context) error {
	log := logger.FromContext(c)

	tenant, err := h.currentTenant(c)
	if err != nil {
		return h.tenantGone(c, err)
	}

	form := new(PaymentForm)
	if err := c.Bind(form); err != nil {
		return formError(c, http.StatusBadRequest, "add_payment", "Invalid form submission",
			paymentPage(tenant, &PaymentForm{}))
	}
	data := paymentPage(tenant, form)

	if err := c.Validate(form); err != nil {
		return formError(c, http.StatusUnprocessableEntity, "add_payment",
			formMessage(form, err, "Please fill all required fields"), data)
	}
	in, err := form.Input()
	if err != nil {
		return formError(c, http.StatusUnprocessableEntity, "add_payment", err.Error(), data)
	}

	proof := formFile(c, "payment_proof")
	if proof != nil && !upload.Allowed(proof.Filename) {
		return formError(c, http.StatusUnprocessableEntity, "add_payment",
			"Payment proof must be a JPG, JPEG, or PNG file", data)
	}
	proofPath, err := h.saveUpload(c, upload.PaymentProof, proof)
	if err != nil {
		return formError(c, http.StatusInternalServerError, "add_payment", "Error saving payment proof image", data)
	}
	if proofPath != "" {
		in.PaymentProof = &proofPath
	}

	payment, err := h.db(c).SubmitPayment(tenant.ID, in)
	if err != nil {
		h.removeUploads(c, in.PaymentProof)

		var verr *store.ValidationError
		if errors.As(err, &verr) {
			return formError(c, http.StatusUnprocessableEntity, "add_payment", validationMessage(verr), data)
		}
		log.Error("Failed to submit payment", zap.Error(err))
		prometheus.RecordError("payment_submission_failed")
		return formError(c, http.StatusInternalServerError, "add_payment", "Error submitting payment", data)
	}

	prometheus.RecordPaymentOperation("submit")
	log.Info("Payment submitted",
		zap.Uint("payment_id", payment.ID),
		zap.Uint("tenant_id", tenant.ID),
		zap.String("month", payment.Month))
	view.Success(c, "Payment submitted successfully! Waiting for approval.")
	return seeOther(c, "/tenant/payments")
}

// TenantPayments shows the signed-in tenant's payment history
func (h *Handler) TenantPayments(c echo.Context) error {
	tenant, err := h.currentTenant(c)
	if err != nil {
		return h.tenantGone(c, err)
	}
	payments, err := h.db(c).TenantPayments(tenant.ID, 0)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "tenant_payments", echo.Map{"Payments": payments})
}

// RaiseComplaintPage shows the complaint form
func (h *Handler) RaiseComplaintPage(c echo.Context) error {
	return c.Render(http.StatusOK, "raise_complaint", echo.Map{"Form": &ComplaintForm{}})
}

// RaiseComplaint records a pending complaint
func (h *Handler) RaiseComplaint(c echo.Context) error {
	log := logger.FromContext(c)

	form := new(ComplaintForm)
	if err := c.Bind(form); err != nil {
		return formError(c, http.StatusBadRequest, "raise_complaint", "Invalid form submission",
			echo.Map{"Form": &ComplaintForm{}})
	}
	data := echo.Map{"Form": form}

	if err := c.Validate(form); err != nil {
		return formError(c, http.StatusUnprocessableEntity, "raise_complaint",
			formMessage(form, err, "Please fill all fields"), data)
	}

	complaint, err := h.db(c).RaiseComplaint(middleware.PrincipalFrom(c).ID, form.Subject, form.Description)
	if err != nil {
		var verr *store.ValidationError
		if errors.As(err, &verr) {
			return formError(c, http.StatusUnprocessableEntity, "raise_complaint",
				"Subject and description cannot be empty", data)
		}
		if errors.Is(err, store.ErrNotFound) {
			return h.tenantGone(c, err)
		}
		log.Error("Failed to raise complaint", zap.Error(err))
		prometheus.RecordError("complaint_creation_failed")
		return formError(c, http.StatusInternalServerError, "raise_complaint", "Error raising complaint", data)
	}

	prometheus.RecordComplaintOperation("raise")
	log.Info("Complaint raised", zap.Uint("complaint_id", complaint.ID), zap.Uint("tenant_id", complaint.TenantID))
	view.Success(c, "Complaint raised successfully!")
	return seeOther(c, "/tenant/complaints")
}

// TenantComplaints shows the signed-in tenant's complaints
func (h *Handler) TenantComplaints(c echo.Context) error {
	tenant, err := h.currentTenant(c)
	if err != nil {
		return h.tenantGone(c, err)
	}
	complaints, err := h.db(c).TenantComplaints(tenant.ID)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "tenant_complaints", echo.Map{"Complaints": complaints})
}
