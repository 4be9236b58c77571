package handler

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"rental-service/internal/model"
	"rental-service/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// AdminLoginForm is posted by the administrator login page
type AdminLoginForm struct {
	Username string `form:"username" validate:"required,max=50"`
	Password string `form:"password" validate:"required"`
}

// TenantLoginForm is posted by the tenant login page
type TenantLoginForm struct {
	Email    string `form:"email" validate:"required,max=100"`
	Password string `form:"password" validate:"required"`
}

// TenantForm is posted when an administrator onboards a tenant.
// The photo and ID proof files travel alongside it in the multipart body.
type TenantForm struct {
	Name            string `form:"name" validate:"required,max=100" msg:"Name is too long"`
	Email           string `form:"email" validate:"required,email,max=100" msg:"Invalid email address"`
	Phone           string `form:"phone" validate:"required,max=20" msg:"Phone number is too long"`
	RoomNumber      string `form:"room_number" validate:"required,max=10" msg:"Room number is too long"`
	MonthlyRent     string `form:"monthly_rent" validate:"required,amount" msg:"Invalid amount format"`
	DepositAmount   string `form:"deposit_amount" validate:"omitempty,nonneg_amount" msg:"Invalid amount format"`
	DepositPaidDate string `form:"deposit_paid_date" validate:"omitempty,datetime=2006-01-02" msg:"Invalid deposit paid date format"`
	Password        string `form:"password" validate:"required"`
}

// Input converts a validated form into the store input
func (f *TenantForm) Input() (store.NewTenant, error) {
	rent, err := decimal.NewFromString(strings.TrimSpace(f.MonthlyRent))
	if err != nil {
		return store.NewTenant{}, errInvalidAmount
	}

	in := store.NewTenant{
		Name:        f.Name,
		Email:       f.Email,
		Phone:       f.Phone,
		RoomNumber:  f.RoomNumber,
		MonthlyRent: rent,
		Password:    f.Password,
	}
	if s := strings.TrimSpace(f.DepositAmount); s != "" {
		deposit, err := decimal.NewFromString(s)
		if err != nil {
			return store.NewTenant{}, errInvalidAmount
		}
		in.DepositAmount = decimal.NewNullDecimal(deposit)
	}
	if s := strings.TrimSpace(f.DepositPaidDate); s != "" {
		paid, err := time.Parse(dateLayout, s)
		if err != nil {
			return store.NewTenant{}, errInvalidDepositDate
		}
		in.DepositPaidDate = &paid
	}
	return in, nil
}

// PaymentForm is posted when a tenant submits a rent payment
type PaymentForm struct {
	Month         string `form:"month" validate:"required,month" msg:"Please select a valid month"`
	Amount        string `form:"amount" validate:"required,amount" msg:"Invalid amount format"`
	TransactionID string `form:"transaction_id" validate:"required,max=100" msg:"Transaction ID is too long"`
	PaymentDate   string `form:"payment_date" validate:"required,datetime=2006-01-02" msg:"Invalid date format"`
}

// Input converts a validated form into the store input
func (f *PaymentForm) Input() (store.NewPayment, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(f.Amount))
	if err != nil {
		return store.NewPayment{}, errInvalidAmount
	}
	paid, err := time.Parse(dateLayout, strings.TrimSpace(f.PaymentDate))
	if err != nil {
		return store.NewPayment{}, errInvalidDate
	}
	return store.NewPayment{
		Month:         f.Month,
		Amount:        amount,
		PaymentDate:   paid,
		TransactionID: f.TransactionID,
	}, nil
}

// ComplaintForm is posted when a tenant raises a complaint
type ComplaintForm struct {
	Subject     string `form:"subject" validate:"required,notblank,max=200" msg:"Subject and description cannot be empty"`
	Description string `form:"description" validate:"required,notblank" msg:"Subject and description cannot be empty"`
}

// userError is an input problem whose text is shown to the user as is
type userError string

func (e userError) Error() string { return string(e) }

const (
	errInvalidAmount      userError = "Invalid amount format"
	errInvalidDate        userError = "Invalid date format"
	errInvalidDepositDate userError = "Invalid deposit paid date format"
)

// FormValidator validates bound forms through echo's Validator hook
type FormValidator struct {
	validate *validator.Validate
}

// NewFormValidator creates a validator that knows the form field rules
func NewFormValidator() *FormValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails for empty tags or nil functions.
	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
		return err == nil && d.IsPositive()
	})
	_ = v.RegisterValidation("nonneg_amount", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
		return err == nil && !d.IsNegative()
	})
	_ = v.RegisterValidation("month", func(fl validator.FieldLevel) bool {
		return model.IsMonth(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return &FormValidator{validate: v}
}

// Validate implements echo.Validator
func (fv *FormValidator) Validate(i interface{}) error {
	return fv.validate.Struct(i)
}

// formMessage turns a validation failure into the message shown above the form.
// Missing required fields produce requiredMsg; other failures use the field's msg tag.
func formMessage(form interface{}, err error, requiredMsg string) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid form submission"
	}

	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return requiredMsg
		}
	}

	t := reflect.TypeOf(form)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	for _, fe := range verrs {
		if field, ok := t.FieldByName(fe.StructField()); ok {
			if msg := field.Tag.Get("msg"); msg != "" {
				return msg
			}
		}
	}
	return "Invalid value for " + verrs[0].Field()
}
