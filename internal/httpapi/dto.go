package httpapi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ryabkov82/backoffice-server/internal/ingest"
	"github.com/ryabkov82/backoffice-server/internal/record"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationMessage turns validator output into a single readable sentence
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", ")))
		case "min":
			msgs = append(msgs, fe.Field()+" must not be empty")
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}

type customerInput struct {
	Name    string        `json:"name" validate:"required"`
	Email   string        `json:"email" validate:"required"`
	Phone   string        `json:"phone" validate:"required"`
	Address string        `json:"address"`
	City    string        `json:"city"`
	State   string        `json:"state"`
	Status  record.Status `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (in *customerInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
}

func (in customerInput) record() record.Customer {
	status := in.Status
	if status == "" {
		status = record.StatusActive
	}
	return record.Customer{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Address: in.Address,
		City:    in.City,
		State:   in.State,
		Status:  status,
	}
}

// customerPatch lists every field a PATCH may change
type customerPatch struct {
	Name    *string        `json:"name" validate:"omitnil,min=1"`
	Email   *string        `json:"email" validate:"omitnil,min=1"`
	Phone   *string        `json:"phone" validate:"omitnil,min=1"`
	Address *string        `json:"address"`
	City    *string        `json:"city"`
	State   *string        `json:"state"`
	Status  *record.Status `json:"status" validate:"omitnil,oneof=active inactive"`
}

func (p customerPatch) fields() map[string]any {
	f := map[string]any{}
	setString(f, "name", p.Name)
	setString(f, "email", p.Email)
	setString(f, "phone", p.Phone)
	setString(f, "address", p.Address)
	setString(f, "city", p.City)
	setString(f, "state", p.State)
	if p.Status != nil {
		f["status"] = string(*p.Status)
	}
	return f
}

type supplierPatch struct {
	Company        *string        `json:"company" validate:"omitnil,min=1"`
	Mobile         *string        `json:"mobile" validate:"omitnil,min=1"`
	Email          *string        `json:"email" validate:"omitnil,min=1"`
	Phone          *string        `json:"phone" validate:"omitnil,min=1"`
	GSTNumber      *string        `json:"gstNumber" validate:"omitnil,min=1"`
	TaxNumber      *string        `json:"taxNumber" validate:"omitnil,min=1"`
	State          *string        `json:"state" validate:"omitnil,min=1"`
	Postcode       *string        `json:"postcode" validate:"omitnil,min=1"`
	Address        *string        `json:"address" validate:"omitnil,min=1"`
	OpeningBalance *float64       `json:"openingBalance"`
	Status         *record.Status `json:"status" validate:"omitnil,oneof=active inactive"`
}

func (p supplierPatch) fields() map[string]any {
	f := map[string]any{}
	setString(f, "company", p.Company)
	setString(f, "mobile", p.Mobile)
	setString(f, "email", p.Email)
	setString(f, "phone", p.Phone)
	setString(f, "gstNumber", p.GSTNumber)
	setString(f, "taxNumber", p.TaxNumber)
	setString(f, "state", p.State)
	setString(f, "postcode", p.Postcode)
	setString(f, "address", p.Address)
	if p.OpeningBalance != nil {
		f["openingBalance"] = *p.OpeningBalance
	}
	if p.Status != nil {
		f["status"] = string(*p.Status)
	}
	return f
}

func setString(f map[string]any, key string, v *string) {
	if v != nil {
		f[key] = strings.TrimSpace(*v)
	}
}

// supplierFromBody maps a JSON body through the supplier import aliases
func supplierFromBody(body map[string]any) (record.Supplier, error) {
	fields, reasons := ingest.MapRow(ingest.SupplierTarget().Fields, ingest.RawRowFromJSON(body))
	if len(reasons) > 0 {
		return record.Supplier{}, errors.New(strings.Join(reasons, ", "))
	}
	return record.SupplierFromFields(fields), nil
}
