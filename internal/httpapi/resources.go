package httpapi

import (
	"errors"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ryabkov82/backoffice-server/internal/record"
)

// Handler holds the customer and supplier resources
type Handler struct {
	customers *resource[record.Customer]
	suppliers *resource[record.Supplier]
}

// Deps wires the handler to storage and the import pipeline
type Deps struct {
	Customers        Store[record.Customer]
	Suppliers        Store[record.Supplier]
	CustomerImporter Importer[record.Customer]
	SupplierImporter Importer[record.Supplier]
	UploadDir        string
	Logger           *zap.Logger
}

// NewHandler creates a new handler
func NewHandler(d Deps) (*Handler, error) {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	uploadDir, err := filepath.Abs(d.UploadDir)
	if err != nil {
		return nil, err
	}

	return &Handler{
		customers: &resource[record.Customer]{
			title:        "Customer",
			plural:       "customers",
			store:        d.Customers,
			importer:     d.CustomerImporter,
			uploadDir:    uploadDir,
			logger:       d.Logger,
			decodeCreate: decodeCustomer,
			decodePatch:  decodeCustomerPatch,
		},
		suppliers: &resource[record.Supplier]{
			title:        "Supplier",
			plural:       "suppliers",
			store:        d.Suppliers,
			importer:     d.SupplierImporter,
			uploadDir:    uploadDir,
			logger:       d.Logger,
			decodeCreate: decodeSupplier,
			decodePatch:  decodeSupplierPatch,
		},
	}, nil
}

var errInvalidBody = errors.New("invalid request body")

func bindBody(c echo.Context, v any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		return errInvalidBody
	}
	return nil
}

func decodeCustomer(c echo.Context) (record.Customer, error) {
	var in customerInput
	if err := bindBody(c, &in); err != nil {
		return record.Customer{}, err
	}
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return record.Customer{}, errors.New(validationMessage(err))
	}
	return in.record(), nil
}

func decodeCustomerPatch(c echo.Context) (map[string]any, error) {
	var p customerPatch
	if err := bindBody(c, &p); err != nil {
		return nil, err
	}
	if err := validate.Struct(p); err != nil {
		return nil, errors.New(validationMessage(err))
	}
	return p.fields(), nil
}

func decodeSupplier(c echo.Context) (record.Supplier, error) {
	body := map[string]any{}
	if err := bindBody(c, &body); err != nil {
		return record.Supplier{}, err
	}
	return supplierFromBody(body)
}

func decodeSupplierPatch(c echo.Context) (map[string]any, error) {
	var p supplierPatch
	if err := bindBody(c, &p); err != nil {
		return nil, err
	}
	if err := validate.Struct(p); err != nil {
		return nil, errors.New(validationMessage(err))
	}
	return p.fields(), nil
}
