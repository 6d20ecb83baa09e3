package ingest

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ryabkov82/backoffice-server/internal/record"
)

// AddressRule marks an address-like field. A value containing a map link is
// kept verbatim; an empty value is synthesized from city and state.
type AddressRule struct {
	CityField  string
	StateField string
}

// FieldSpec describes how one target field is filled from a row
type FieldSpec struct {
	Field     string
	Aliases   []string // priority order, matched against trimmed headers
	Required  bool
	Default   any
	Transform func(string) any
	Address   *AddressRule
}

// Label is the human readable header name used in diagnostics
func (f FieldSpec) Label() string {
	var labels []string
	for _, a := range f.Aliases {
		if a != f.Field {
			labels = append(labels, a)
		}
	}
	if len(labels) == 0 {
		return f.Field
	}
	return strings.Join(labels, "/")
}

// Target is an import destination: field mapping plus record construction
type Target[T any] struct {
	Name     string // singular, used in messages ("customer")
	Plural   string // response key ("customers")
	Fields   []FieldSpec
	Build    func(record.Fields) T
	DedupKey []string // fields compared under DuplicatesSkip
}

// RequiredHeaders lists the source headers of every required field
func (t Target[T]) RequiredHeaders() []string {
	var out []string
	for _, f := range t.Fields {
		if f.Required {
			out = append(out, f.Label())
		}
	}
	return out
}

// CustomerTarget maps customer spreadsheets
func CustomerTarget() Target[record.Customer] {
	return Target[record.Customer]{
		Name:   "customer",
		Plural: "customers",
		Fields: []FieldSpec{
			{Field: "name", Aliases: []string{"CUSTOMER NAME", "name"}, Required: true},
			{Field: "email", Aliases: []string{"EMAIL", "email"}, Required: true},
			{Field: "phone", Aliases: []string{"MOBILE", "PHONE", "phone"}, Required: true},
			{Field: "city", Aliases: []string{"CITY", "COUNTRY/STATE", "city"}, Default: "Bangalore"},
			{Field: "state", Aliases: []string{"COUNTRY/STATE", "state"}, Default: "Karnataka"},
			{
				Field:   "address",
				Aliases: []string{"ADDRESS/LOCATION LINK", "address"},
				Address: &AddressRule{CityField: "city", StateField: "state"},
			},
		},
		Build:    record.CustomerFromFields,
		DedupKey: []string{"email", "phone"},
	}
}

// SupplierTarget maps supplier spreadsheets
func SupplierTarget() Target[record.Supplier] {
	return Target[record.Supplier]{
		Name:   "supplier",
		Plural: "suppliers",
		Fields: []FieldSpec{
			{Field: "company", Aliases: []string{"SUPPLIER NAME", "company"}, Required: true},
			{Field: "mobile", Aliases: []string{"MOBILE", "mobile"}, Required: true},
			{Field: "email", Aliases: []string{"EMAIL", "email"}, Required: true},
			{Field: "phone", Aliases: []string{"PHONE", "phone"}, Required: true},
			{Field: "gstNumber", Aliases: []string{"GST NUMBER", "gstNumber"}, Required: true},
			{Field: "taxNumber", Aliases: []string{"TAX NUMBER", "taxNumber"}, Required: true},
			{Field: "state", Aliases: []string{"COUNTRY/STATE", "state"}, Required: true},
			{Field: "postcode", Aliases: []string{"POSTCODE", "postcode"}, Required: true},
			{Field: "address", Aliases: []string{"ADDRESS", "address"}, Required: true},
			{
				Field:     "openingBalance",
				Aliases:   []string{"OPENING BALANCE", "openingBalance"},
				Default:   0.0,
				Transform: parseAmount,
			},
		},
		Build:    record.SupplierFromFields,
		DedupKey: []string{"company", "email"},
	}
}

// parseAmount reads a monetary value, ignoring thousands separators.
// Unparseable input yields 0 and never rejects the row.
func parseAmount(s string) any {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0.0
	}
	f, _ := d.Float64()
	return f
}
