package ingest

import (
	"reflect"
	"testing"

	"github.com/ryabkov82/backoffice-server/internal/record"
)

func TestResolve(t *testing.T) {
	spec := FieldSpec{Field: "phone", Aliases: []string{"MOBILE", "PHONE", "phone"}}

	tests := []struct {
		name   string
		row    RawRow
		want   string
		wantOK bool
	}{
		{name: "first alias wins", row: RawRow{"MOBILE": "111", "PHONE": "222"}, want: "111", wantOK: true},
		{name: "empty first alias falls through", row: RawRow{"MOBILE": "   ", "PHONE": "222"}, want: "222", wantOK: true},
		{name: "camelCase fallback", row: RawRow{"phone": "333"}, want: "333", wantOK: true},
		{name: "value is trimmed", row: RawRow{"PHONE": "  444 "}, want: "444", wantOK: true},
		{name: "case sensitive", row: RawRow{"Mobile": "555"}, wantOK: false},
		{name: "nothing present", row: RawRow{"EMAIL": "a@b.c"}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.row, spec)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Resolve() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestMapRowCustomer(t *testing.T) {
	fields := CustomerTarget().Fields

	tests := []struct {
		name        string
		row         RawRow
		wantReasons []string
		want        record.Fields
	}{
		{
			name: "defaults and synthesized address",
			row:  RawRow{"CUSTOMER NAME": "Asha", "EMAIL": "a@x.io", "MOBILE": "99"},
			want: record.Fields{
				"name": "Asha", "email": "a@x.io", "phone": "99",
				"city": "Bangalore", "state": "Karnataka", "address": "Bangalore, Karnataka",
				"status": record.StatusActive,
			},
		},
		{
			name: "map link kept verbatim",
			row: RawRow{
				"CUSTOMER NAME": "Asha", "EMAIL": "a@x.io", "PHONE": "99",
				"ADDRESS/LOCATION LINK": "https://www.google.com/maps/place/X",
			},
			want: record.Fields{
				"name": "Asha", "email": "a@x.io", "phone": "99",
				"city": "Bangalore", "state": "Karnataka", "address": "https://www.google.com/maps/place/X",
				"status": record.StatusActive,
			},
		},
		{
			name: "plain address kept",
			row: RawRow{
				"CUSTOMER NAME": "Asha", "EMAIL": "a@x.io", "PHONE": "99",
				"CITY": "Pune", "COUNTRY/STATE": "MH", "ADDRESS/LOCATION LINK": "12 Main St",
			},
			want: record.Fields{
				"name": "Asha", "email": "a@x.io", "phone": "99",
				"city": "Pune", "state": "MH", "address": "12 Main St",
				"status": record.StatusActive,
			},
		},
		{
			name: "state column doubles as city",
			row:  RawRow{"CUSTOMER NAME": "Asha", "EMAIL": "a@x.io", "PHONE": "99", "COUNTRY/STATE": "Goa"},
			want: record.Fields{
				"name": "Asha", "email": "a@x.io", "phone": "99",
				"city": "Goa", "state": "Goa", "address": "Goa, Goa",
				"status": record.StatusActive,
			},
		},
		{
			name:        "missing required",
			row:         RawRow{"CUSTOMER NAME": "Bob"},
			wantReasons: []string{"missing field: email", "missing field: phone"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reasons := MapRow(fields, tt.row)
			if !reflect.DeepEqual(reasons, tt.wantReasons) {
				t.Fatalf("MapRow() reasons = %v, want %v", reasons, tt.wantReasons)
			}
			if tt.want != nil && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MapRow() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMapRowForcesActiveStatus(t *testing.T) {
	row := RawRow{"CUSTOMER NAME": "A", "EMAIL": "e", "PHONE": "p", "status": "inactive"}
	got, reasons := MapRow(CustomerTarget().Fields, row)
	if len(reasons) != 0 {
		t.Fatalf("unexpected reasons: %v", reasons)
	}
	if got["status"] != record.StatusActive {
		t.Errorf("status = %v, want active", got["status"])
	}
}

func TestMapRowSupplierOpeningBalance(t *testing.T) {
	base := RawRow{
		"SUPPLIER NAME": "Acme", "MOBILE": "1", "EMAIL": "e@acme.io", "PHONE": "2",
		"GST NUMBER": "G", "TAX NUMBER": "T", "COUNTRY/STATE": "KA", "POSTCODE": "560001", "ADDRESS": "Road 1",
	}

	tests := []struct {
		name  string
		value *string
		want  float64
	}{
		{name: "absent defaults to zero"},
		{name: "plain number", value: strPtr("250.50"), want: 250.5},
		{name: "thousands separators", value: strPtr("1,250.75"), want: 1250.75},
		{name: "garbage becomes zero", value: strPtr("n/a"), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := RawRow{}
			for k, v := range base {
				row[k] = v
			}
			if tt.value != nil {
				row["OPENING BALANCE"] = *tt.value
			}
			got, reasons := MapRow(SupplierTarget().Fields, row)
			if len(reasons) != 0 {
				t.Fatalf("unexpected reasons: %v", reasons)
			}
			if got["openingBalance"] != tt.want {
				t.Errorf("openingBalance = %v (%T), want %v", got["openingBalance"], got["openingBalance"], tt.want)
			}
		})
	}
}

func TestRequiredHeaders(t *testing.T) {
	got := CustomerTarget().RequiredHeaders()
	want := []string{"CUSTOMER NAME", "EMAIL", "MOBILE/PHONE"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RequiredHeaders() = %v, want %v", got, want)
	}

	if n := len(SupplierTarget().RequiredHeaders()); n != 9 {
		t.Errorf("supplier required headers = %d, want 9", n)
	}
}

func TestIsMapLink(t *testing.T) {
	tests := map[string]bool{
		"https://www.google.com/maps/place/Foo": true,
		"https://maps.app.goo.gl/abc":           true,
		"https://goo.gl/maps/xyz":               true,
		"https://maps.google.com/?q=1,2":        true,
		"221B Baker Street":                     false,
		"":                                      false,
	}
	for in, want := range tests {
		if got := IsMapLink(in); got != want {
			t.Errorf("IsMapLink(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRawRowFromJSON(t *testing.T) {
	got := RawRowFromJSON(map[string]any{
		"company":        "Acme",
		"openingBalance": 1500.0,
		"gstNumber":      float64(29),
		"active":         true,
		"note":           nil,
	})
	want := RawRow{
		"company":        "Acme",
		"openingBalance": "1500",
		"gstNumber":      "29",
		"active":         "true",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RawRowFromJSON() = %v, want %v", got, want)
	}
}

func strPtr(s string) *string { return &s }

func TestMapRowAddressRequiredAndDefault(t *testing.T) {
	rule := &AddressRule{CityField: "city", StateField: "state"}
	fields := []FieldSpec{
		{Field: "city", Aliases: []string{"CITY"}},
		{Field: "state", Aliases: []string{"STATE"}},
		{Field: "site", Aliases: []string{"SITE"}, Required: true, Address: rule},
		{Field: "office", Aliases: []string{"OFFICE"}, Default: "head office", Address: rule},
	}

	tests := []struct {
		name        string
		row         RawRow
		wantReasons []string
		want        record.Fields
	}{
		{
			name:        "required address with nothing to build from",
			row:         RawRow{"CITY": "Pune"},
			wantReasons: []string{"missing field: site"},
		},
		{
			name: "required address synthesized",
			row:  RawRow{"CITY": "Pune", "STATE": "MH"},
			want: record.Fields{
				"city": "Pune", "state": "MH", "site": "Pune, MH", "office": "Pune, MH",
				"status": record.StatusActive,
			},
		},
		{
			name: "default used when no address can be built",
			row:  RawRow{"SITE": "https://maps.app.goo.gl/abc"},
			want: record.Fields{
				"site": "https://maps.app.goo.gl/abc", "office": "head office",
				"status": record.StatusActive,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reasons := MapRow(fields, tt.row)
			if !reflect.DeepEqual(reasons, tt.wantReasons) {
				t.Fatalf("MapRow() reasons = %v, want %v", reasons, tt.wantReasons)
			}
			if tt.want != nil && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MapRow() = %v, want %v", got, tt.want)
			}
		})
	}
}
