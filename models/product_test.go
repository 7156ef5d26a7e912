package models

import "testing"

func TestProductAttributesValidate(t *testing.T) {
	phone := &PhoneAttributes{Brand: "Apple"}
	watch := &WatchAttributes{Brand: "Garmin", WatchType: "Smart"}

	tests := []struct {
		name    string
		attrs   ProductAttributes
		ptype   ProductType
		wantErr bool
	}{
		{"phone branch matches phone type", ProductAttributes{Phone: phone}, ProductTypePhone, false},
		{"watch branch matches watch type", ProductAttributes{Watch: watch}, ProductTypeWatch, false},
		{"no branch set", ProductAttributes{}, ProductTypePhone, true},
		{"two branches set", ProductAttributes{Phone: phone, Watch: watch}, ProductTypePhone, true},
		{"branch does not match type", ProductAttributes{Watch: watch}, ProductTypePhone, true},
		{"unknown type", ProductAttributes{Phone: phone}, ProductType("Laptop"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.attrs.Validate(tt.ptype)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProductTypeValid(t *testing.T) {
	for _, pt := range ProductTypes {
		if !pt.Valid() {
			t.Errorf("Expected %q to be valid", pt)
		}
	}
	if ProductType("Fridge").Valid() {
		t.Error("Expected Fridge to be invalid")
	}
}
