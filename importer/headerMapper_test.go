package importer

import "testing"

func TestSuggestColumnMapping_EnglishHeaders(t *testing.T) {
	headers := []string{"No.", "Business Name", "Owner Name", "TIN", "Fine Amount", "Phone", "Township", "Case Description", "Date"}
	mapping := SuggestColumnMapping(headers)

	checks := map[string]struct {
		got  *int
		want int
	}{
		"business_name": {mapping.BusinessName, 1},
		"owner_name":    {mapping.OwnerName, 2},
		"tax_id":        {mapping.TaxId, 3},
		"fined_amount":  {mapping.FinedAmount, 4},
		"contact_phone": {mapping.ContactPhone, 5},
		"district":      {mapping.District, 6},
		"case_field":    {mapping.CaseField, 7},
		"case_date":     {mapping.CaseDate, 8},
	}
	for field, check := range checks {
		if check.got == nil {
			t.Fatalf("%s not mapped", field)
		}
		if *check.got != check.want {
			t.Fatalf("%s mapped to column %d, want %d", field, *check.got, check.want)
		}
	}
}

func TestSuggestColumnMapping_BurmeseHeaders(t *testing.T) {
	headers := []string{"လုပ်ငန်းအမည်", "ပိုင်ရှင်အမည်", "ဒဏ်ငွေ", "မြို့နယ်"}
	mapping := SuggestColumnMapping(headers)

	if mapping.BusinessName == nil || *mapping.BusinessName != 0 {
		t.Fatal("business name header not recognized")
	}
	if mapping.OwnerName == nil || *mapping.OwnerName != 1 {
		t.Fatal("owner name header not recognized")
	}
	if mapping.FinedAmount == nil || *mapping.FinedAmount != 2 {
		t.Fatal("fined amount header not recognized")
	}
	if mapping.District == nil || *mapping.District != 3 {
		t.Fatal("district header not recognized")
	}
}

func TestSuggestColumnMapping_ExactBeatsSubstring(t *testing.T) {
	// "owner name" must win the owner_name field even though "business
	// name" also contains the substring "name".
	headers := []string{"Owner Name", "Business Name"}
	mapping := SuggestColumnMapping(headers)

	if mapping.OwnerName == nil || *mapping.OwnerName != 0 {
		t.Fatalf("owner_name mapping wrong: %v", mapping.OwnerName)
	}
	if mapping.BusinessName == nil || *mapping.BusinessName != 1 {
		t.Fatalf("business_name mapping wrong: %v", mapping.BusinessName)
	}
}

func TestSuggestColumnMapping_ColumnClaimedOnce(t *testing.T) {
	headers := []string{"Name of Business"}
	mapping := SuggestColumnMapping(headers)

	if mapping.BusinessName == nil || *mapping.BusinessName != 0 {
		t.Fatal("business_name should claim column 0")
	}
	if mapping.OwnerName != nil {
		t.Fatal("owner_name must not claim an already-claimed column")
	}
}

func TestSuggestColumnMapping_UnknownHeadersUnmapped(t *testing.T) {
	headers := []string{"Serial", "Remarks2", "XYZ"}
	mapping := SuggestColumnMapping(headers)

	if mapping.BusinessName != nil || mapping.TaxId != nil {
		t.Fatal("unknown headers must stay unmapped")
	}
}

func TestSuggestColumnMapping_WhitespaceAndCase(t *testing.T) {
	headers := []string{"  BUSINESS   name  ", "tax ID"}
	mapping := SuggestColumnMapping(headers)

	if mapping.BusinessName == nil || *mapping.BusinessName != 0 {
		t.Fatal("normalization should make the header match")
	}
	if mapping.TaxId == nil || *mapping.TaxId != 1 {
		t.Fatal("tax id header should match case-insensitively")
	}
}
