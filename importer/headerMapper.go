package importer

import (
	"strings"

	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/models"
	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/utils"
)

// headerSynonyms maps each mappable field to the header spellings seen in
// real registry spreadsheets, English and Burmese. Matching is done on
// normalized headers (lowercased, whitespace collapsed), exact first, then
// substring.
var headerSynonyms = map[string][]string{
	"business_name": {"business name", "businessname", "name of business", "company", "company name", "လုပ်ငန်းအမည်", "ဆိုင်အမည်"},
	"owner_name":    {"owner name", "ownername", "owner", "proprietor", "name of owner", "ပိုင်ရှင်အမည်", "ပိုင်ရှင်"},
	"tax_id":        {"tax id", "taxid", "tin", "tax identification", "taxpayer id", "အခွန်အမှတ်"},
	"fined_amount":  {"fined amount", "fine amount", "fine", "penalty", "penalty amount", "ဒဏ်ငွေ"},
	"contact_phone": {"phone", "phone number", "contact phone", "mobile", "telephone", "ဖုန်း", "ဖုန်းနံပါတ်"},
	"district":      {"district", "township", "area", "မြို့နယ်"},
	"department":    {"department", "dept", "division", "ဌာန"},
	"title":         {"title", "prefix", "honorific"},
	"case_field":    {"case", "case description", "violation", "offence", "offense", "remark", "အမှု"},
	"case_date":     {"case date", "date", "violation date", "inspection date", "ရက်စွဲ"},
	"address":       {"address", "street address", "location", "လိပ်စာ"},
	"contact_email": {"email", "e-mail", "email address", "contact email"},
}

// fieldOrder keeps mapping deterministic: earlier fields win contested
// headers.
var fieldOrder = []string{
	"business_name", "owner_name", "tax_id", "fined_amount",
	"contact_phone", "district", "department", "title",
	"case_field", "case_date", "address", "contact_email",
}

// SuggestColumnMapping guesses which spreadsheet column holds which field.
// Each column is claimed at most once.
func SuggestColumnMapping(headers []string) models.ColumnMapping {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = utils.NormalizeHeader(h)
	}

	claimed := make(map[int]bool)
	found := make(map[string]*int)

	// exact matches first so "owner name" cannot be stolen by a
	// substring match on "name"
	for _, field := range fieldOrder {
		for i, header := range normalized {
			if claimed[i] || header == "" {
				continue
			}
			if matchesExact(header, headerSynonyms[field]) {
				idx := i
				found[field] = &idx
				claimed[i] = true
				break
			}
		}
	}
	for _, field := range fieldOrder {
		if found[field] != nil {
			continue
		}
		for i, header := range normalized {
			if claimed[i] || header == "" {
				continue
			}
			if matchesContains(header, headerSynonyms[field]) {
				idx := i
				found[field] = &idx
				claimed[i] = true
				break
			}
		}
	}

	return models.ColumnMapping{
		BusinessName: found["business_name"],
		OwnerName:    found["owner_name"],
		TaxId:        found["tax_id"],
		FinedAmount:  found["fined_amount"],
		ContactPhone: found["contact_phone"],
		District:     found["district"],
		Department:   found["department"],
		Title:        found["title"],
		CaseField:    found["case_field"],
		CaseDate:     found["case_date"],
		Address:      found["address"],
		ContactEmail: found["contact_email"],
	}
}

func matchesExact(header string, synonyms []string) bool {
	for _, s := range synonyms {
		if header == utils.NormalizeHeader(s) {
			return true
		}
	}
	return false
}

func matchesContains(header string, synonyms []string) bool {
	for _, s := range synonyms {
		if strings.Contains(header, utils.NormalizeHeader(s)) {
			return true
		}
	}
	return false
}
