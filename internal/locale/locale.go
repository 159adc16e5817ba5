// Package locale maps visitor countries to currency and phone conventions
// and sniffs the country out of locale identifiers.
package locale

import (
	"os"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Info describes how prices and phone numbers are presented for a country.
type Info struct {
	CountryCode    string `json:"country_code"`
	CountryName    string `json:"country_name"`
	CurrencyCode   string `json:"currency_code"`
	CurrencySymbol string `json:"currency_symbol"`
	CurrencyLabel  string `json:"currency_label"`
	PhonePrefix    string `json:"phone_prefix"`
	// Decimals is the number of minor-unit digits; 0 for XOF, XAF, GNF...
	Decimals int `json:"decimals"`
}

// FallbackCountry is used for unknown or missing country codes.
const FallbackCountry = "US"

var (
	xof = currency{"XOF", "FCFA", "Franc CFA (BCEAO)", 0}
	xaf = currency{"XAF", "FCFA", "Franc CFA (BEAC)", 0}
	eur = currency{"EUR", "€", "Euro", 2}
)

type currency struct {
	code, symbol, label string
	decimals            int
}

type country struct {
	name  string
	phone string
	money currency
}

//nolint:gochecknoglobals // static lookup table
var countries = map[string]country{
	"BJ": {"Bénin", "+229", xof},
	"BF": {"Burkina Faso", "+226", xof},
	"CI": {"Côte d'Ivoire", "+225", xof},
	"GW": {"Guinée-Bissau", "+245", xof},
	"ML": {"Mali", "+223", xof},
	"NE": {"Niger", "+227", xof},
	"SN": {"Sénégal", "+221", xof},
	"TG": {"Togo", "+228", xof},
	"CM": {"Cameroun", "+237", xaf},
	"CF": {"République centrafricaine", "+236", xaf},
	"CG": {"Congo", "+242", xaf},
	"GA": {"Gabon", "+241", xaf},
	"GQ": {"Guinée équatoriale", "+240", xaf},
	"TD": {"Tchad", "+235", xaf},
	"CD": {"RD Congo", "+243", currency{"CDF", "FC", "Franc congolais", 2}},
	"GN": {"Guinée", "+224", currency{"GNF", "FG", "Franc guinéen", 0}},
	"MG": {"Madagascar", "+261", currency{"MGA", "Ar", "Ariary", 0}},
	"RW": {"Rwanda", "+250", currency{"RWF", "FRw", "Franc rwandais", 0}},
	"NG": {"Nigeria", "+234", currency{"NGN", "₦", "Naira", 2}},
	"GH": {"Ghana", "+233", currency{"GHS", "GH₵", "Cedi", 2}},
	"MA": {"Maroc", "+212", currency{"MAD", "DH", "Dirham marocain", 2}},
	"TN": {"Tunisie", "+216", currency{"TND", "DT", "Dinar tunisien", 3}},
	"DZ": {"Algérie", "+213", currency{"DZD", "DA", "Dinar algérien", 2}},
	"FR": {"France", "+33", eur},
	"BE": {"Belgique", "+32", eur},
	"LU": {"Luxembourg", "+352", eur},
	"CH": {"Suisse", "+41", currency{"CHF", "CHF", "Franc suisse", 2}},
	"CA": {"Canada", "+1", currency{"CAD", "$", "Dollar canadien", 2}},
	"GB": {"Royaume-Uni", "+44", currency{"GBP", "£", "Livre sterling", 2}},
	"US": {"États-Unis", "+1", currency{"USD", "$", "Dollar américain", 2}},
}

// Resolve returns the locale record for countryCode. Unknown or empty codes
// resolve to the US/USD fallback.
func Resolve(countryCode string) Info {
	code := strings.ToUpper(strings.TrimSpace(countryCode))
	c, ok := countries[code]
	if !ok {
		code = FallbackCountry
		c = countries[code]
	}
	return Info{
		CountryCode:    code,
		CountryName:    c.name,
		CurrencyCode:   c.money.code,
		CurrencySymbol: c.money.symbol,
		CurrencyLabel:  c.money.label,
		PhonePrefix:    c.phone,
		Decimals:       c.money.decimals,
	}
}

// Supported reports whether countryCode has its own entry in the table.
func Supported(countryCode string) bool {
	_, ok := countries[strings.ToUpper(strings.TrimSpace(countryCode))]
	return ok
}

// Countries returns every supported country, sorted by code.
func Countries() []Info {
	codes := make([]string, 0, len(countries))
	for code := range countries {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	out := make([]Info, len(codes))
	for i, code := range codes {
		out[i] = Resolve(code)
	}
	return out
}

// ByCurrency returns the first country, by code, using currencyCode. Only
// the currency fields of the result are meaningful to callers formatting
// prices.
func ByCurrency(currencyCode string) (Info, bool) {
	code := strings.ToUpper(strings.TrimSpace(currencyCode))
	for _, info := range Countries() {
		if info.CurrencyCode == code {
			return info, true
		}
	}
	return Info{}, false
}

// DetectCountryCode extracts the two-letter region from a locale identifier
// such as "fr-BJ", "fr_SN.UTF-8" or "en-US". It returns false when the
// identifier carries no explicit region.
func DetectCountryCode(tag string) (string, bool) {
	tag = strings.TrimSpace(tag)
	if i := strings.IndexAny(tag, ".@"); i >= 0 {
		tag = tag[:i]
	}
	if tag == "" || tag == "C" || tag == "POSIX" {
		return "", false
	}
	t, err := language.Parse(strings.ReplaceAll(tag, "_", "-"))
	if err != nil {
		return "", false
	}
	return regionOf(t)
}

// DetectFromAcceptLanguage returns the region of the highest-weighted
// Accept-Language entry that names one.
func DetectFromAcceptLanguage(header string) (string, bool) {
	if strings.TrimSpace(header) == "" {
		return "", false
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		return "", false
	}
	for _, t := range tags {
		if code, ok := regionOf(t); ok {
			return code, true
		}
	}
	return "", false
}

// DetectFromEnvironment inspects the process locale variables.
func DetectFromEnvironment() (string, bool) {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if code, ok := DetectCountryCode(os.Getenv(key)); ok {
			return code, true
		}
	}
	return "", false
}

func regionOf(t language.Tag) (string, bool) {
	region, conf := t.Region()
	if conf != language.Exact || !region.IsCountry() {
		return "", false
	}
	code := region.String()
	if len(code) != 2 {
		return "", false
	}
	return code, true
}

// regionalIndicatorA is U+1F1E6, the symbol for letter A.
const regionalIndicatorA = 0x1F1E6

// FlagEmoji turns a two-letter country code into its flag emoji by mapping
// each ASCII letter onto the regional indicator block. Characters that are not
// ASCII letters are dropped; an empty code yields "".
func FlagEmoji(code string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(code) {
		if r < 'A' || r > 'Z' {
			continue
		}
		b.WriteRune(r - 'A' + regionalIndicatorA)
	}
	return b.String()
}
