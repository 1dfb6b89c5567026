package core

import "strings"

type (
	Category   string
	Currency   string
	Occupation string
)

const (
	CategoryFood          Category = "Food & Beverages"
	CategoryTravel        Category = "Travel"
	CategoryBills         Category = "Bills & Utilities"
	CategoryShopping      Category = "Shopping"
	CategoryGroceries     Category = "Groceries"
	CategoryEntertainment Category = "Entertainment"
	CategoryHealth        Category = "Health & Fitness"
	CategoryEducation     Category = "Education"
	CategoryRent          Category = "Rent & EMIs"
	CategoryPersonalCare  Category = "Personal Care"
	CategorySavings       Category = "Savings & Investments"
	CategoryMisc          Category = "Miscellaneous"
)

const (
	CurrencyINR Currency = "INR"
	CurrencyUSD Currency = "USD"
)

const (
	OccupationStudent  Occupation = "Student"
	OccupationJob      Occupation = "Job"
	OccupationBusiness Occupation = "Business"
	OccupationOther    Occupation = "Other"
)

var categories = []Category{
	CategoryFood,
	CategoryTravel,
	CategoryBills,
	CategoryShopping,
	CategoryGroceries,
	CategoryEntertainment,
	CategoryHealth,
	CategoryEducation,
	CategoryRent,
	CategoryPersonalCare,
	CategorySavings,
	CategoryMisc,
}

// Categories returns the fixed category list in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory accepts either the plain name ("Travel") or a menu label such
// as "2. Travel (यात्रा)" and returns the canonical category.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if _, rest, ok := strings.Cut(s, ". "); ok {
		s = rest
	}
	if name, _, ok := strings.Cut(s, " ("); ok {
		s = name
	}
	s = strings.TrimSpace(s)
	for _, known := range categories {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", ErrInvalidCategory
}

func (c Currency) Valid() bool {
	return c == CurrencyINR || c == CurrencyUSD
}

// Symbol returns the display symbol, or the code itself for unknown currencies.
func (c Currency) Symbol() string {
	switch c {
	case CurrencyINR:
		return "₹"
	case CurrencyUSD:
		return "$"
	}
	return string(c)
}

// ParseCurrency accepts a code ("USD") or a labelled option ("$ USD").
// An empty string yields the default INR.
func ParseCurrency(s string) (Currency, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CurrencyINR, nil
	}
	if i := strings.LastIndex(s, " "); i >= 0 {
		s = s[i+1:]
	}
	c := Currency(strings.ToUpper(s))
	if !c.Valid() {
		return "", ErrInvalidCurrency
	}
	return c, nil
}

func (o Occupation) Valid() bool {
	switch o {
	case OccupationStudent, OccupationJob, OccupationBusiness, OccupationOther:
		return true
	}
	return false
}

// ParseOccupation matches case-insensitively against the known occupations.
func ParseOccupation(s string) (Occupation, error) {
	s = strings.TrimSpace(s)
	for _, o := range []Occupation{OccupationStudent, OccupationJob, OccupationBusiness, OccupationOther} {
		if strings.EqualFold(s, string(o)) {
			return o, nil
		}
	}
	return "", ErrInvalidOccupation
}
