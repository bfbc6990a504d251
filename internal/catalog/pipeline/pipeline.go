package pipeline

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/aurelia-gems/storefront/internal/catalog/domain"
)

// SortKey enumerates the supported orderings. Anything else leaves the
// input order untouched.
type SortKey string

const (
	SortDateDesc  SortKey = "date-desc"
	SortDateAsc   SortKey = "date-asc"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortTitleAsc  SortKey = "title-asc"
	SortTitleDesc SortKey = "title-desc"
)

// CatchAllCategory is the reserved filter value matching every product
// whose category is not one of the known enumerated categories.
const CatchAllCategory = "others"

// Options are the query parameters of one catalog browse. Nil price bounds
// mean unbounded on that side. KnownCategories feeds the catch-all bucket;
// it is derived from data, never hard-coded.
type Options struct {
	SearchTerm      string
	Category        string
	MinPrice        *float64
	MaxPrice        *float64
	InStockOnly     bool
	Sort            SortKey
	KnownCategories []string
}

// Apply runs the full query pipeline over products and returns a new
// slice. Stages compose by logical AND in a fixed order: search, then
// category, then price range, then stock, then sort. The sort is stable,
// so ties keep their relative input order and re-applying the same
// options is idempotent. Apply never mutates its input and never fails.
func Apply(products []domain.Product, opts Options) []domain.Product {
	out := make([]domain.Product, 0, len(products))

	term := strings.ToLower(strings.TrimSpace(opts.SearchTerm))
	category := strings.ToLower(strings.TrimSpace(opts.Category))
	known := normalizeSet(opts.KnownCategories)

	for _, p := range products {
		if term != "" && !matchesSearch(&p, term) {
			continue
		}
		if !matchesCategory(&p, category, known) {
			continue
		}
		if !matchesPrice(&p, opts.MinPrice, opts.MaxPrice) {
			continue
		}
		if opts.InStockOnly && !p.InStock {
			continue
		}
		out = append(out, p)
	}

	sortProducts(out, opts.Sort)
	return out
}

func matchesSearch(p *domain.Product, term string) bool {
	if strings.Contains(strings.ToLower(p.Title), term) ||
		strings.Contains(strings.ToLower(p.Description), term) ||
		strings.Contains(p.NormalizedCategory(), term) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func matchesCategory(p *domain.Product, category string, known map[string]struct{}) bool {
	if category == "" || category == "all" {
		return true
	}
	productCategory := p.NormalizedCategory()
	if category == CatchAllCategory {
		// The catch-all bucket is the complement of the known set.
		_, enumerated := known[productCategory]
		return !enumerated
	}
	return productCategory == category
}

func matchesPrice(p *domain.Product, min, max *float64) bool {
	if min != nil && p.Price < *min {
		return false
	}
	if max != nil && p.Price > *max {
		return false
	}
	return true
}

func sortProducts(products []domain.Product, key SortKey) {
	switch key {
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price < products[j].Price
		})
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price > products[j].Price
		})
	case SortTitleAsc:
		c := collate.New(language.English, collate.IgnoreCase)
		sort.SliceStable(products, func(i, j int) bool {
			return c.CompareString(products[i].Title, products[j].Title) < 0
		})
	case SortTitleDesc:
		c := collate.New(language.English, collate.IgnoreCase)
		sort.SliceStable(products, func(i, j int) bool {
			return c.CompareString(products[i].Title, products[j].Title) > 0
		})
	case SortDateAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].DateAdded.Before(products[j].DateAdded)
		})
	case SortDateDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].DateAdded.After(products[j].DateAdded)
		})
	default:
		// Unknown or absent key keeps the input order.
	}
}

// Categories derives the lower-cased, de-duplicated, sorted category list
// from a product snapshot.
func Categories(products []domain.Product) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range products {
		c := p.NormalizedCategory()
		if c == "" {
			continue
		}
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// PriceBounds returns the floor of the lowest and the ceiling of the
// highest normalized price in the snapshot. An empty snapshot yields
// (0, 0).
func PriceBounds(products []domain.Product) (min, max float64) {
	if len(products) == 0 {
		return 0, 0
	}
	min, max = products[0].Price, products[0].Price
	for _, p := range products[1:] {
		if p.Price < min {
			min = p.Price
		}
		if p.Price > max {
			max = p.Price
		}
	}
	return math.Floor(min), math.Ceil(max)
}

func normalizeSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || v == CatchAllCategory {
			continue
		}
		set[v] = struct{}{}
	}
	return set
}
