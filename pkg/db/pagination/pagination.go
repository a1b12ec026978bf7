package pagination

// Page carries offset pagination inputs. Zero values are normalized to
// page 1 / limit 10; limit is capped at 250.
type Page struct {
	Page  int `form:"page,default=1" validate:"gte=0"`
	Limit int `form:"limit,default=10" validate:"gte=0,lte=250"`
}

// PageInfo is the pagination block returned alongside every list response.
type PageInfo struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalCount  int64 `json:"totalCount"`
	Limit       int   `json:"limit"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

const (
	DefaultLimit = 10
	MaxLimit     = 250
)

// Normalize clamps page/limit into their valid ranges.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// BuildPageInfo derives the full pagination block from a total row count.
// totalPages = ceil(totalCount/limit); hasNextPage iff currentPage < totalPages;
// hasPrevPage iff currentPage > 1.
func BuildPageInfo(p Page, totalCount int64) PageInfo {
	n := p.Normalize()
	totalPages := int((totalCount + int64(n.Limit) - 1) / int64(n.Limit))
	return PageInfo{
		CurrentPage: n.Page,
		TotalPages:  totalPages,
		TotalCount:  totalCount,
		Limit:       n.Limit,
		HasNextPage: n.Page < totalPages,
		HasPrevPage: n.Page > 1,
	}
}
