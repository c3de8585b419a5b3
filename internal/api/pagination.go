package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/safar/storefront/internal/store"
)

// Page is the page-number envelope used by paginated lists.
type Page struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

// ParsePageNumber reads ?page=. A missing value is page 1; anything that is
// not a positive integer is answered with 404.
func ParsePageNumber(c *gin.Context) (int, bool) {
	raw := c.Query("page")
	if raw == "" {
		return 1, true
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		invalidPage(c)
		return 0, false
	}
	return page, true
}

// RespondPage writes results wrapped in a Page. A page past the last one is
// a 404; an empty first page is not.
func RespondPage(c *gin.Context, p *store.OffsetPage, results any) {
	if p.Page > 1 && p.Page > p.TotalPages {
		invalidPage(c)
		return
	}

	body := Page{Count: p.Total, Results: results}
	if p.Page < p.TotalPages {
		next := pageURL(c, p.Page+1)
		body.Next = &next
	}
	if p.Page > 1 {
		previous := pageURL(c, p.Page-1)
		body.Previous = &previous
	}
	c.JSON(http.StatusOK, body)
}

func invalidPage(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"detail": "Invalid page."})
}

// pageURL rebuilds the absolute request URL pointing at page. The first page
// is addressed without a page parameter.
func pageURL(c *gin.Context, page int) string {
	u := url.URL{
		Scheme: "http",
		Host:   c.Request.Host,
		Path:   c.Request.URL.Path,
	}
	if c.Request.TLS != nil {
		u.Scheme = "https"
	}

	query := c.Request.URL.Query()
	if page == 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = query.Encode()
	return u.String()
}
