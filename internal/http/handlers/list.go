package handlers

import (
	"net/url"

	"github.com/danielgtaylor/huma/v2"

	"github.com/openfoodfacts/open-prices/internal/service"
)

// ListInput holds the pagination parameters shared by list endpoints and
// captures the raw query so field__lookup filters can be compiled.
type ListInput struct {
	Page    int    `query:"page" minimum:"1" default:"1" doc:"Page number"`
	Size    int    `query:"size" minimum:"1" maximum:"100" default:"50" doc:"Page size"`
	OrderBy string `query:"order_by" doc:"Comma separated fields, prefix with - for descending" example:"-date"`

	filters url.Values
}

// Resolve implements huma.Resolver.
func (in *ListInput) Resolve(ctx huma.Context) []error {
	u := ctx.URL()
	in.filters = u.Query()
	return nil
}

func (in *ListInput) params() service.ListParams {
	return service.ListParams{
		Filters: in.filters,
		OrderBy: in.OrderBy,
		Page:    in.Page,
		Size:    in.Size,
	}
}
