package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/giftly/giftly-backend/api/responses"
	"github.com/giftly/giftly-backend/api/validators"
	product "github.com/giftly/giftly-backend/internal/products"
	pkgerrors "github.com/giftly/giftly-backend/pkg/errors"
	"github.com/giftly/giftly-backend/pkg/logger"
	"github.com/giftly/giftly-backend/pkg/pagination"
)

// ProductList serves the public catalog with filters and cursor pagination.
func ProductList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		input, err := parseProductListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListProducts(r.Context(), *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// ProductDetail serves a single active product by id.
func ProductDetail(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

func parseProductListQuery(r *http.Request) (*product.ListProductsInput, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return nil, err
	}

	input := product.ListProductsInput{
		Pagination: pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		},
	}

	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		input.Filters.Category = &category
	}
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		input.Filters.Query = q
	}

	priceMin, err := parseQueryDecimal(r, "price_min")
	if err != nil {
		return nil, err
	}
	input.Filters.PriceMin = priceMin

	priceMax, err := parseQueryDecimal(r, "price_max")
	if err != nil {
		return nil, err
	}
	input.Filters.PriceMax = priceMax

	if raw := strings.TrimSpace(r.URL.Query().Get("in_stock")); raw != "" {
		switch raw {
		case "true":
			inStock := true
			input.Filters.InStock = &inStock
		case "false":
			inStock := false
			input.Filters.InStock = &inStock
		default:
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be true or false").WithDetails(map[string]any{"field": "in_stock"})
		}
	}

	return &input, nil
}

func parseQueryDecimal(r *http.Request, key string) (*decimal.Decimal, error) {
	raw, err := validators.ParseQueryDecimalString(r, key)
	if err != nil || raw == "" {
		return nil, err
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "query parameter must be a decimal number").WithDetails(map[string]any{"field": key})
	}
	return &value, nil
}

func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "missing path parameter").WithDetails(map[string]any{"field": name})
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "path parameter must be a uuid").WithDetails(map[string]any{"field": name})
	}
	return id, nil
}
