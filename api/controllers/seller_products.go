package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/giftly/giftly-backend/api/responses"
	"github.com/giftly/giftly-backend/api/validators"
	product "github.com/giftly/giftly-backend/internal/products"
	pkgerrors "github.com/giftly/giftly-backend/pkg/errors"
	"github.com/giftly/giftly-backend/pkg/logger"
)

// SellerCreateProduct creates a catalog listing for the authenticated seller.
func SellerCreateProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		sellerID, err := authenticatedSellerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.CreateProduct(r.Context(), sellerID, *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// SellerUpdateProduct applies a partial update to one of the seller's listings.
func SellerUpdateProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		sellerID, err := authenticatedSellerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.UpdateProduct(r.Context(), sellerID, productID, *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

// SellerDeleteProduct removes one of the seller's listings.
func SellerDeleteProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		sellerID, err := authenticatedSellerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), sellerID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// SellerListProducts returns every listing owned by the seller, active or not.
func SellerListProducts(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		sellerID, err := authenticatedSellerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dtos, err := svc.ListSellerProducts(r.Context(), sellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dtos)
	}
}

type createProductRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Category    string   `json:"category" validate:"required"`
	Price       string   `json:"price" validate:"required"`
	Stock       int      `json:"stock" validate:"min=0"`
	SKU         *string  `json:"sku,omitempty"`
	Images      []string `json:"images,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

func (p createProductRequest) toInput() (*product.CreateProductInput, error) {
	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price must be a decimal number")
	}

	input := product.CreateProductInput{
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       price,
		Stock:       p.Stock,
		SKU:         p.SKU,
		Images:      p.Images,
		IsActive:    true,
	}
	if p.IsActive != nil {
		input.IsActive = *p.IsActive
	}
	return &input, nil
}

type updateProductRequest struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Price       *string   `json:"price,omitempty"`
	Stock       *int      `json:"stock,omitempty"`
	SKU         *string   `json:"sku,omitempty"`
	Images      *[]string `json:"images,omitempty"`
	IsActive    *bool     `json:"is_active,omitempty"`
}

func (p updateProductRequest) toInput() (*product.UpdateProductInput, error) {
	input := product.UpdateProductInput{
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Stock:       p.Stock,
		SKU:         p.SKU,
		Images:      p.Images,
		IsActive:    p.IsActive,
	}
	if p.Price != nil {
		price, err := decimal.NewFromString(*p.Price)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price must be a decimal number")
		}
		input.Price = &price
	}
	return &input, nil
}
