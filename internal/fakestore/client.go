// Package fakestore talks to a fakestoreapi.com compatible catalog.
package fakestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/domain/models"
)

const DefaultBaseURL = "https://fakestoreapi.com"

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) FetchProducts(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) FetchCategories(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.do(ctx, http.MethodGet, "/products/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchProduct returns NotFoundError when the upstream answers with an empty
// body, which is how it reports unknown ids.
func (c *Client) FetchProduct(ctx context.Context, id int64) (models.Product, error) {
	var out *models.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return models.Product{}, err
	}
	if out == nil || out.ID == 0 {
		return models.Product{}, domain.NotFoundError{Resource: "product", ID: id}
	}
	return *out, nil
}

// CreateProduct posts the form. The upstream answers with a fresh id but does
// not store the product.
func (c *Client) CreateProduct(ctx context.Context, in models.NewProduct) (models.Product, error) {
	var out models.Product
	if err := c.do(ctx, http.MethodPost, "/products", in, &out); err != nil {
		return models.Product{}, err
	}
	return models.Product{
		ID:          out.ID,
		Title:       in.Title,
		Price:       in.Price,
		Description: in.Description,
		Category:    in.Category,
		Image:       in.Image,
	}, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Username: username, Password: password}, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", domain.UnauthorizedError{Msg: "login response carried no token"}
	}
	return out.Token, nil
}

type cartProduct struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type cartRequest struct {
	UserID   int64         `json:"userId"`
	Date     string        `json:"date"`
	Products []cartProduct `json:"products"`
}

// SubmitCart posts the cart for a user and returns the id the upstream assigned.
func (c *Client) SubmitCart(ctx context.Context, userID int64, items []models.LineItem) (int64, error) {
	req := cartRequest{
		UserID:   userID,
		Date:     time.Now().UTC().Format(time.RFC3339),
		Products: make([]cartProduct, 0, len(items)),
	}
	for _, it := range items {
		req.Products = append(req.Products, cartProduct{ProductID: it.ID, Quantity: it.Quantity})
	}
	var out struct {
		ID int64 `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/carts", req, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dst any) error {
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rdr)
	if err != nil {
		return domain.FetchError{Op: method + " " + path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return domain.FetchError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return domain.FetchError{Op: method + " " + path, Status: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.FetchError{Op: method + " " + path, Err: err}
	}
	if len(bytes.TrimSpace(raw)) == 0 || dst == nil {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return domain.FetchError{Op: "decode " + path, Err: err}
	}
	return nil
}
