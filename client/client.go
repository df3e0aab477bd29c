// Package client is the order synchronizer used by the mobile app: an
// HTTP client for the cart/order service plus a durable local store that
// keeps the user's actions when the service cannot be reached.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pattarin-dev/shopsync/internal/address"
	"github.com/pattarin-dev/shopsync/internal/cart"
	"github.com/pattarin-dev/shopsync/internal/order"
	"github.com/pattarin-dev/shopsync/internal/product"
)

var (
	// ErrUnreachable is a transport-level failure: the service could not
	// be reached at all. It is what triggers local fallback; application
	// errors below never do.
	ErrUnreachable = errors.New("service unreachable")

	ErrNotFound       = errors.New("not found")
	ErrEmptyCart      = errors.New("cart is empty")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid request")
	// ErrRetryable maps the server's TransactionFailure outcome: nothing
	// was persisted and repeating the call is safe.
	ErrRetryable = errors.New("transient server failure, safe to retry")
)

// Client is a thin HTTP client for the cart/order service.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken sets the bearer token attached to every subsequent request.
func (c *Client) SetToken(token string) { c.token = token }

type AuthResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	User    struct {
		ID    int    `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

func (c *Client) Login(email, password string) (AuthResponse, error) {
	var out AuthResponse
	err := c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password}, &out)
	if err != nil {
		return AuthResponse{}, err
	}
	c.token = out.Token
	return out, nil
}

func (c *Client) Signup(name, email, password, address, phone string) (AuthResponse, error) {
	var out AuthResponse
	err := c.do(http.MethodPost, "/api/auth/signup", map[string]string{
		"name": name, "email": email, "password": password, "address": address, "phone": phone,
	}, &out)
	if err != nil {
		return AuthResponse{}, err
	}
	c.token = out.Token
	return out, nil
}

func (c *Client) Products() ([]product.Product, error) {
	var out []product.Product
	err := c.do(http.MethodGet, "/api/products", nil, &out)
	return out, err
}

func (c *Client) Cart() ([]cart.Item, error) {
	var out []cart.Item
	err := c.do(http.MethodGet, "/api/cart", nil, &out)
	return out, err
}

func (c *Client) AddToCart(productID, quantity int) ([]cart.Item, error) {
	var out []cart.Item
	err := c.do(http.MethodPost, "/api/cart", map[string]int{"productId": productID, "quantity": quantity}, &out)
	return out, err
}

func (c *Client) UpdateCartLine(lineID, quantity int) ([]cart.Item, error) {
	var out []cart.Item
	err := c.do(http.MethodPut, fmt.Sprintf("/api/cart/%d", lineID), map[string]int{"quantity": quantity}, &out)
	return out, err
}

func (c *Client) RemoveCartLine(lineID int) ([]cart.Item, error) {
	var out []cart.Item
	err := c.do(http.MethodDelete, fmt.Sprintf("/api/cart/%d", lineID), nil, &out)
	return out, err
}

func (c *Client) ClearCart() error {
	return c.do(http.MethodDelete, "/api/cart", nil, nil)
}

func (c *Client) Checkout(shippingAddress, paymentMethod string) (order.Order, error) {
	var out order.Order
	err := c.do(http.MethodPost, "/api/orders", map[string]string{
		"shippingAddress": shippingAddress,
		"paymentMethod":   paymentMethod,
	}, &out)
	return out, err
}

func (c *Client) Orders() ([]order.Order, error) {
	var out []order.Order
	err := c.do(http.MethodGet, "/api/orders", nil, &out)
	return out, err
}

func (c *Client) Addresses() ([]address.Address, error) {
	var out []address.Address
	err := c.do(http.MethodGet, "/api/addresses", nil, &out)
	return out, err
}

func (c *Client) CreateAddress(label, line, phone string, isDefault bool) (address.Address, error) {
	var out address.Address
	err := c.do(http.MethodPost, "/api/addresses", map[string]any{
		"label": label, "line": line, "phone": phone, "isDefault": isDefault,
	}, &out)
	return out, err
}

func (c *Client) Favorites() ([]product.Product, error) {
	var out []product.Product
	err := c.do(http.MethodGet, "/api/favorites", nil, &out)
	return out, err
}

func (c *Client) AddFavorite(productID int) ([]product.Product, error) {
	var out []product.Product
	err := c.do(http.MethodPost, fmt.Sprintf("/api/favorites/%d", productID), nil, &out)
	return out, err
}

func (c *Client) RemoveFavorite(productID int) ([]product.Product, error) {
	var out []product.Product
	err := c.do(http.MethodDelete, fmt.Sprintf("/api/favorites/%d", productID), nil, &out)
	return out, err
}

type apiError struct {
	Message string `json:"error"`
	Code    string `json:"code"`
}

func (c *Client) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		// connection refused, DNS failure, timeout: the service is gone,
		// not the request wrong
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		if out == nil {
			return nil
		}
		return json.NewDecoder(res.Body).Decode(out)
	}

	return c.decodeError(res)
}

func (c *Client) decodeError(res *http.Response) error {
	if res.StatusCode >= 500 && res.StatusCode != http.StatusServiceUnavailable {
		return fmt.Errorf("%w: server error %d", ErrUnreachable, res.StatusCode)
	}

	var ae apiError
	_ = json.NewDecoder(res.Body).Decode(&ae)

	switch ae.Code {
	case "empty_cart":
		return ErrEmptyCart
	case "not_found":
		return ErrNotFound
	case "tx_failed":
		return fmt.Errorf("%w: %s", ErrRetryable, ae.Message)
	}

	switch res.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s", ErrRetryable, ae.Message)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidRequest, ae.Message)
	}
}
