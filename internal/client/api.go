package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/api/dto"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/validation"
)

// DefaultTimeout bounds each API request.
const DefaultTimeout = 10 * time.Second

// API is the subset of the account service the gate calls.
type API interface {
	Signup(ctx context.Context, form validation.SignupForm) (dto.SignupResponse, error)
	Login(ctx context.Context, form validation.LoginForm) (dto.LoginResponse, error)
	Me(ctx context.Context, token string) (domain.PublicUser, error)
}

// APIError is a non-2xx answer from the server. Message is the server's text
// verbatim.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// APIClient calls the account service over HTTP.
type APIClient struct {
	baseURL string
	timeout time.Duration
}

// NewAPIClient returns a client for baseURL, e.g. http://localhost:5000/api.
func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &APIClient{baseURL: strings.TrimRight(baseURL, "/"), timeout: timeout}
}

func (c *APIClient) Signup(ctx context.Context, form validation.SignupForm) (dto.SignupResponse, error) {
	var out dto.SignupResponse
	err := c.do(ctx, fiber.Post(c.baseURL+"/auth/signup").JSON(form), "", &out)
	return out, err
}

func (c *APIClient) Login(ctx context.Context, form validation.LoginForm) (dto.LoginResponse, error) {
	var out dto.LoginResponse
	err := c.do(ctx, fiber.Post(c.baseURL+"/auth/login").JSON(form), "", &out)
	return out, err
}

func (c *APIClient) Me(ctx context.Context, token string) (domain.PublicUser, error) {
	var out dto.MeResponse
	err := c.do(ctx, fiber.Get(c.baseURL+"/auth/me"), token, &out)
	return out.User, err
}

func (c *APIClient) do(ctx context.Context, agent *fiber.Agent, token string, out any) error {
	if err := ctx.Err(); err != nil {
		fiber.ReleaseAgent(agent)
		return err
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	agent.Timeout(timeout)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if token != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("request failed: %w", errors.Join(errs...))
	}
	if status >= http.StatusBadRequest {
		return decodeAPIError(status, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var envelope struct {
		Msg   string `json:"msg"`
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr.Code = envelope.Code
		apiErr.Message = envelope.Msg
		if apiErr.Message == "" {
			apiErr.Message = envelope.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
