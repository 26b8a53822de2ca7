package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultBaseURL is the platform API root used when nothing is configured
const DefaultBaseURL = "http://localhost:8080/api/v1"

// Client represents an HTTP client for the novelhub API
type Client struct {
	baseURL    string
	httpClient *http.Client
	chain      Chain
	validate   *validator.Validate
}

// New creates a new API client. The transforms form the request
// middleware chain and run in the given order before every dispatch.
func New(baseURL string, transforms ...RequestTransform) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	validate := validator.New()
	// Report fields by their wire names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		chain:    Chain(transforms),
		validate: validate,
	}
	c.SetHTTPClient(&http.Client{Timeout: 30 * time.Second})
	return c
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// BaseURL returns the API root this client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login authenticates the user and returns a bearer token and profile
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	var result LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, http.StatusOK, &result); err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, &NetworkError{Op: "decode login response", Err: fmt.Errorf("response carries no token")}
	}
	return &result, nil
}

// Register creates a new account
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	var result RegisterResult
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, http.StatusCreated, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetProfile fetches the authenticated user's profile
func (c *Client) GetProfile(ctx context.Context) (Profile, error) {
	var profile Profile
	if err := c.do(ctx, http.MethodGet, "/user/profile", nil, http.StatusOK, &profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateProfile changes the given profile fields
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*Ack, error) {
	if len(req.Fields()) == 0 {
		return nil, &ValidationError{Message: "nothing to update"}
	}

	var ack Ack
	if err := c.do(ctx, http.MethodPut, "/user/profile", req, http.StatusOK, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// UpdatePassword changes the authenticated user's password
func (c *Client) UpdatePassword(ctx context.Context, req UpdatePasswordRequest) (*Ack, error) {
	var ack Ack
	if err := c.do(ctx, http.MethodPut, "/user/password", req, http.StatusOK, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// UploadAvatar sends an image as the user's avatar
func (c *Client) UploadAvatar(ctx context.Context, filename string, r io.Reader) (*AvatarResult, error) {
	if filename == "" {
		return nil, &ValidationError{Message: "avatar file name is required"}
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("avatar", filename)
	if err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("failed to build upload: %v", err)}
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("failed to read avatar: %v", err)}
	}
	if err := mw.Close(); err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("failed to build upload: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/user/avatar", &body)
	if err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("failed to create request: %v", err)}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result AvatarResult
	if err := c.send(req, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// do validates and encodes in, sends the request and decodes the expected response into out
func (c *Client) do(ctx context.Context, method, path string, in any, want int, out any) error {
	var body io.Reader
	if in != nil {
		if err := c.validate.Struct(in); err != nil {
			return validationFromStruct(err)
		}

		jsonData, err := json.Marshal(in)
		if err != nil {
			return &ValidationError{Message: fmt.Sprintf("failed to marshal request: %v", err)}
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &ValidationError{Message: fmt.Sprintf("failed to create request: %v", err)}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	return c.send(req, want, out)
}

func (c *Client) send(req *http.Request, want int, out any) error {
	op := fmt.Sprintf("%s %s", req.Method, req.URL.Path)

	// Applied once to the original request so the redirect policy of
	// http.Client still strips Authorization on cross-host hops
	c.chain.Apply(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		return errorFromResponse(resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}
