package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// errUserNotFound is returned by findUserIDByEmail when no account matches
var errUserNotFound = errors.New("user not found")

// AdminClient provides access to the Supabase Admin API for user management.
// It is used for seeding demo users, not for the regular authentication flow.
type AdminClient struct {
	supabaseURL string
	serviceKey  string
	httpClient  *http.Client
}

// NewAdminClient creates a new Admin API client.
// Requires the service role key for elevated permissions.
func NewAdminClient(supabaseURL, serviceKey string) *AdminClient {
	return &AdminClient{
		supabaseURL: supabaseURL,
		serviceKey:  serviceKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateUserRequest is the payload for creating a new user
type CreateUserRequest struct {
	Email        string                 `json:"email"`
	Password     string                 `json:"password"`
	EmailConfirm bool                   `json:"email_confirm"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

// CreateUserResponse is the response from creating a user
type CreateUserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ListUsersResponse is the response from listing users
type ListUsersResponse struct {
	Users []CreateUserResponse `json:"users"`
}

// EnsureUser returns the id of the account for email, creating it when missing.
// fullName is stored as user metadata so tokens carry a display name.
func (c *AdminClient) EnsureUser(ctx context.Context, email, password, fullName string) (string, error) {
	id, err := c.findUserIDByEmail(ctx, email)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, errUserNotFound) {
		return "", err
	}
	return c.CreateUser(ctx, email, password, fullName)
}

// DeleteUserByEmail finds a user by email and deletes them.
// This is idempotent - returns nil if the user doesn't exist.
func (c *AdminClient) DeleteUserByEmail(ctx context.Context, email string) error {
	userID, err := c.findUserIDByEmail(ctx, email)
	if errors.Is(err, errUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/auth/v1/admin/users/%s", c.supabaseURL, userID)
	req, err := c.newRequest(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete user failed with status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// findUserIDByEmail searches for a user by email and returns their ID.
func (c *AdminClient) findUserIDByEmail(ctx context.Context, email string) (string, error) {
	url := fmt.Sprintf("%s/auth/v1/admin/users", c.supabaseURL)
	req, err := c.newRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create list request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to list users: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("list users failed with status %d: %s", resp.StatusCode, string(body))
	}

	var listResp ListUsersResponse
	if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
		return "", fmt.Errorf("failed to decode list response: %w", err)
	}

	for _, user := range listResp.Users {
		if user.Email == email {
			return user.ID, nil
		}
	}

	return "", errUserNotFound
}

// CreateUser creates a confirmed user with the given email and password and returns its UUID.
func (c *AdminClient) CreateUser(ctx context.Context, email, password, fullName string) (string, error) {
	url := fmt.Sprintf("%s/auth/v1/admin/users", c.supabaseURL)

	payload := CreateUserRequest{
		Email:        email,
		Password:     password,
		EmailConfirm: true,
	}
	if fullName != "" {
		payload.UserMetadata = map[string]interface{}{"full_name": fullName}
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal create request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("create user failed with status %d: %s", resp.StatusCode, string(body))
	}

	var createResp CreateUserResponse
	if err := json.Unmarshal(body, &createResp); err != nil {
		return "", fmt.Errorf("failed to decode create response: %w", err)
	}

	return createResp.ID, nil
}

func (c *AdminClient) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	return req, nil
}
