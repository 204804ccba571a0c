package guard

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
)

// CreateHouseholdRequest is the JSON body for POST {apiBase}/households/create.
type CreateHouseholdRequest struct {
	Name       string `json:"name"`
	IsPersonal bool   `json:"is_personal"`
}

// Validate will validate the payload
func (r CreateHouseholdRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 120)),
	)
}

// JoinHouseholdRequest is the JSON body for POST {apiBase}/households/join.
type JoinHouseholdRequest struct {
	InviteCode string `json:"invite_code"`
}

// Validate will validate the payload
func (r JoinHouseholdRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.InviteCode, validation.Required, validation.Length(4, 64)),
	)
}

type householdEnvelope struct {
	ID          string `json:"id"`
	HouseholdID string `json:"household_id"`
	Name        string `json:"name"`
	IsPersonal  bool   `json:"is_personal"`
	InviteCode  string `json:"invite_code"`
}

func (e householdEnvelope) household() *Household {
	id := e.HouseholdID
	if id == "" {
		id = e.ID
	}
	return &Household{
		ID:         id,
		Name:       e.Name,
		IsPersonal: e.IsPersonal,
		InviteCode: e.InviteCode,
	}
}

// HouseholdAPIClient is a thin client for the pantry backend's household
// endpoints. Every call carries the session bearer token and a bounded
// timeout; there are no retries, failures are classified exactly once.
type HouseholdAPIClient struct {
	base    string
	client  *http.Client
	timeout time.Duration
	logger  Logger
}

func NewHouseholdAPIClient(base string) *HouseholdAPIClient {
	return &HouseholdAPIClient{
		base:    strings.TrimRight(base, "/"),
		client:  http.DefaultClient,
		timeout: DefaultRequestTimeout,
		logger:  defLogger{},
	}
}

func (c *HouseholdAPIClient) WithHTTPClient(client *http.Client) *HouseholdAPIClient {
	if client != nil {
		c.client = client
	}
	return c
}

func (c *HouseholdAPIClient) WithTimeout(timeout time.Duration) *HouseholdAPIClient {
	if timeout > 0 {
		c.timeout = timeout
	}
	return c
}

func (c *HouseholdAPIClient) WithLogger(l Logger) *HouseholdAPIClient {
	if l != nil {
		c.logger = l
	}
	return c
}

// CreateHousehold creates a household for the bearer's identity. The known
// benign failure is a 400 whose body reports the user is already a member;
// that surfaces as ErrAlreadyMember so callers can absorb the race.
func (c *HouseholdAPIClient) CreateHousehold(ctx context.Context, token string, req CreateHouseholdRequest) (*Household, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid create household payload")
	}
	return c.postHousehold(ctx, "/households/create", token, req)
}

// JoinHousehold joins the bearer's identity to the household behind the
// invite code.
func (c *HouseholdAPIClient) JoinHousehold(ctx context.Context, token, inviteCode string) (*Household, error) {
	req := JoinHouseholdRequest{InviteCode: inviteCode}
	if err := req.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid join household payload")
	}
	return c.postHousehold(ctx, "/households/join", token, req)
}

// LeaveHousehold removes the bearer's identity from its current household.
func (c *HouseholdAPIClient) LeaveHousehold(ctx context.Context, token string) error {
	_, err := c.postHousehold(ctx, "/households/leave", token, nil)
	return err
}

// ConvertToJoinable converts the bearer's personal household into a joinable
// one, optionally renaming it.
func (c *HouseholdAPIClient) ConvertToJoinable(ctx context.Context, token, name string) (*Household, error) {
	return c.postHousehold(ctx, "/households/convert-to-joinable", token, map[string]string{"name": name})
}

func (c *HouseholdAPIClient) postHousehold(ctx context.Context, path, token string, payload any) (*Household, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to encode household payload")
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to build household request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "household API call failed").
			WithMetadata(map[string]any{"path": path})
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to read household API response").
			WithMetadata(map[string]any{"path": path, "status": res.StatusCode})
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		if IsAlreadyMemberResponse(res.StatusCode, string(raw)) {
			return nil, ErrAlreadyMember
		}

		return nil, errors.New("household API returned non-success status", errors.CategoryOperation).
			WithMetadata(map[string]any{
				"path":   path,
				"status": res.StatusCode,
				"body":   string(raw),
			})
	}

	envelope := householdEnvelope{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &envelope); err != nil {
			// 2xx with an undecodable body still counts as success; the
			// caller only needs the id when the backend provides one.
			c.logger.Debug("household API response not decodable", "path", path, "error", err)
		}
	}

	return envelope.household(), nil
}
