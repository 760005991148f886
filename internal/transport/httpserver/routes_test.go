package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coinvest-go/internal/config"
	communitydomain "coinvest-go/internal/domain/community"
	"coinvest-go/internal/repository/inmemory"
	"coinvest-go/internal/transport/httpserver/handler"
	"coinvest-go/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
)

const testJWTSecret = "http-test-secret"

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type idResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type walletBody struct {
	Balance decimal.Decimal `json:"balance"`
}

type positionBody struct {
	Type     string          `json:"type"`
	Carat    *string         `json:"carat"`
	Quantity decimal.Decimal `json:"quantity"`
}

type shareBody struct {
	TotalContributed    decimal.Decimal `json:"totalContributed"`
	SharePercentage     decimal.Decimal `json:"sharePercentage"`
	WithdrawalAmount    decimal.Decimal `json:"withdrawalAmount"`
	CommunityTotalValue decimal.Decimal `json:"communityTotalValue"`
}

type voteResultBody struct {
	Vote  struct{ Vote string } `json:"vote"`
	Order idResponse            `json:"order"`
}

type withdrawalBody struct {
	Success          bool            `json:"success"`
	WithdrawalAmount decimal.Decimal `json:"withdrawalAmount"`
}

type apiClient struct {
	t      *testing.T
	server *httptest.Server
}

func newTestServer(t *testing.T) *apiClient {
	t.Helper()
	cfg := config.Config{
		CORSOrigins: []string{"http://localhost:5173"},
		Auth:        config.AuthConfig{JWTSecret: testJWTSecret},
	}
	log := logger.Nop()
	svc := communitydomain.NewService(inmemory.NewCommunityRepository(), communitydomain.WithLogger(log))
	server := httptest.NewServer(NewRouter(cfg, handler.New(svc, log), log))
	t.Cleanup(server.Close)
	return &apiClient{t: t, server: server}
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func (c *apiClient) do(method, path, userID string, body interface{}) (int, []byte) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, c.server.URL+path, reader)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+tokenFor(c.t, userID))
	}
	resp, err := c.server.Client().Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data
}

// expect asserts the status and decodes the body into out when given.
func (c *apiClient) expect(status int, method, path, userID string, body, out interface{}) {
	c.t.Helper()
	code, data := c.do(method, path, userID, body)
	if code != status {
		c.t.Fatalf("%s %s: expected %d, got %d: %s", method, path, status, code, string(data))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			c.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
}

func (c *apiClient) expectError(status int, code, method, path, userID string, body interface{}) {
	c.t.Helper()
	var env errorEnvelope
	c.expect(status, method, path, userID, body, &env)
	if env.Error.Code != code {
		c.t.Fatalf("%s %s: expected code %q, got %q", method, path, code, env.Error.Code)
	}
}

func TestHealthAndAuth(t *testing.T) {
	api := newTestServer(t)

	code, body := api.do(http.MethodGet, "/api/health", "", nil)
	if code != http.StatusOK || string(body) != "ok" {
		t.Fatalf("health: %d %q", code, string(body))
	}

	api.expectError(http.StatusUnauthorized, "invalid_token", http.MethodGet, "/api/auth/me", "", nil)

	var me struct {
		ID string `json:"id"`
	}
	api.expect(http.StatusOK, http.MethodGet, "/api/auth/me", "alice", nil, &me)
	if me.ID != "alice" {
		t.Fatalf("expected alice, got %q", me.ID)
	}
}

func TestInvestmentFlowOverHTTP(t *testing.T) {
	api := newTestServer(t)

	var community idResponse
	api.expect(http.StatusCreated, http.MethodPost, "/api/communities", "alice",
		map[string]string{"name": "Gold circle", "approvalMode": "simple_majority"}, &community)
	base := "/api/communities/" + community.ID

	var bobMember idResponse
	api.expect(http.StatusCreated, http.MethodPost, base+"/members", "alice",
		map[string]string{"userId": "bob"}, &bobMember)

	api.expect(http.StatusCreated, http.MethodPost, base+"/contributions", "alice",
		map[string]string{"amount": "10000", "type": "deposit"}, nil)
	api.expect(http.StatusCreated, http.MethodPost, base+"/contributions", "bob",
		map[string]interface{}{"amount": 5000, "type": "deposit"}, nil)

	var order idResponse
	api.expect(http.StatusCreated, http.MethodPost, base+"/orders", "bob", map[string]string{
		"orderType":    "buy",
		"metalType":    "gold",
		"carat":        "22k",
		"quantity":     "2",
		"pricePerUnit": "3000",
	}, &order)
	orderPath := "/api/communities/orders/" + order.ID

	api.expectError(http.StatusBadRequest, "approval_threshold_not_met", http.MethodPatch, orderPath, "alice",
		map[string]string{"status": "approved"})

	var voted voteResultBody
	api.expect(http.StatusOK, http.MethodPost, orderPath+"/vote", "bob", map[string]string{"vote": "for"}, &voted)
	if voted.Order.Status != "voting" {
		t.Fatalf("expected voting after first vote, got %q", voted.Order.Status)
	}
	api.expectError(http.StatusBadRequest, "already_voted", http.MethodPost, orderPath+"/vote", "bob",
		map[string]string{"vote": "against"})

	var votes []map[string]interface{}
	api.expect(http.StatusOK, http.MethodGet, orderPath+"/votes", "alice", nil, &votes)
	if len(votes) != 1 {
		t.Fatalf("expected 1 vote, got %d", len(votes))
	}

	api.expect(http.StatusOK, http.MethodPatch, orderPath, "alice", map[string]string{"status": "approved"}, nil)
	api.expectError(http.StatusForbidden, "not_executor", http.MethodPost, orderPath+"/execute", "bob", nil)

	var executed idResponse
	api.expect(http.StatusOK, http.MethodPost, orderPath+"/execute", "alice", nil, &executed)
	if executed.Status != "executed" {
		t.Fatalf("expected executed, got %q", executed.Status)
	}
	api.expectError(http.StatusBadRequest, "order_not_approved", http.MethodPost, orderPath+"/execute", "alice", nil)

	var wallet walletBody
	api.expect(http.StatusOK, http.MethodGet, base+"/wallet", "bob", nil, &wallet)
	if !wallet.Balance.Equal(decimal.NewFromInt(9000)) {
		t.Fatalf("expected wallet 9000, got %s", wallet.Balance)
	}

	var positions []positionBody
	api.expect(http.StatusOK, http.MethodGet, base+"/positions", "bob", nil, &positions)
	if len(positions) != 1 || positions[0].Carat == nil || *positions[0].Carat != "22K" || !positions[0].Quantity.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("unexpected positions %+v", positions)
	}

	var share shareBody
	api.expect(http.StatusOK, http.MethodGet, base+"/my-share", "bob", nil, &share)
	if !share.TotalContributed.Equal(decimal.NewFromInt(5000)) ||
		!share.SharePercentage.Equal(decimal.RequireFromString("33.3333")) ||
		!share.WithdrawalAmount.Equal(decimal.NewFromInt(5000)) ||
		!share.CommunityTotalValue.Equal(decimal.NewFromInt(15000)) {
		t.Fatalf("unexpected share %+v", share)
	}

	api.expectError(http.StatusBadRequest, "admin_must_transfer", http.MethodPost, base+"/withdraw", "alice", nil)

	var withdrawal withdrawalBody
	api.expect(http.StatusOK, http.MethodPost, base+"/withdraw", "bob", nil, &withdrawal)
	if !withdrawal.Success || !withdrawal.WithdrawalAmount.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("unexpected withdrawal %+v", withdrawal)
	}
	api.expectError(http.StatusBadRequest, "already_exited", http.MethodGet, base+"/my-share", "bob", nil)

	api.expect(http.StatusOK, http.MethodGet, base+"/wallet", "alice", nil, &wallet)
	if !wallet.Balance.Equal(decimal.NewFromInt(4000)) {
		t.Fatalf("expected wallet 4000, got %s", wallet.Balance)
	}

	var mine []map[string]interface{}
	api.expect(http.StatusOK, http.MethodGet, base+"/contributions/me", "alice", nil, &mine)
	if len(mine) != 1 {
		t.Fatalf("expected 1 own contribution, got %d", len(mine))
	}
}

func TestRequestValidationAndAccess(t *testing.T) {
	api := newTestServer(t)

	var community idResponse
	api.expect(http.StatusCreated, http.MethodPost, "/api/communities", "alice", map[string]string{"name": "Silver"}, &community)
	base := "/api/communities/" + community.ID

	tests := []struct {
		name   string
		method string
		path   string
		user   string
		body   interface{}
		status int
		code   string
	}{
		{"unknown field", http.MethodPost, "/api/communities", "alice", map[string]string{"name": "x", "color": "red"}, http.StatusBadRequest, "invalid_json"},
		{"missing name", http.MethodPost, "/api/communities", "alice", map[string]string{"description": "x"}, http.StatusBadRequest, "invalid_request"},
		{"bad approval mode", http.MethodPost, "/api/communities", "alice", map[string]string{"name": "x", "approvalMode": "anyone"}, http.StatusBadRequest, "invalid_request"},
		{"zero amount", http.MethodPost, base + "/contributions", "alice", map[string]string{"amount": "0", "type": "deposit"}, http.StatusBadRequest, "invalid_request"},
		{"gold without carat", http.MethodPost, base + "/orders", "alice", map[string]string{"orderType": "buy", "metalType": "gold", "quantity": "1", "pricePerUnit": "10"}, http.StatusBadRequest, "invalid_request"},
		{"stranger reads", http.MethodGet, base, "mallory", nil, http.StatusForbidden, "not_member"},
		{"stranger deposits", http.MethodPost, base + "/contributions", "mallory", map[string]string{"amount": "5", "type": "deposit"}, http.StatusForbidden, "not_member"},
		{"missing community", http.MethodGet, "/api/communities/does-not-exist", "alice", nil, http.StatusNotFound, "community_not_found"},
		{"missing order", http.MethodGet, "/api/communities/orders/does-not-exist", "alice", nil, http.StatusNotFound, "order_not_found"},
		{"unauthenticated", http.MethodGet, "/api/communities", "", nil, http.StatusUnauthorized, "invalid_token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api.t = t
			api.expectError(tt.status, tt.code, tt.method, tt.path, tt.user, tt.body)
		})
	}
}

func TestCommunityAdminEndpoints(t *testing.T) {
	api := newTestServer(t)

	var community idResponse
	api.expect(http.StatusCreated, http.MethodPost, "/api/communities", "alice", map[string]string{"name": "Family"}, &community)
	base := "/api/communities/" + community.ID

	var carol idResponse
	api.expect(http.StatusCreated, http.MethodPost, base+"/members", "alice", map[string]string{"userId": "carol"}, &carol)

	var updated struct {
		Role string `json:"role"`
	}
	api.expect(http.StatusOK, http.MethodPatch, "/api/communities/members/"+carol.ID, "alice",
		map[string]string{"role": "treasurer"}, &updated)
	if updated.Role != "treasurer" {
		t.Fatalf("expected treasurer, got %q", updated.Role)
	}

	var renamed struct {
		Name string `json:"name"`
	}
	api.expect(http.StatusOK, http.MethodPatch, base, "alice", map[string]string{"name": "Renamed"}, &renamed)
	if renamed.Name != "Renamed" {
		t.Fatalf("expected Renamed, got %q", renamed.Name)
	}
	api.expectError(http.StatusForbidden, "not_admin", http.MethodPatch, base, "carol", map[string]string{"name": "Mine"})

	var transferred struct {
		AdminID string `json:"adminId"`
	}
	api.expect(http.StatusOK, http.MethodPost, base+"/transfer-admin", "alice", map[string]string{"userId": "carol"}, &transferred)
	if transferred.AdminID != "carol" {
		t.Fatalf("expected carol as admin, got %q", transferred.AdminID)
	}

	var members []struct {
		UserID string `json:"userId"`
		Role   string `json:"role"`
	}
	api.expect(http.StatusOK, http.MethodGet, base+"/members", "alice", nil, &members)
	roles := map[string]string{}
	for _, m := range members {
		roles[m.UserID] = m.Role
	}
	if roles["alice"] != "member" || roles["carol"] != "admin" {
		t.Fatalf("unexpected roles %v", roles)
	}

	var list []idResponse
	api.expect(http.StatusOK, http.MethodGet, "/api/communities", "carol", nil, &list)
	if len(list) != 1 || list[0].ID != community.ID {
		t.Fatalf("unexpected communities %+v", list)
	}

	api.expect(http.StatusNoContent, http.MethodDelete, base, "carol", nil, nil)
	api.expectError(http.StatusNotFound, "community_not_found", http.MethodGet, base, "carol", nil)
}
