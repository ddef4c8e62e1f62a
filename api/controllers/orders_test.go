package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brewlinehq/brewline-backend/api/middleware"
	"github.com/brewlinehq/brewline-backend/internal/orders"
	"github.com/brewlinehq/brewline-backend/pkg/enums"
	pkgerrors "github.com/brewlinehq/brewline-backend/pkg/errors"
	"github.com/brewlinehq/brewline-backend/pkg/visibility"
)

type stubOrderService struct {
	get        func(ctx context.Context, actor visibility.Actor, orderID uuid.UUID) (*orders.OrderResponse, error)
	list       func(ctx context.Context, actor visibility.Actor, filters orders.ListFilters) (*orders.ListResponse, error)
	transition func(ctx context.Context, actor visibility.Actor, orderID uuid.UUID, target enums.OrderStatus, agentID *uuid.UUID) (*orders.OrderResponse, error)
}

func (s stubOrderService) Get(ctx context.Context, actor visibility.Actor, orderID uuid.UUID) (*orders.OrderResponse, error) {
	return s.get(ctx, actor, orderID)
}

func (s stubOrderService) List(ctx context.Context, actor visibility.Actor, filters orders.ListFilters) (*orders.ListResponse, error) {
	return s.list(ctx, actor, filters)
}

func (s stubOrderService) Transition(ctx context.Context, actor visibility.Actor, orderID uuid.UUID, target enums.OrderStatus, agentID *uuid.UUID) (*orders.OrderResponse, error) {
	return s.transition(ctx, actor, orderID, target, agentID)
}

func actorRequest(method, url, body string, actor visibility.Actor) *http.Request {
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	return req.WithContext(middleware.WithActor(req.Context(), actor))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestOrderListMissingActor(t *testing.T) {
	handler := OrderList(stubOrderService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestOrderListRejectsBadStatusFilter(t *testing.T) {
	handler := OrderList(stubOrderService{}, nil)
	actor := visibility.Actor{ID: uuid.New(), Role: enums.UserRoleCustomer}
	req := actorRequest(http.MethodGet, "/api/v1/orders?status=bogus", "", actor)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderListForwardsFilters(t *testing.T) {
	actor := visibility.Actor{ID: uuid.New(), Role: enums.UserRoleCustomer}
	var captured orders.ListFilters
	svc := stubOrderService{
		list: func(_ context.Context, _ visibility.Actor, filters orders.ListFilters) (*orders.ListResponse, error) {
			captured = filters
			return &orders.ListResponse{Orders: []orders.OrderResponse{}}, nil
		},
	}
	handler := OrderList(svc, nil)

	req := actorRequest(http.MethodGet, "/api/v1/orders?status=created&limit=5&cursor=abc", "", actor)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.Status == nil || *captured.Status != enums.OrderStatusCreated {
		t.Fatalf("expected created status filter got %v", captured.Status)
	}
	if captured.Page.Limit != 5 {
		t.Fatalf("expected limit 5 got %d", captured.Page.Limit)
	}
	if captured.Page.Cursor != "abc" {
		t.Fatalf("expected cursor abc got %s", captured.Page.Cursor)
	}
}

func TestOrderDetailInvalidID(t *testing.T) {
	handler := OrderDetail(stubOrderService{}, nil)
	actor := visibility.Actor{ID: uuid.New(), Role: enums.UserRoleCustomer}
	req := actorRequest(http.MethodGet, "/api/v1/orders/not-a-uuid", "", actor)
	req = withURLParam(req, "orderId", "not-a-uuid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderTransitionRejectsUnknownStatus(t *testing.T) {
	handler := OrderTransition(stubOrderService{}, nil)
	actor := visibility.Actor{ID: uuid.New(), Role: enums.UserRoleStaff}
	orderID := uuid.New()
	req := actorRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/transition", `{"status":"teleported"}`, actor)
	req = withURLParam(req, "orderId", orderID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderTransitionForwardsTarget(t *testing.T) {
	actor := visibility.Actor{ID: uuid.New(), Role: enums.UserRoleStaff}
	orderID := uuid.New()
	agentID := uuid.New()

	var gotTarget enums.OrderStatus
	var gotAgent *uuid.UUID
	svc := stubOrderService{
		transition: func(_ context.Context, _ visibility.Actor, id uuid.UUID, target enums.OrderStatus, agent *uuid.UUID) (*orders.OrderResponse, error) {
			if id != orderID {
				t.Fatalf("unexpected order id %s", id)
			}
			gotTarget = target
			gotAgent = agent
			return &orders.OrderResponse{ID: orderID, Status: target}, nil
		},
	}
	handler := OrderTransition(svc, nil)

	body := `{"status":"assigned","agentId":"` + agentID.String() + `"}`
	req := actorRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/transition", body, actor)
	req = withURLParam(req, "orderId", orderID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if gotTarget != enums.OrderStatusAssigned {
		t.Fatalf("expected assigned got %s", gotTarget)
	}
	if gotAgent == nil || *gotAgent != agentID {
		t.Fatalf("expected agent %s got %v", agentID, gotAgent)
	}

	var envelope struct {
		Data orders.OrderResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != orderID {
		t.Fatalf("unexpected order id %s", envelope.Data.ID)
	}
}

func TestOrderTransitionSurfacesStateConflict(t *testing.T) {
	actor := visibility.Actor{ID: uuid.New(), Role: enums.UserRoleStaff}
	orderID := uuid.New()
	svc := stubOrderService{
		transition: func(context.Context, visibility.Actor, uuid.UUID, enums.OrderStatus, *uuid.UUID) (*orders.OrderResponse, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "transition delivered to cancelled not allowed")
		},
	}
	handler := OrderTransition(svc, nil)

	req := actorRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/transition", `{"status":"cancelled"}`, actor)
	req = withURLParam(req, "orderId", orderID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeStateConflict) {
		t.Fatalf("expected %s got %s", pkgerrors.CodeStateConflict, payload.Error.Code)
	}
}
