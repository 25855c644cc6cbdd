// Package emitter 提供访问元数据服务（GMS）HTTP API 的 Go 客户端封装。
package emitter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/domain"
)

// TestEmit 测试提案请求的路径、头部和请求体形状。
func TestEmit(t *testing.T) {
	var (
		gotPath   string
		gotQuery  string
		gotHeader http.Header
		gotBody   []byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotHeader = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(Config{GMSURL: server.URL, Token: "secret"})
	record := &domain.AspectRecord{
		EntityType: domain.EntityTypeDataProduct,
		EntityURN:  "urn:li:dataProduct:orders",
		AspectName: domain.AspectDataProductKey,
		Aspect:     domain.DataProductKey{ID: "orders"},
	}

	if err := client.Emit(context.Background(), record); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}

	if gotPath != "/aspects" {
		t.Errorf("path = %q, want /aspects", gotPath)
	}
	if gotQuery != "action=ingestProposal" {
		t.Errorf("query = %q, want action=ingestProposal", gotQuery)
	}
	if got := gotHeader.Get("X-RestLi-Protocol-Version"); got != "2.0.0" {
		t.Errorf("protocol version header = %q", got)
	}
	if got := gotHeader.Get("Authorization"); got != "Bearer secret" {
		t.Errorf("authorization header = %q", got)
	}
	if got := gotHeader.Get("Content-Type"); got != "application/json" {
		t.Errorf("content type = %q", got)
	}

	var body struct {
		Proposal struct {
			EntityType string `json:"entityType"`
			EntityURN  string `json:"entityUrn"`
			ChangeType string `json:"changeType"`
			AspectName string `json:"aspectName"`
			Aspect     struct {
				ContentType string `json:"contentType"`
				Value       string `json:"value"`
			} `json:"aspect"`
		} `json:"proposal"`
	}
	if err := json.Unmarshal(gotBody, &body); err != nil {
		t.Fatalf("请求体不是合法 JSON: %v", err)
	}
	if body.Proposal.EntityType != "dataProduct" {
		t.Errorf("entityType = %q", body.Proposal.EntityType)
	}
	if body.Proposal.EntityURN != "urn:li:dataProduct:orders" {
		t.Errorf("entityUrn = %q", body.Proposal.EntityURN)
	}
	if body.Proposal.ChangeType != "UPSERT" {
		t.Errorf("changeType = %q, want UPSERT", body.Proposal.ChangeType)
	}
	if body.Proposal.Aspect.ContentType != "application/json" {
		t.Errorf("aspect contentType = %q", body.Proposal.Aspect.ContentType)
	}
	// 方面载荷作为 JSON 字符串内嵌在提案里
	var key domain.DataProductKey
	if err := json.Unmarshal([]byte(body.Proposal.Aspect.Value), &key); err != nil {
		t.Fatalf("方面载荷不是合法 JSON: %v", err)
	}
	if key.ID != "orders" {
		t.Errorf("aspect id = %q", key.ID)
	}
}

// TestEmit_NoToken 测试令牌为空时不发送 Authorization 头。
func TestEmit_NoToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(Config{GMSURL: server.URL})
	record := &domain.AspectRecord{
		EntityType: domain.EntityTypeDataProduct,
		EntityURN:  "urn:li:dataProduct:x",
		AspectName: domain.AspectStatus,
		Aspect:     domain.Status{Removed: false},
	}
	if err := client.Emit(context.Background(), record); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("unexpected authorization header %q", gotAuth)
	}
}

// TestEmit_Rejected 测试非 2xx 响应被包装为 ErrEmitRejected 并携带状态码。
func TestEmit_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid aspect"}`))
	}))
	defer server.Close()

	client := New(Config{GMSURL: server.URL})
	record := &domain.AspectRecord{
		EntityType: domain.EntityTypeDataProduct,
		EntityURN:  "urn:li:dataProduct:x",
		AspectName: domain.AspectStatus,
		Aspect:     domain.Status{},
	}

	err := client.Emit(context.Background(), record)
	if !errors.Is(err, domain.ErrEmitRejected) {
		t.Fatalf("err = %v, want ErrEmitRejected", err)
	}
}

// TestEmit_ServerUnreachable 测试服务不可达时返回传输层错误。
func TestEmit_ServerUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // 立即关闭，让地址不可达

	client := New(Config{GMSURL: server.URL})
	record := &domain.AspectRecord{
		EntityType: domain.EntityTypeDataProduct,
		EntityURN:  "urn:li:dataProduct:x",
		AspectName: domain.AspectStatus,
		Aspect:     domain.Status{},
	}
	if err := client.Emit(context.Background(), record); err == nil {
		t.Error("Emit succeeded against a closed server")
	}
}
