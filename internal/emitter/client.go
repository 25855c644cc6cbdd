// Package emitter 提供访问元数据服务（GMS）HTTP API 的 Go 客户端封装。
// 该包把方面记录序列化为元数据变更提案（MetadataChangeProposal）并同步
// 提交给 GMS 的 ingestProposal 端点。重试与退避不在本包职责范围内，
// 提交失败原样向调用方传播。
package emitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/domain"
)

// restliProtocolVersion 是 GMS Rest.li 接口要求的协议版本头。
const restliProtocolVersion = "2.0.0"

// Config 定义 GMS 客户端配置。
type Config struct {
	// GMSURL 是元数据服务的基地址，如 "http://localhost:8080"
	GMSURL string `yaml:"gms_url"`
	// Token 是可选的访问令牌，非空时以 Bearer 方式随请求发送
	Token string `yaml:"token"`
	// Timeout 是单次提交的 HTTP 超时时间
	Timeout time.Duration `yaml:"timeout"`
}

// Client 是元数据服务的 HTTP 客户端。
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New 创建一个新的客户端。
// GMSURL 为空时默认使用 http://localhost:8080。
func New(cfg Config) *Client {
	if cfg.GMSURL == "" {
		cfg.GMSURL = "http://localhost:8080"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.GMSURL, "/"),
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// proposal 是 ingestProposal 端点的请求体（与 GMS API 的 JSON 字段对应）。
type proposal struct {
	Proposal proposalBody `json:"proposal"`
}

// proposalBody 是单条元数据变更提案。
type proposalBody struct {
	EntityType string        `json:"entityType"`
	EntityURN  string        `json:"entityUrn"`
	ChangeType string        `json:"changeType"`
	AspectName string        `json:"aspectName"`
	Aspect     genericAspect `json:"aspect"`
}

// genericAspect 是以 JSON 字符串携带的方面载荷。
type genericAspect struct {
	ContentType string `json:"contentType"`
	Value       string `json:"value"`
}

// Emit 把一条方面记录作为 UPSERT 变更提案同步提交给 GMS。
// 调用方负责按批次顺序逐条提交；本方法不做批量或事务保证。
func (c *Client) Emit(ctx context.Context, record *domain.AspectRecord) error {
	value, err := json.Marshal(record.Aspect)
	if err != nil {
		return fmt.Errorf("marshal aspect %s: %w", record.AspectName, err)
	}

	body := proposal{
		Proposal: proposalBody{
			EntityType: record.EntityType,
			EntityURN:  record.EntityURN,
			ChangeType: "UPSERT",
			AspectName: record.AspectName,
			Aspect: genericAspect{
				ContentType: "application/json",
				Value:       string(value),
			},
		},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal proposal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/aspects?action=ingestProposal", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-RestLi-Protocol-Version", restliProtocolVersion)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%w: http %d: %s", domain.ErrEmitRejected,
			resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	return nil
}
