// Package envelope 实现入站事件信封的解析与提取。
package envelope

import (
	"errors"
	"io"
	"testing"

	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/domain"
	"github.com/sirupsen/logrus"
)

// newTestExtractor 创建一个输出被丢弃的提取器，测试里不关心日志。
func newTestExtractor() *Extractor {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewExtractor(logger)
}

// qualifyingEnvelope 是一个满足全部门控条件的嵌套信封。
const qualifyingEnvelope = `{
	"event": {
		"entityUrn": "urn:li:actionRequest:42",
		"payload": {
			"__parameters_json": {
				"actionRequestType": "WORKFLOW_FORM_REQUEST",
				"operation": "COMPLETE",
				"result": "ACCEPTED",
				"actorUrn": "urn:li:corpuser:joe",
				"workflowUrn": "urn:li:workflow:onboarding",
				"fields": "{\"data_product_name\":\"Orders\",\"domain\":\"urn:li:domain:sales\"}"
			}
		}
	}
}`

// TestExtract_Qualifying 测试满足条件的信封会产出完整的结果包。
func TestExtract_Qualifying(t *testing.T) {
	bundle, err := newTestExtractor().Extract([]byte(qualifyingEnvelope))
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if bundle == nil {
		t.Fatal("Extract returned nil bundle for a qualifying envelope")
	}

	if got, _ := bundle.Scalar(domain.FieldDataProductName); got != "Orders" {
		t.Errorf("data_product_name = %q, want %q", got, "Orders")
	}
	if bundle.ActorURN != "urn:li:corpuser:joe" {
		t.Errorf("ActorURN = %q, want %q", bundle.ActorURN, "urn:li:corpuser:joe")
	}
	if bundle.WorkflowURN != "urn:li:workflow:onboarding" {
		t.Errorf("WorkflowURN = %q", bundle.WorkflowURN)
	}
	if bundle.ActionRequestURN != "urn:li:actionRequest:42" {
		t.Errorf("ActionRequestURN = %q", bundle.ActionRequestURN)
	}
}

// TestExtract_Skip 测试各种不满足条件的信封都被静默跳过。
func TestExtract_Skip(t *testing.T) {
	tests := []struct {
		name string // 测试用例名称
		raw  string // 信封 JSON
	}{
		{
			// 测试用例：任何位置都没有参数块
			name: "no parameters block",
			raw:  `{"event": {"payload": {"other": 1}}}`,
		},
		{
			// 测试用例：参数块不是映射
			name: "parameters block not a mapping",
			raw:  `{"__parameters_json": "not a map"}`,
		},
		{
			// 测试用例：动作请求类型不匹配
			name: "wrong action request type",
			raw:  `{"__parameters_json": {"actionRequestType": "OTHER", "result": "ACCEPTED", "fields": "{}"}}`,
		},
		{
			// 测试用例：操作类型不匹配
			name: "wrong operation",
			raw:  `{"__parameters_json": {"operation": "PENDING", "result": "ACCEPTED", "fields": "{}"}}`,
		},
		{
			// 测试用例：审批结果不是 ACCEPTED
			name: "request rejected",
			raw:  `{"__parameters_json": {"result": "REJECTED", "fields": "{}"}}`,
		},
		{
			// 测试用例：审批结果缺失也不满足（与门控 1/2 不同）
			name: "result missing",
			raw:  `{"__parameters_json": {"actionRequestType": "WORKFLOW_FORM_REQUEST", "operation": "COMPLETE", "fields": "{}"}}`,
		},
		{
			// 测试用例：fields 缺失
			name: "fields missing",
			raw:  `{"__parameters_json": {"result": "ACCEPTED"}}`,
		},
		{
			// 测试用例：fields 不是字符串
			name: "fields not a string",
			raw:  `{"__parameters_json": {"result": "ACCEPTED", "fields": {"a": 1}}}`,
		},
		{
			// 测试用例：fields 解码后不是对象
			name: "fields not an object",
			raw:  `{"__parameters_json": {"result": "ACCEPTED", "fields": "[1,2]"}}`,
		},
		{
			// 测试用例：门控键存在但值不是字符串——值不等于字面量，必须跳过
			name: "non-string action request type",
			raw:  `{"__parameters_json": {"actionRequestType": 5, "result": "ACCEPTED", "fields": "{}"}}`,
		},
		{
			// 测试用例：审批结果带首尾空白——比较不裁剪，必须跳过
			name: "padded result",
			raw:  `{"__parameters_json": {"result": "  ACCEPTED  ", "fields": "{}"}}`,
		},
		{
			// 测试用例：动作请求类型带首尾空白——比较不裁剪，必须跳过
			name: "padded action request type",
			raw:  `{"__parameters_json": {"actionRequestType": " WORKFLOW_FORM_REQUEST ", "result": "ACCEPTED", "fields": "{}"}}`,
		},
		{
			// 测试用例：操作类型存在但值不是字符串，必须跳过
			name: "non-string operation",
			raw:  `{"__parameters_json": {"operation": true, "result": "ACCEPTED", "fields": "{}"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle, err := newTestExtractor().Extract([]byte(tt.raw))
			if err != nil {
				t.Fatalf("Extract returned error: %v", err)
			}
			if bundle != nil {
				t.Errorf("Extract returned a bundle, want skip")
			}
		})
	}
}

// TestExtract_GatesAbsentNotSkipped 测试门控 1/2 的键完全缺失时不构成跳过理由。
func TestExtract_GatesAbsentNotSkipped(t *testing.T) {
	raw := `{"__parameters_json": {"result": "ACCEPTED", "fields": "{\"data_product_name\":\"X\"}"}}`
	bundle, err := newTestExtractor().Extract([]byte(raw))
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if bundle == nil {
		t.Fatal("blob omitting actionRequestType and operation must not be skipped")
	}
}

// TestExtract_Malformed 测试无法解析的载荷返回错误而不是 panic。
func TestExtract_Malformed(t *testing.T) {
	tests := []struct {
		name    string // 测试用例名称
		raw     string // 信封 JSON
		wantErr error  // 期望的哨兵错误
	}{
		{
			// 测试用例：信封本身不是合法 JSON
			name:    "bad envelope json",
			raw:     `{not json`,
			wantErr: domain.ErrMalformedEnvelope,
		},
		{
			// 测试用例：fields 字符串不是合法 JSON
			name:    "bad fields json",
			raw:     `{"__parameters_json": {"result": "ACCEPTED", "fields": "{broken"}}`,
			wantErr: domain.ErrMalformedFields,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle, err := newTestExtractor().Extract([]byte(tt.raw))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Extract error = %v, want %v", err, tt.wantErr)
			}
			if bundle != nil {
				t.Errorf("Extract returned a bundle alongside an error")
			}
		})
	}
}

// TestExtract_ActorFallbackFromEnvelope 测试参数块缺少操作者时
// 会在整个信封中再找一次 actorUrn。
func TestExtract_ActorFallbackFromEnvelope(t *testing.T) {
	raw := `{
		"actorUrn": "urn:li:corpuser:fallback",
		"__parameters_json": {"result": "ACCEPTED", "fields": "{\"data_product_name\":\"X\"}"}
	}`
	bundle, err := newTestExtractor().Extract([]byte(raw))
	if err != nil || bundle == nil {
		t.Fatalf("Extract = (%v, %v), want bundle", bundle, err)
	}
	if bundle.ActorURN != "urn:li:corpuser:fallback" {
		t.Errorf("ActorURN = %q, want fallback from envelope", bundle.ActorURN)
	}
}

// TestFindKey 测试深度优先键搜索：当前映射的直接值优先于嵌套结构，
// 数组元素也会被递归检查。
func TestFindKey(t *testing.T) {
	tree := map[string]interface{}{
		"a": map[string]interface{}{
			"target": "nested",
		},
		"target": "direct",
		"list": []interface{}{
			map[string]interface{}{"other": "x"},
		},
	}

	if v, ok := findKey(tree, "target"); !ok || v != "direct" {
		t.Errorf("findKey preferred nested value %v over the direct one", v)
	}
	if v, ok := findKey(tree, "other"); !ok || v != "x" {
		t.Errorf("findKey did not descend into arrays, got %v", v)
	}
	if _, ok := findKey(tree, "absent"); ok {
		t.Error("findKey reported a match for an absent key")
	}
}
