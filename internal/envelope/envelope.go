// Package envelope 实现入站事件信封的解析与提取。
// 入站事件是一个任意嵌套的 JSON 结构，本包在其中定位工作流表单的参数块，
// 应用门控条件，并把表单字段解析为归一化结果包交给装配器。
package envelope

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/domain"
	"github.com/sirupsen/logrus"
)

// 信封中被搜索的键名常量
const (
	// ParametersKey 是参数块在信封中的键名
	ParametersKey = "__parameters_json"
	// EntityURNKey 是动作请求关联 URN 在信封中的键名
	EntityURNKey = "entityUrn"
	// ActorURNKey 是操作者 URN 在信封中的键名
	ActorURNKey = "actorUrn"
)

// 门控条件的字面量常量
const (
	// ActionRequestTypeWorkflowForm 是参数块必须携带的动作请求类型
	ActionRequestTypeWorkflowForm = "WORKFLOW_FORM_REQUEST"
	// OperationComplete 是参数块必须携带的操作类型
	OperationComplete = "COMPLETE"
	// ResultAccepted 是参数块必须携带的审批结果
	ResultAccepted = "ACCEPTED"
)

// Extractor 负责从原始事件信封中提取归一化结果包。
type Extractor struct {
	logger *logrus.Logger
}

// NewExtractor 创建一个新的提取器。
func NewExtractor(logger *logrus.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract 解析原始信封并提取归一化结果包。
//
// 返回约定：
//   - (bundle, nil): 事件满足所有门控条件，bundle 可交给装配器
//   - (nil, nil): 事件不满足条件，静默跳过（这是最常见的情形，不算错误）
//   - (nil, err): 信封或 fields 字符串不是合法 JSON，调用方记录日志后按跳过处理
func (e *Extractor) Extract(raw []byte) (*domain.FormBundle, error) {
	var root interface{}
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedEnvelope, err)
	}

	// 在信封中递归定位参数块
	found, ok := findKey(root, ParametersKey)
	if !ok {
		e.logger.Debug("Envelope does not carry a parameters block, skipping")
		return nil, nil
	}
	params, ok := found.(map[string]interface{})
	if !ok {
		e.logger.Debug("Parameters block is not a mapping, skipping")
		return nil, nil
	}

	// 门控比较在原始值上进行：不裁剪空白、不过滤类型。
	// 键存在但值不严格等于字面量（包括非字符串值和带空白的值）即跳过。

	// 门控 1：动作请求类型存在但不等于字面量时跳过（缺失不算失败）
	if v, ok := params["actionRequestType"]; ok && v != ActionRequestTypeWorkflowForm {
		e.logger.WithField("action_request_type", v).Debug("Not a workflow form request, skipping")
		return nil, nil
	}
	// 门控 2：操作类型存在但不等于字面量时跳过（缺失不算失败）
	if v, ok := params["operation"]; ok && v != OperationComplete {
		e.logger.WithField("operation", v).Debug("Operation is not COMPLETE, skipping")
		return nil, nil
	}
	// 门控 3：审批结果必须严格等于 ACCEPTED，缺失或任何偏差都不满足
	if v := params["result"]; v != ResultAccepted {
		e.logger.WithField("result", v).Debug("Request was not accepted, skipping")
		return nil, nil
	}

	// fields 必须是非空字符串，其内容是 JSON 编码的表单字段对象
	fieldsRaw, ok := stringField(params, "fields")
	if !ok || fieldsRaw == "" {
		e.logger.Debug("Parameters block carries no form fields, skipping")
		return nil, nil
	}
	var fieldsAny interface{}
	if err := json.Unmarshal([]byte(fieldsRaw), &fieldsAny); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedFields, err)
	}
	fields, ok := fieldsAny.(map[string]interface{})
	if !ok {
		e.logger.Debug("Form fields payload is not a mapping, skipping")
		return nil, nil
	}

	bundle := &domain.FormBundle{
		Fields: fields,
	}
	bundle.ActorURN, _ = stringField(params, "actorUrn")
	bundle.WorkflowURN, _ = stringField(params, "workflowUrn")

	// 操作者缺失时在整个信封中再找一次
	if bundle.ActorURN == "" {
		if v, ok := findKey(root, ActorURNKey); ok {
			if s, ok := v.(string); ok {
				bundle.ActorURN = strings.TrimSpace(s)
			}
		}
	}

	// 关联 URN 独立于参数块，在原始信封中搜索首个字符串值
	if v, ok := findKey(root, EntityURNKey); ok {
		if s, ok := v.(string); ok {
			bundle.ActionRequestURN = strings.TrimSpace(s)
		}
	}

	return bundle, nil
}

// stringField 从映射中读取字符串字段并去除首尾空白。
// 仅用于非门控字段（fields、actorUrn、workflowUrn）；门控比较不经过它。
// 第二个返回值表示键是否存在且值为字符串。
func stringField(m map[string]interface{}, key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// findKey 在解析后的 JSON 树中深度优先搜索指定键，返回首个匹配的值。
// 搜索顺序：当前映射的直接值优先于嵌套的映射和数组。
// JSON 树是无环的，因此不需要循环保护。
func findKey(node interface{}, key string) (interface{}, bool) {
	switch n := node.(type) {
	case map[string]interface{}:
		if v, ok := n[key]; ok {
			return v, true
		}
		for _, v := range n {
			if found, ok := findKey(v, key); ok {
				return found, true
			}
		}
	case []interface{}:
		for _, v := range n {
			if found, ok := findKey(v, key); ok {
				return found, true
			}
		}
	}
	return nil, false
}
