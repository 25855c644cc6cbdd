// Package dataproduct 实现数据产品实体的装配。
// 装配器把提取器产出的归一化结果包转换为一批有序的方面记录：
// 标识、属性、状态，以及可选的域归属和所有权。
package dataproduct

import (
	"encoding/json"
	"strings"

	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/domain"
	"github.com/google/uuid"
)

// SourceMarker 是写入资产关联属性的固定来源标记。
const SourceMarker = "workflow_form_request"

// 自定义属性的键名常量
const (
	propBusinessJustification = "businessJustification"
	propUseCases              = "useCases"
	propDataClassification    = "dataClassification"
	propActionRequestURN      = "actionRequestUrn"
	propWorkflowURN           = "workflowUrn"
)

// DeriveID 从关联 URN 派生实体标识符。
//
// 派生规则：取关联 URN 最后一个 ':' 之后的片段并去除空白，
// 前面拼接配置的前缀。关联 URN 缺失或片段为空时回退为随机 UUID，
// 此时标识符不可复现，但保证唯一——这是有意的设计取舍，不是缺陷。
func DeriveID(actionRequestURN, prefix string) string {
	segment := ""
	if idx := strings.LastIndex(actionRequestURN, ":"); idx >= 0 {
		segment = strings.TrimSpace(actionRequestURN[idx+1:])
	} else {
		segment = strings.TrimSpace(actionRequestURN)
	}
	if segment == "" {
		segment = uuid.NewString()
	}
	return prefix + segment
}

// URNFor 按平台的 URN 构造规则从实体标识符构造数据产品的规范 URN。
func URNFor(id string) string {
	return "urn:li:dataProduct:" + id
}

// Assemble 把归一化结果包装配为一批有序的方面记录。
//
// 批次的固定顺序：标识、属性、状态，然后是可选的域归属（仅在 domain
// 字段存在时）和所有权（仅在所有者列表非空时）。标识必须排在最前，
// 依赖方面才能被持久化层正确挂接到实体上。
func Assemble(bundle *domain.FormBundle, idPrefix string) []domain.AspectRecord {
	id := DeriveID(bundle.ActionRequestURN, idPrefix)
	urn := URNFor(id)

	name, _ := bundle.Scalar(domain.FieldDataProductName)
	description, _ := bundle.Scalar(domain.FieldDataProductDescription)
	domainURN, hasDomain := bundle.Scalar(domain.FieldDomain)
	technicalOwner, hasTechnical := bundle.Scalar(domain.FieldTechnicalOwner)
	businessOwner, hasBusiness := bundle.Scalar(domain.FieldBusinessOwner)
	assets := bundle.List(domain.FieldDataAssets)
	useCases := bundle.List(domain.FieldUseCases)

	stamp := domain.NewAuditStamp(bundle.ActorURN)

	// 自定义属性仅包含来源值存在的键，缺失的键被完全省略
	customProps := map[string]string{}
	if v, ok := bundle.Scalar(domain.FieldBusinessJustification); ok {
		customProps[propBusinessJustification] = v
	}
	if len(useCases) > 0 {
		// 使用场景列表以 JSON 序列化后作为单个属性值存储
		if encoded, err := json.Marshal(useCases); err == nil {
			customProps[propUseCases] = string(encoded)
		}
	}
	if v, ok := bundle.Scalar(domain.FieldDataClassification); ok {
		customProps[propDataClassification] = v
	}
	if bundle.ActionRequestURN != "" {
		customProps[propActionRequestURN] = bundle.ActionRequestURN
	}
	if bundle.WorkflowURN != "" {
		customProps[propWorkflowURN] = bundle.WorkflowURN
	}
	if len(customProps) == 0 {
		customProps = nil
	}

	// 每个归一化后的资产生成一条关联记录
	var associations []domain.DataProductAssociation
	for _, asset := range assets {
		associations = append(associations, domain.DataProductAssociation{
			DestinationURN: asset,
			Created:        stamp,
			LastModified:   stamp,
			Properties:     map[string]string{"source": SourceMarker},
		})
	}

	// 所有者列表：业务负责人与技术负责人相同时按精确字符串相等去重
	var owners []domain.Owner
	if hasTechnical {
		owners = append(owners, domain.Owner{Owner: technicalOwner, Type: domain.OwnershipTypeTechnical})
	}
	if hasBusiness && businessOwner != technicalOwner {
		owners = append(owners, domain.Owner{Owner: businessOwner, Type: domain.OwnershipTypeBusiness})
	}

	records := []domain.AspectRecord{
		{
			EntityType: domain.EntityTypeDataProduct,
			EntityURN:  urn,
			AspectName: domain.AspectDataProductKey,
			Aspect:     domain.DataProductKey{ID: id},
		},
		{
			EntityType: domain.EntityTypeDataProduct,
			EntityURN:  urn,
			AspectName: domain.AspectDataProductProperties,
			Aspect: domain.DataProductProperties{
				Name:             name,
				Description:      description,
				CustomProperties: customProps,
				Assets:           associations,
			},
		},
		{
			EntityType: domain.EntityTypeDataProduct,
			EntityURN:  urn,
			AspectName: domain.AspectStatus,
			Aspect:     domain.Status{Removed: false},
		},
	}

	if hasDomain {
		records = append(records, domain.AspectRecord{
			EntityType: domain.EntityTypeDataProduct,
			EntityURN:  urn,
			AspectName: domain.AspectDomains,
			Aspect:     domain.Domains{Domains: []string{domainURN}},
		})
	}
	if len(owners) > 0 {
		records = append(records, domain.AspectRecord{
			EntityType: domain.EntityTypeDataProduct,
			EntityURN:  urn,
			AspectName: domain.AspectOwnership,
			Aspect: domain.Ownership{
				Owners:       owners,
				LastModified: stamp,
			},
		})
	}

	return records
}
