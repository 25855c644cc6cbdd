// Package domain 定义了 Data Product Action 插件的核心领域模型。
// 本文件定义元数据方面（Aspect）记录及其载荷类型。
// 一个数据产品实体由一批有序的方面记录描述，每条记录被独立持久化。
package domain

import "time"

// EntityTypeDataProduct 是数据产品实体的平台实体类型名。
const EntityTypeDataProduct = "dataProduct"

// 方面名称常量定义
// 这些名称与元数据平台的方面注册表保持一致。
const (
	// AspectDataProductKey 实体标识方面
	AspectDataProductKey = "dataProductKey"
	// AspectDataProductProperties 实体属性方面
	AspectDataProductProperties = "dataProductProperties"
	// AspectStatus 实体状态方面
	AspectStatus = "status"
	// AspectDomains 域归属方面
	AspectDomains = "domains"
	// AspectOwnership 所有权方面
	AspectOwnership = "ownership"
)

// OwnershipType 表示所有者的分类类型。
type OwnershipType string

// 所有权类型常量定义
const (
	// OwnershipTypeTechnical 表示技术负责人
	OwnershipTypeTechnical OwnershipType = "TECHNICAL_OWNER"
	// OwnershipTypeBusiness 表示业务负责人
	OwnershipTypeBusiness OwnershipType = "BUSINESS_OWNER"
)

// SystemActorURN 是在信封中找不到任何操作者时使用的系统操作者回退值。
const SystemActorURN = "urn:li:corpuser:__datahub_system"

// AuditStamp 表示一次变更的审计信息（毫秒时间戳 + 操作者）。
type AuditStamp struct {
	// Time 是变更发生时的系统时间（单位：毫秒）
	Time int64 `json:"time"`
	// Actor 是执行变更的操作者 URN
	Actor string `json:"actor"`
}

// NewAuditStamp 以当前系统时间创建审计信息。
// actor 为空时使用系统操作者回退值。
func NewAuditStamp(actor string) AuditStamp {
	if actor == "" {
		actor = SystemActorURN
	}
	return AuditStamp{
		Time:  time.Now().UnixMilli(),
		Actor: actor,
	}
}

// AspectRecord 表示一条待持久化的元数据变更提案。
// EntityURN 标识目标实体，AspectName 标识方面类型，Aspect 是方面载荷。
type AspectRecord struct {
	// EntityType 是目标实体的平台类型名
	EntityType string
	// EntityURN 是目标实体的规范 URN
	EntityURN string
	// AspectName 是方面类型名
	AspectName string
	// Aspect 是方面载荷，序列化为 JSON 后随提案发出
	Aspect interface{}
}

// DataProductKey 是数据产品的实体标识方面载荷。
type DataProductKey struct {
	// ID 是派生出的实体标识符
	ID string `json:"id"`
}

// DataProductProperties 是数据产品的属性方面载荷。
type DataProductProperties struct {
	// Name 是数据产品名称
	Name string `json:"name"`
	// Description 是数据产品描述
	Description string `json:"description,omitempty"`
	// CustomProperties 是自定义属性映射，仅包含来源值存在的键
	CustomProperties map[string]string `json:"customProperties,omitempty"`
	// Assets 是数据产品关联的资产列表
	Assets []DataProductAssociation `json:"assets,omitempty"`
}

// DataProductAssociation 表示数据产品与单个数据资产的关联。
type DataProductAssociation struct {
	// DestinationURN 是被关联资产的 URN
	DestinationURN string `json:"destinationUrn"`
	// Created 是关联创建的审计信息
	Created AuditStamp `json:"created"`
	// LastModified 是关联最近修改的审计信息
	LastModified AuditStamp `json:"lastModified"`
	// Properties 是关联的附加属性（固定携带来源标记）
	Properties map[string]string `json:"properties,omitempty"`
}

// Status 是实体状态方面载荷。
type Status struct {
	// Removed 表示实体是否被软删除
	Removed bool `json:"removed"`
}

// Domains 是域归属方面载荷。
type Domains struct {
	// Domains 是实体所属域的 URN 列表
	Domains []string `json:"domains"`
}

// Owner 表示实体的单个所有者。
type Owner struct {
	// Owner 是所有者的 URN
	Owner string `json:"owner"`
	// Type 是所有者的分类类型
	Type OwnershipType `json:"type"`
}

// Ownership 是所有权方面载荷。
type Ownership struct {
	// Owners 是去重后的所有者列表
	Owners []Owner `json:"owners"`
	// LastModified 是所有权最近修改的审计信息
	LastModified AuditStamp `json:"lastModified"`
}
