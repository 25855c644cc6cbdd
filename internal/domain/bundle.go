// Package domain 定义了 Data Product Action 插件的核心领域模型。
package domain

// 表单字段键名常量定义
// 这些键名与工作流表单的字段一一对应。
const (
	// FieldDataProductName 数据产品名称（标量）
	FieldDataProductName = "data_product_name"
	// FieldDataProductDescription 数据产品描述（标量）
	FieldDataProductDescription = "data_product_description"
	// FieldDomain 数据产品所属域的 URN（标量）
	FieldDomain = "domain"
	// FieldTechnicalOwner 技术负责人 URN（标量）
	FieldTechnicalOwner = "technical_owner"
	// FieldBusinessOwner 业务负责人 URN（标量）
	FieldBusinessOwner = "business_owner"
	// FieldDataAssets 关联数据资产 URN 列表
	FieldDataAssets = "data_assets"
	// FieldBusinessJustification 业务理由（标量）
	FieldBusinessJustification = "business_justification"
	// FieldDataClassification 数据分级（标量）
	FieldDataClassification = "data_classification"
	// FieldUseCases 使用场景列表
	FieldUseCases = "use_cases"
)

// FormBundle 表示从事件信封中提取出来的归一化结果包。
// 提取器在所有门控条件满足后构造该结构体并交给装配器。
type FormBundle struct {
	// Fields 是表单字段的原始映射（值可能是字符串或列表，由装配器归一化）
	Fields map[string]interface{}
	// ActorURN 是触发该动作请求的用户 URN（可能为空）
	ActorURN string
	// WorkflowURN 是产生该事件的工作流 URN（可能为空）
	WorkflowURN string
	// ActionRequestURN 是动作请求的关联 URN，用于派生稳定的实体标识符
	ActionRequestURN string
}

// Scalar 按 "first string" 规则归一化指定表单字段。
func (b *FormBundle) Scalar(key string) (string, bool) {
	return AsScalar(b.Fields[key])
}

// List 将指定表单字段归一化为字符串列表。
func (b *FormBundle) List(key string) []string {
	return AsList(b.Fields[key])
}
